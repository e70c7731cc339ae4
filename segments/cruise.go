package segments

import (
	"fmt"
	"math"

	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/atmosphere"
)

// levelIndexed wires a trimmed segment flying at a constant altitude, an unset altitude
// being carried over. profile writes the kinematics at altitude h.
func levelIndexed(seg *rcaide.Segment, altitude *float64, params func() []param, profile func(seg *rcaide.Segment, h float64) error) {
	aircraft(seg)
	wire(seg, hooks{
		validate: func(seg *rcaide.Segment) error {
			if err := startOrInitial(seg, "altitude", *altitude, rcaide.PathAltitude); err != nil {
				return err
			}
			return positive(seg, params()...)
		},
		kinematics: func(seg *rcaide.Segment) error {
			return profile(seg, start(seg, *altitude, rcaide.PathAltitude))
		},
	})
}

// speedAt evaluates a speed law at a single altitude.
func speedAt(seg *rcaide.Segment, law speedLaw, h float64) (float64, error) {
	V, err := law(seg, []float64{h}, []float64{0})
	if err != nil {
		return 0, err
	}
	return V[0], nil
}

// constantLevel flies a distance, or for a duration when distance is zero, at the speed
// of the law.
func constantLevel(law speedLaw, distance, duration float64) func(*rcaide.Segment, float64) error {
	return func(seg *rcaide.Segment, h float64) error {
		V, err := speedAt(seg, law, h)
		if err != nil {
			return err
		}
		if distance > 0 {
			duration = distance / V
		}
		x := seg.State.Numerics.Dimensionless.X
		return levelProfile(seg, h, duration, linspace(V, V, x))
	}
}

// CruiseConstantSpeedConstantAltitude flies a distance at constant true air speed and altitude.
type CruiseConstantSpeedConstantAltitude struct {
	*rcaide.Segment
	Altitude float64 `mapstructure:"altitude"`  // m
	AirSpeed float64 `mapstructure:"air_speed"` // m/s
	Distance float64 `mapstructure:"distance"`  // m
}

// NewCruiseConstantSpeedConstantAltitude returns a cruise segment.
func NewCruiseConstantSpeedConstantAltitude(tag string) *CruiseConstantSpeedConstantAltitude {
	s := &CruiseConstantSpeedConstantAltitude{Segment: rcaide.NewSegment(tag), Altitude: rcaide.Unset, AirSpeed: rcaide.Unset, Distance: rcaide.Unset}
	levelIndexed(s.Segment, &s.Altitude,
		func() []param { return []param{{"air_speed", s.AirSpeed}, {"distance", s.Distance}} },
		func(seg *rcaide.Segment, h float64) error {
			return constantLevel(constantSpeed(s.AirSpeed), s.Distance, 0)(seg, h)
		})
	return s
}

// CruiseConstantMachConstantAltitude flies a distance at constant Mach number and altitude.
type CruiseConstantMachConstantAltitude struct {
	*rcaide.Segment
	Altitude float64 `mapstructure:"altitude"` // m
	Mach     float64 `mapstructure:"mach"`
	Distance float64 `mapstructure:"distance"` // m
}

// NewCruiseConstantMachConstantAltitude returns a cruise segment.
func NewCruiseConstantMachConstantAltitude(tag string) *CruiseConstantMachConstantAltitude {
	s := &CruiseConstantMachConstantAltitude{Segment: rcaide.NewSegment(tag), Altitude: rcaide.Unset, Mach: rcaide.Unset, Distance: rcaide.Unset}
	levelIndexed(s.Segment, &s.Altitude,
		func() []param { return []param{{"mach", s.Mach}, {"distance", s.Distance}} },
		func(seg *rcaide.Segment, h float64) error {
			return constantLevel(constantMach(s.Mach), s.Distance, 0)(seg, h)
		})
	return s
}

// CruiseConstantDynamicPressureConstantAltitude flies a distance at constant dynamic
// pressure and altitude.
type CruiseConstantDynamicPressureConstantAltitude struct {
	*rcaide.Segment
	Altitude        float64 `mapstructure:"altitude"`         // m
	DynamicPressure float64 `mapstructure:"dynamic_pressure"` // Pa
	Distance        float64 `mapstructure:"distance"`         // m
}

// NewCruiseConstantDynamicPressureConstantAltitude returns a cruise segment.
func NewCruiseConstantDynamicPressureConstantAltitude(tag string) *CruiseConstantDynamicPressureConstantAltitude {
	s := &CruiseConstantDynamicPressureConstantAltitude{Segment: rcaide.NewSegment(tag), Altitude: rcaide.Unset, DynamicPressure: rcaide.Unset, Distance: rcaide.Unset}
	levelIndexed(s.Segment, &s.Altitude,
		func() []param { return []param{{"dynamic_pressure", s.DynamicPressure}, {"distance", s.Distance}} },
		func(seg *rcaide.Segment, h float64) error {
			return constantLevel(dynamicPressureSpeed(s.DynamicPressure), s.Distance, 0)(seg, h)
		})
	return s
}

// CruiseConstantSpeedConstantAltitudeLoiter loiters for a duration at constant true air
// speed and altitude.
type CruiseConstantSpeedConstantAltitudeLoiter struct {
	*rcaide.Segment
	Altitude float64 `mapstructure:"altitude"`  // m
	AirSpeed float64 `mapstructure:"air_speed"` // m/s
	Time     float64 `mapstructure:"time"`      // s
}

// NewCruiseConstantSpeedConstantAltitudeLoiter returns a loiter segment.
func NewCruiseConstantSpeedConstantAltitudeLoiter(tag string) *CruiseConstantSpeedConstantAltitudeLoiter {
	s := &CruiseConstantSpeedConstantAltitudeLoiter{Segment: rcaide.NewSegment(tag), Altitude: rcaide.Unset, AirSpeed: rcaide.Unset, Time: rcaide.Unset}
	levelIndexed(s.Segment, &s.Altitude,
		func() []param { return []param{{"air_speed", s.AirSpeed}, {"time", s.Time}} },
		func(seg *rcaide.Segment, h float64) error {
			return constantLevel(constantSpeed(s.AirSpeed), 0, s.Time)(seg, h)
		})
	return s
}

// CruiseConstantMachConstantAltitudeLoiter loiters for a duration at constant Mach
// number and altitude.
type CruiseConstantMachConstantAltitudeLoiter struct {
	*rcaide.Segment
	Altitude float64 `mapstructure:"altitude"` // m
	Mach     float64 `mapstructure:"mach"`
	Time     float64 `mapstructure:"time"` // s
}

// NewCruiseConstantMachConstantAltitudeLoiter returns a loiter segment.
func NewCruiseConstantMachConstantAltitudeLoiter(tag string) *CruiseConstantMachConstantAltitudeLoiter {
	s := &CruiseConstantMachConstantAltitudeLoiter{Segment: rcaide.NewSegment(tag), Altitude: rcaide.Unset, Mach: rcaide.Unset, Time: rcaide.Unset}
	levelIndexed(s.Segment, &s.Altitude,
		func() []param { return []param{{"mach", s.Mach}, {"time", s.Time}} },
		func(seg *rcaide.Segment, h float64) error {
			return constantLevel(constantMach(s.Mach), 0, s.Time)(seg, h)
		})
	return s
}

// CruiseConstantAccelerationConstantAltitude accelerates from AirSpeedStart to
// AirSpeedEnd at constant altitude and acceleration.
type CruiseConstantAccelerationConstantAltitude struct {
	*rcaide.Segment
	Altitude      float64 `mapstructure:"altitude"`        // m
	AirSpeedStart float64 `mapstructure:"air_speed_start"` // m/s
	AirSpeedEnd   float64 `mapstructure:"air_speed_end"`   // m/s
	Acceleration  float64 `mapstructure:"acceleration"`    // m/s^2
}

// NewCruiseConstantAccelerationConstantAltitude returns an accelerating level segment.
func NewCruiseConstantAccelerationConstantAltitude(tag string) *CruiseConstantAccelerationConstantAltitude {
	s := &CruiseConstantAccelerationConstantAltitude{Segment: rcaide.NewSegment(tag), Altitude: rcaide.Unset, AirSpeedStart: rcaide.Unset, AirSpeedEnd: rcaide.Unset, Acceleration: 1}
	v0 := func() float64 { return start(s.Segment, s.AirSpeedStart, rcaide.PathSpeed) }
	levelIndexed(s.Segment, &s.Altitude,
		func() []param { return []param{{"air_speed_start", v0()}, {"air_speed_end", s.AirSpeedEnd}} },
		func(seg *rcaide.Segment, h float64) error {
			duration := (s.AirSpeedEnd - v0()) / s.Acceleration
			if !(duration > 0) {
				return fmt.Errorf("%w: segment `%s` cannot go from %.1f m/s to %.1f m/s at %.2f m/s^2", rcaide.ErrInvalidArgument, seg.Tag(), v0(), s.AirSpeedEnd, s.Acceleration)
			}
			return levelProfile(seg, h, duration, linspace(v0(), s.AirSpeedEnd, seg.State.Numerics.Dimensionless.X))
		})
	return s
}

// CruiseConstantThrottleConstantAltitude flies level at a set throttle until the air
// speed reaches AirSpeedEnd. The speed history and the elapsed time are unknowns.
type CruiseConstantThrottleConstantAltitude struct {
	*rcaide.Segment
	Altitude      float64 `mapstructure:"altitude"`        // m
	Throttle      float64 `mapstructure:"throttle"`        //
	AirSpeedStart float64 `mapstructure:"air_speed_start"` // m/s
	AirSpeedEnd   float64 `mapstructure:"air_speed_end"`   // m/s
}

// NewCruiseConstantThrottleConstantAltitude returns a level acceleration at full throttle.
func NewCruiseConstantThrottleConstantAltitude(tag string) *CruiseConstantThrottleConstantAltitude {
	s := &CruiseConstantThrottleConstantAltitude{Segment: rcaide.NewSegment(tag), Altitude: rcaide.Unset, Throttle: 1, AirSpeedStart: rcaide.Unset, AirSpeedEnd: rcaide.Unset}
	s.Controls.BodyAngle.Active = true
	s.Controls.Velocity.Active = true
	s.Controls.ElapsedTime.Active = true
	s.FlightDynamics.ForceX = true
	s.FlightDynamics.ForceZ = true
	v0 := func() float64 { return start(s.Segment, s.AirSpeedStart, rcaide.PathSpeed) }
	wire(s.Segment, hooks{
		validate: func(seg *rcaide.Segment) error {
			if err := startOrInitial(seg, "altitude", s.Altitude, rcaide.PathAltitude); err != nil {
				return err
			}
			if err := startOrInitial(seg, "air_speed_start", s.AirSpeedStart, rcaide.PathSpeed); err != nil {
				return err
			}
			return positive(seg, param{"throttle", s.Throttle}, param{"air_speed_end", s.AirSpeedEnd})
		},
		declare: func(seg *rcaide.Segment) error {
			seg.State.Residuals.Set(ResidualFinalVelocity, rcaide.NewFixed(1, 1, []float64{0}))
			return nil
		},
		initialize: func(seg *rcaide.Segment) error {
			seg.State.Conditions.Array(rcaide.PathThrottle).Fill(s.Throttle)
			linearGuess(seg, UnknownVelocity, s.Controls.Velocity, v0(), s.AirSpeedEnd)
			if len(s.Controls.ElapsedTime.InitialGuess) == 0 {
				seg.State.Unknowns.Array(UnknownElapsedTime).Set(0, 0, math.Max(math.Abs(s.AirSpeedEnd-v0())/2, 1))
			}
			return nil
		},
		kinematics: func(seg *rcaide.Segment) error {
			h := start(seg, s.Altitude, rcaide.PathAltitude)
			return levelProfile(seg, h, elapsedTime(seg), withStart(seg, v0()))
		},
		residuals: finalVelocity(func() float64 { return s.AirSpeedEnd }),
	})
	return s
}

// finalVelocity constrains the last velocity unknown.
func finalVelocity(end func() float64) step {
	return func(seg *rcaide.Segment) error {
		v := seg.State.Unknowns.Array(UnknownVelocity)
		seg.State.Residuals.Array(ResidualFinalVelocity).Set(0, 0, v.Last(0)-end())
		return nil
	}
}

// CruiseConstantPitchRateConstantAltitude pitches from PitchStart to PitchEnd at a
// constant rate while holding the altitude. The speed history is an unknown.
type CruiseConstantPitchRateConstantAltitude struct {
	*rcaide.Segment
	Altitude      float64 `mapstructure:"altitude"`        // m
	PitchRate     float64 `mapstructure:"pitch_rate"`      // rad/s
	PitchStart    float64 `mapstructure:"pitch_start"`     // rad
	PitchEnd      float64 `mapstructure:"pitch_end"`       // rad
	AirSpeedStart float64 `mapstructure:"air_speed_start"` // m/s
}

// NewCruiseConstantPitchRateConstantAltitude returns a pitching level segment.
func NewCruiseConstantPitchRateConstantAltitude(tag string) *CruiseConstantPitchRateConstantAltitude {
	s := &CruiseConstantPitchRateConstantAltitude{Segment: rcaide.NewSegment(tag), Altitude: rcaide.Unset, PitchRate: rcaide.Unset, PitchStart: rcaide.Unset, PitchEnd: rcaide.Unset, AirSpeedStart: rcaide.Unset}
	s.Controls.Throttle.Active = true
	s.Controls.Velocity.Active = true
	s.FlightDynamics.ForceX = true
	s.FlightDynamics.ForceZ = true
	v0 := func() float64 { return start(s.Segment, s.AirSpeedStart, rcaide.PathSpeed) }
	duration := func() float64 { return (s.PitchEnd - s.PitchStart) / s.PitchRate }
	wire(s.Segment, hooks{
		validate: func(seg *rcaide.Segment) error {
			if err := startOrInitial(seg, "altitude", s.Altitude, rcaide.PathAltitude); err != nil {
				return err
			}
			if err := startOrInitial(seg, "air_speed_start", s.AirSpeedStart, rcaide.PathSpeed); err != nil {
				return err
			}
			if err := required(seg, param{"pitch_rate", s.PitchRate}, param{"pitch_start", s.PitchStart}, param{"pitch_end", s.PitchEnd}); err != nil {
				return err
			}
			if !(duration() > 0) {
				return fmt.Errorf("%w: segment `%s` cannot pitch from %f to %f at %f rad/s", rcaide.ErrInvalidArgument, seg.Tag(), s.PitchStart, s.PitchEnd, s.PitchRate)
			}
			return nil
		},
		initialize: func(seg *rcaide.Segment) error {
			linearGuess(seg, UnknownVelocity, s.Controls.Velocity, v0(), v0())
			return nil
		},
		kinematics: func(seg *rcaide.Segment) error {
			x := seg.State.Numerics.Dimensionless.X
			seg.State.Conditions.Array(rcaide.PathBodyRotations).SetCol(1, linspace(s.PitchStart, s.PitchEnd, x))
			h := start(seg, s.Altitude, rcaide.PathAltitude)
			return levelProfile(seg, h, duration(), withStart(seg, v0()))
		},
	})
	return s
}

// CruiseCurvedConstantRadius turns at constant true air speed and altitude on a circle
// of TurnRadius, through TurnAngle (positive to the right). The turn is coordinated: the
// bank angle balances the centripetal acceleration.
type CruiseCurvedConstantRadius struct {
	*rcaide.Segment
	Altitude   float64 `mapstructure:"altitude"`    // m
	AirSpeed   float64 `mapstructure:"air_speed"`   // m/s
	TurnRadius float64 `mapstructure:"turn_radius"` // m
	TurnAngle  float64 `mapstructure:"turn_angle"`  // rad
}

// NewCruiseCurvedConstantRadius returns a turning segment.
func NewCruiseCurvedConstantRadius(tag string) *CruiseCurvedConstantRadius {
	s := &CruiseCurvedConstantRadius{Segment: rcaide.NewSegment(tag), Altitude: rcaide.Unset, AirSpeed: rcaide.Unset, TurnRadius: rcaide.Unset, TurnAngle: rcaide.Unset}
	levelIndexed(s.Segment, &s.Altitude,
		func() []param { return []param{{"air_speed", s.AirSpeed}, {"turn_radius", s.TurnRadius}} },
		func(seg *rcaide.Segment, h float64) error {
			if rcaide.IsUnset(s.TurnAngle) || s.TurnAngle == 0 {
				return missing(seg, "`turn_angle`")
			}
			x := seg.State.Numerics.Dimensionless.X
			n := len(x)
			V := s.AirSpeed
			duration := s.TurnRadius * math.Abs(s.TurnAngle) / V
			bank := math.Copysign(math.Atan(V*V/(atmosphere.G0*s.TurnRadius)), s.TurnAngle)
			vx, vy := make([]float64, n), make([]float64, n)
			for i, psi := range linspace(0, s.TurnAngle, x) {
				sp, cp := math.Sincos(psi)
				vx[i] = V * cp
				vy[i] = V * sp
			}
			t, err := spannedTime(seg, duration)
			if err != nil {
				return err
			}
			seg.State.Conditions.Array(rcaide.PathBodyRotations).FillCol(0, bank)
			return writeProfile(seg, t, linspace(h, h, x), vx, vy, make([]float64, n))
		})
	s.Phase(rcaide.PhasePostProcess).Set("inertial_position", func(seg *rcaide.Segment) error {
		return arcPosition(seg, s.TurnRadius, s.TurnAngle)
	})
	return s
}

// arcPosition places the points on the arc of the turn, the center being on the side of
// the turn from the first point.
func arcPosition(seg *rcaide.Segment, radius, angle float64) error {
	c := seg.State.Conditions
	pos := c.Array(rcaide.PathPosition)
	rng := c.Array(rcaide.PathRange)
	x0, y0, r0 := pos.At(0, 0), pos.At(0, 1), rng.At(0, 0)
	side := math.Copysign(1, angle)
	for i, psi := range linspace(0, angle, seg.State.Numerics.Dimensionless.X) {
		pos.Set(i, 0, x0+radius*math.Sin(math.Abs(psi)))
		pos.Set(i, 1, y0+side*radius*(1-math.Cos(psi)))
		rng.Set(i, 0, r0+radius*math.Abs(psi))
	}
	return nil
}
