package segments

import (
	"fmt"
	"math"

	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/units"
)

// Altitudes of a segment flying from AltitudeStart to AltitudeEnd (m). An unset start
// is the altitude the previous segment ended at.
type Altitudes struct {
	AltitudeStart float64 `mapstructure:"altitude_start"`
	AltitudeEnd   float64 `mapstructure:"altitude_end"`
}

func unsetAltitudes() Altitudes {
	return Altitudes{rcaide.Unset, rcaide.Unset}
}

// validate checks that the altitudes are known and go up (dir > 0) or down (dir < 0).
func (a *Altitudes) validate(seg *rcaide.Segment, dir float64) error {
	if err := startOrInitial(seg, "altitude_start", a.AltitudeStart, rcaide.PathAltitude); err != nil {
		return err
	}
	if err := required(seg, param{"altitude_end", a.AltitudeEnd}); err != nil {
		return err
	}
	h0, h1 := a.resolve(seg)
	if (h1-h0)*dir <= 0 {
		return fmt.Errorf("%w: segment `%s` cannot fly from %.1f m to %.1f m", rcaide.ErrInvalidArgument, seg.Tag(), h0, h1)
	}
	return nil
}

func (a *Altitudes) resolve(seg *rcaide.Segment) (h0, h1 float64) {
	return start(seg, a.AltitudeStart, rcaide.PathAltitude), a.AltitudeEnd
}

// altitudeIndexed wires a trimmed segment flying from one altitude to another with the
// speed and vertical laws returned by laws, which reads the parameters on every call.
func altitudeIndexed(seg *rcaide.Segment, alts *Altitudes, dir float64, params func() []param, laws func() (speedLaw, verticalLaw)) {
	aircraft(seg)
	wire(seg, hooks{
		validate: func(seg *rcaide.Segment) error {
			if err := alts.validate(seg, dir); err != nil {
				return err
			}
			return positive(seg, params()...)
		},
		kinematics: func(seg *rcaide.Segment) error {
			h0, h1 := alts.resolve(seg)
			speed, vertical := laws()
			return climbProfile(seg, h0, h1, speed, vertical)
		},
	})
}

// ClimbConstantSpeedConstantRate climbs at constant true air speed and climb rate.
type ClimbConstantSpeedConstantRate struct {
	*rcaide.Segment
	Altitudes `mapstructure:",squash"`
	AirSpeed  float64 `mapstructure:"air_speed"`  // m/s
	ClimbRate float64 `mapstructure:"climb_rate"` // m/s
}

// NewClimbConstantSpeedConstantRate returns a segment climbing at 3 m/s.
func NewClimbConstantSpeedConstantRate(tag string) *ClimbConstantSpeedConstantRate {
	s := &ClimbConstantSpeedConstantRate{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), AirSpeed: rcaide.Unset, ClimbRate: 3 * units.MetersPerSecond}
	altitudeIndexed(s.Segment, &s.Altitudes, 1,
		func() []param { return []param{{"air_speed", s.AirSpeed}, {"climb_rate", s.ClimbRate}} },
		func() (speedLaw, verticalLaw) { return constantSpeed(s.AirSpeed), constantRate(s.ClimbRate) })
	return s
}

// ClimbConstantSpeedConstantAngle climbs at constant true air speed and flight path angle.
type ClimbConstantSpeedConstantAngle struct {
	*rcaide.Segment
	Altitudes  `mapstructure:",squash"`
	AirSpeed   float64 `mapstructure:"air_speed"`   // m/s
	ClimbAngle float64 `mapstructure:"climb_angle"` // rad
}

// NewClimbConstantSpeedConstantAngle returns a segment climbing at 3 degrees.
func NewClimbConstantSpeedConstantAngle(tag string) *ClimbConstantSpeedConstantAngle {
	s := &ClimbConstantSpeedConstantAngle{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), AirSpeed: rcaide.Unset, ClimbAngle: 3 * degree}
	altitudeIndexed(s.Segment, &s.Altitudes, 1,
		func() []param { return []param{{"air_speed", s.AirSpeed}, {"climb_angle", s.ClimbAngle}} },
		func() (speedLaw, verticalLaw) { return constantSpeed(s.AirSpeed), constantAngle(s.ClimbAngle) })
	return s
}

// ClimbConstantMachConstantRate climbs at constant Mach number and climb rate.
type ClimbConstantMachConstantRate struct {
	*rcaide.Segment
	Altitudes `mapstructure:",squash"`
	Mach      float64 `mapstructure:"mach"`
	ClimbRate float64 `mapstructure:"climb_rate"` // m/s
}

// NewClimbConstantMachConstantRate returns a segment climbing at 3 m/s.
func NewClimbConstantMachConstantRate(tag string) *ClimbConstantMachConstantRate {
	s := &ClimbConstantMachConstantRate{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), Mach: rcaide.Unset, ClimbRate: 3 * units.MetersPerSecond}
	altitudeIndexed(s.Segment, &s.Altitudes, 1,
		func() []param { return []param{{"mach", s.Mach}, {"climb_rate", s.ClimbRate}} },
		func() (speedLaw, verticalLaw) { return constantMach(s.Mach), constantRate(s.ClimbRate) })
	return s
}

// ClimbConstantCASConstantRate climbs at constant calibrated air speed and climb rate.
type ClimbConstantCASConstantRate struct {
	*rcaide.Segment
	Altitudes          `mapstructure:",squash"`
	CalibratedAirSpeed float64 `mapstructure:"calibrated_air_speed"` // m/s
	ClimbRate          float64 `mapstructure:"climb_rate"`           // m/s
}

// NewClimbConstantCASConstantRate returns a segment climbing at 3 m/s.
func NewClimbConstantCASConstantRate(tag string) *ClimbConstantCASConstantRate {
	s := &ClimbConstantCASConstantRate{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), CalibratedAirSpeed: rcaide.Unset, ClimbRate: 3 * units.MetersPerSecond}
	altitudeIndexed(s.Segment, &s.Altitudes, 1,
		func() []param { return []param{{"calibrated_air_speed", s.CalibratedAirSpeed}, {"climb_rate", s.ClimbRate}} },
		func() (speedLaw, verticalLaw) { return calibratedSpeed(s.CalibratedAirSpeed), constantRate(s.ClimbRate) })
	return s
}

// ClimbConstantEASConstantRate climbs at constant equivalent air speed and climb rate.
type ClimbConstantEASConstantRate struct {
	*rcaide.Segment
	Altitudes          `mapstructure:",squash"`
	EquivalentAirSpeed float64 `mapstructure:"equivalent_air_speed"` // m/s
	ClimbRate          float64 `mapstructure:"climb_rate"`           // m/s
}

// NewClimbConstantEASConstantRate returns a segment climbing at 3 m/s.
func NewClimbConstantEASConstantRate(tag string) *ClimbConstantEASConstantRate {
	s := &ClimbConstantEASConstantRate{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), EquivalentAirSpeed: rcaide.Unset, ClimbRate: 3 * units.MetersPerSecond}
	altitudeIndexed(s.Segment, &s.Altitudes, 1,
		func() []param { return []param{{"equivalent_air_speed", s.EquivalentAirSpeed}, {"climb_rate", s.ClimbRate}} },
		func() (speedLaw, verticalLaw) { return equivalentSpeed(s.EquivalentAirSpeed), constantRate(s.ClimbRate) })
	return s
}

// ClimbConstantDynamicPressureConstantRate climbs at constant dynamic pressure and climb rate.
type ClimbConstantDynamicPressureConstantRate struct {
	*rcaide.Segment
	Altitudes       `mapstructure:",squash"`
	DynamicPressure float64 `mapstructure:"dynamic_pressure"` // Pa
	ClimbRate       float64 `mapstructure:"climb_rate"`       // m/s
}

// NewClimbConstantDynamicPressureConstantRate returns a segment climbing at 3 m/s.
func NewClimbConstantDynamicPressureConstantRate(tag string) *ClimbConstantDynamicPressureConstantRate {
	s := &ClimbConstantDynamicPressureConstantRate{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), DynamicPressure: rcaide.Unset, ClimbRate: 3 * units.MetersPerSecond}
	altitudeIndexed(s.Segment, &s.Altitudes, 1,
		func() []param { return []param{{"dynamic_pressure", s.DynamicPressure}, {"climb_rate", s.ClimbRate}} },
		func() (speedLaw, verticalLaw) { return dynamicPressureSpeed(s.DynamicPressure), constantRate(s.ClimbRate) })
	return s
}

// ClimbConstantDynamicPressureConstantAngle climbs at constant dynamic pressure and
// flight path angle.
type ClimbConstantDynamicPressureConstantAngle struct {
	*rcaide.Segment
	Altitudes       `mapstructure:",squash"`
	DynamicPressure float64 `mapstructure:"dynamic_pressure"` // Pa
	ClimbAngle      float64 `mapstructure:"climb_angle"`      // rad
}

// NewClimbConstantDynamicPressureConstantAngle returns a segment climbing at 3 degrees.
func NewClimbConstantDynamicPressureConstantAngle(tag string) *ClimbConstantDynamicPressureConstantAngle {
	s := &ClimbConstantDynamicPressureConstantAngle{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), DynamicPressure: rcaide.Unset, ClimbAngle: 3 * degree}
	altitudeIndexed(s.Segment, &s.Altitudes, 1,
		func() []param { return []param{{"dynamic_pressure", s.DynamicPressure}, {"climb_angle", s.ClimbAngle}} },
		func() (speedLaw, verticalLaw) { return dynamicPressureSpeed(s.DynamicPressure), constantAngle(s.ClimbAngle) })
	return s
}

// ClimbLinearMachConstantRate climbs at constant rate with the Mach number varying
// linearly from MachStart to MachEnd.
type ClimbLinearMachConstantRate struct {
	*rcaide.Segment
	Altitudes `mapstructure:",squash"`
	MachStart float64 `mapstructure:"mach_start"`
	MachEnd   float64 `mapstructure:"mach_end"`
	ClimbRate float64 `mapstructure:"climb_rate"` // m/s
}

// NewClimbLinearMachConstantRate returns a segment climbing at 3 m/s.
func NewClimbLinearMachConstantRate(tag string) *ClimbLinearMachConstantRate {
	s := &ClimbLinearMachConstantRate{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), MachStart: rcaide.Unset, MachEnd: rcaide.Unset, ClimbRate: 3 * units.MetersPerSecond}
	altitudeIndexed(s.Segment, &s.Altitudes, 1,
		func() []param {
			return []param{{"mach_start", s.MachStart}, {"mach_end", s.MachEnd}, {"climb_rate", s.ClimbRate}}
		},
		func() (speedLaw, verticalLaw) { return linearMach(s.MachStart, s.MachEnd), constantRate(s.ClimbRate) })
	return s
}

// ClimbLinearSpeedConstantRate climbs at constant rate with the true air speed varying
// linearly from AirSpeedStart to AirSpeedEnd. An unset start speed is carried over.
type ClimbLinearSpeedConstantRate struct {
	*rcaide.Segment
	Altitudes     `mapstructure:",squash"`
	AirSpeedStart float64 `mapstructure:"air_speed_start"` // m/s
	AirSpeedEnd   float64 `mapstructure:"air_speed_end"`   // m/s
	ClimbRate     float64 `mapstructure:"climb_rate"`      // m/s
}

// NewClimbLinearSpeedConstantRate returns a segment climbing at 3 m/s.
func NewClimbLinearSpeedConstantRate(tag string) *ClimbLinearSpeedConstantRate {
	s := &ClimbLinearSpeedConstantRate{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), AirSpeedStart: rcaide.Unset, AirSpeedEnd: rcaide.Unset, ClimbRate: 3 * units.MetersPerSecond}
	speedStart := func() float64 { return start(s.Segment, s.AirSpeedStart, rcaide.PathSpeed) }
	altitudeIndexed(s.Segment, &s.Altitudes, 1,
		func() []param {
			return []param{{"air_speed_start", speedStart()}, {"air_speed_end", s.AirSpeedEnd}, {"climb_rate", s.ClimbRate}}
		},
		func() (speedLaw, verticalLaw) { return linearSpeed(speedStart(), s.AirSpeedEnd), constantRate(s.ClimbRate) })
	return s
}

// ClimbConstantSpeedLinearAltitude climbs at constant true air speed over a horizontal
// distance, the altitude being linear in the distance flown.
type ClimbConstantSpeedLinearAltitude struct {
	*rcaide.Segment
	Altitudes `mapstructure:",squash"`
	AirSpeed  float64 `mapstructure:"air_speed"` // m/s
	Distance  float64 `mapstructure:"distance"`  // m
}

// NewClimbConstantSpeedLinearAltitude returns a constant speed linear altitude segment.
func NewClimbConstantSpeedLinearAltitude(tag string) *ClimbConstantSpeedLinearAltitude {
	s := &ClimbConstantSpeedLinearAltitude{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), AirSpeed: rcaide.Unset, Distance: rcaide.Unset}
	distanceIndexed(s.Segment, &s.Altitudes,
		func() []param { return []param{{"air_speed", s.AirSpeed}, {"distance", s.Distance}} },
		func() (speedLaw, float64) { return constantSpeed(s.AirSpeed), s.Distance })
	return s
}

// ClimbConstantMachLinearAltitude flies at constant Mach number over a horizontal
// distance, the altitude being linear in the distance flown.
type ClimbConstantMachLinearAltitude struct {
	*rcaide.Segment
	Altitudes `mapstructure:",squash"`
	Mach      float64 `mapstructure:"mach"`
	Distance  float64 `mapstructure:"distance"` // m
}

// NewClimbConstantMachLinearAltitude returns a constant Mach linear altitude segment.
func NewClimbConstantMachLinearAltitude(tag string) *ClimbConstantMachLinearAltitude {
	s := &ClimbConstantMachLinearAltitude{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), Mach: rcaide.Unset, Distance: rcaide.Unset}
	distanceIndexed(s.Segment, &s.Altitudes,
		func() []param { return []param{{"mach", s.Mach}, {"distance", s.Distance}} },
		func() (speedLaw, float64) { return constantMach(s.Mach), s.Distance })
	return s
}

// distanceIndexed wires a trimmed segment changing altitude linearly over a distance.
// Both climbs and descents are allowed.
func distanceIndexed(seg *rcaide.Segment, alts *Altitudes, params func() []param, law func() (speedLaw, float64)) {
	aircraft(seg)
	wire(seg, hooks{
		validate: func(seg *rcaide.Segment) error {
			if err := startOrInitial(seg, "altitude_start", alts.AltitudeStart, rcaide.PathAltitude); err != nil {
				return err
			}
			if err := required(seg, param{"altitude_end", alts.AltitudeEnd}); err != nil {
				return err
			}
			return positive(seg, params()...)
		},
		kinematics: func(seg *rcaide.Segment) error {
			h0, h1 := alts.resolve(seg)
			speed, distance := law()
			return distanceProfile(seg, h0, h1, distance, speed)
		},
	})
}

// ClimbConstantMachConstantAngle climbs at constant Mach number and flight path angle.
// The speed depends on the altitude reached, so the altitude and the elapsed time are
// unknowns constrained by the integrated climb rate and the final altitude.
type ClimbConstantMachConstantAngle struct {
	*rcaide.Segment
	Altitudes  `mapstructure:",squash"`
	Mach       float64 `mapstructure:"mach"`
	ClimbAngle float64 `mapstructure:"climb_angle"` // rad
}

// NewClimbConstantMachConstantAngle returns a segment climbing at 3 degrees.
func NewClimbConstantMachConstantAngle(tag string) *ClimbConstantMachConstantAngle {
	s := &ClimbConstantMachConstantAngle{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), Mach: rcaide.Unset, ClimbAngle: 3 * degree}
	aircraft(s.Segment)
	s.Controls.Altitude.Active = true
	s.Controls.ElapsedTime.Active = true
	wire(s.Segment, hooks{
		validate: func(seg *rcaide.Segment) error {
			if err := s.Altitudes.validate(seg, 1); err != nil {
				return err
			}
			return positive(seg, param{"mach", s.Mach}, param{"climb_angle", s.ClimbAngle})
		},
		declare: func(seg *rcaide.Segment) error {
			seg.State.Residuals.Set(ResidualAltitude, rcaide.Expanded(1, 0))
			seg.State.Residuals.Set(ResidualFinalAltitude, rcaide.NewFixed(1, 1, []float64{0}))
			return nil
		},
		initialize: func(seg *rcaide.Segment) error {
			h0, h1 := s.Altitudes.resolve(seg)
			linearGuess(seg, UnknownAltitude, s.Controls.Altitude, h0, h1)
			if len(s.Controls.ElapsedTime.InitialGuess) > 0 {
				return nil
			}
			d, err := atmosphereAt(seg, []float64{0.5 * (h0 + h1)})
			if err != nil {
				return err
			}
			V := s.Mach * d.SpeedOfSound[0]
			seg.State.Unknowns.Array(UnknownElapsedTime).Set(0, 0, (h1-h0)/(V*math.Sin(s.ClimbAngle)))
			return nil
		},
		kinematics: func(seg *rcaide.Segment) error {
			alt := seg.State.Unknowns.Array(UnknownAltitude).Col(0)
			V, err := constantMach(s.Mach)(seg, alt, seg.State.Numerics.Dimensionless.X)
			if err != nil {
				return err
			}
			sg, cg := math.Sincos(s.ClimbAngle)
			n := len(alt)
			vx, vz := make([]float64, n), make([]float64, n)
			for i := range V {
				vx[i] = V[i] * cg
				vz[i] = -V[i] * sg
			}
			t, err := spannedTime(seg, elapsedTime(seg))
			if err != nil {
				return err
			}
			return writeProfile(seg, t, alt, vx, make([]float64, n), vz)
		},
		residuals: func(seg *rcaide.Segment) error {
			h0, h1 := s.Altitudes.resolve(seg)
			c := seg.State.Conditions
			alt := c.Array(rcaide.PathAltitude).Col(0)
			vz := c.Array(rcaide.PathVelocity).Col(2)
			for i := range vz {
				vz[i] = -vz[i]
			}
			climbed := rcaide.Integrate(seg.State.Numerics.Time, vz)
			res := seg.State.Residuals.Array(ResidualAltitude)
			for i := range alt {
				res.Set(i, 0, alt[i]-h0-climbed[i])
			}
			seg.State.Residuals.Array(ResidualFinalAltitude).Set(0, 0, alt[len(alt)-1]-h1)
			return nil
		},
	})
	return s
}

// ClimbConstantThrottleConstantSpeed climbs at a set throttle and true air speed. The
// flight path angle is an unknown.
type ClimbConstantThrottleConstantSpeed struct {
	*rcaide.Segment
	Altitudes `mapstructure:",squash"`
	Throttle  float64 `mapstructure:"throttle"`
	AirSpeed  float64 `mapstructure:"air_speed"` // m/s
}

// NewClimbConstantThrottleConstantSpeed returns a segment climbing at full throttle.
func NewClimbConstantThrottleConstantSpeed(tag string) *ClimbConstantThrottleConstantSpeed {
	s := &ClimbConstantThrottleConstantSpeed{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), Throttle: 1, AirSpeed: rcaide.Unset}
	s.Controls.BodyAngle.Active = true
	s.Controls.FlightPathAngle.Active = true
	s.FlightDynamics.ForceX = true
	s.FlightDynamics.ForceZ = true
	wire(s.Segment, hooks{
		validate: func(seg *rcaide.Segment) error {
			if err := s.Altitudes.validate(seg, 1); err != nil {
				return err
			}
			return positive(seg, param{"throttle", s.Throttle}, param{"air_speed", s.AirSpeed})
		},
		initialize: func(seg *rcaide.Segment) error {
			seg.State.Conditions.Array(rcaide.PathThrottle).Fill(s.Throttle)
			return nil
		},
		kinematics: func(seg *rcaide.Segment) error {
			h0, h1 := s.Altitudes.resolve(seg)
			gamma := seg.State.Unknowns.Array(UnknownFlightPathAngle).Col(0)
			return climbProfile(seg, h0, h1, constantSpeed(s.AirSpeed), pathAngles(gamma))
		},
	})
	return s
}
