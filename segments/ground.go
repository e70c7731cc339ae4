package segments

import (
	"math"

	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
)

// Ground is a roll on a runway at a set throttle, from AirSpeedStart to AirSpeedEnd. The
// speed history and the elapsed time are unknowns; the runway carries whatever weight
// the wings do not, with a rolling friction opposing the motion.
//
// Takeoff and Landing are ground rolls with their own defaults.
type Ground struct {
	*rcaide.Segment
	Altitude            float64 `mapstructure:"altitude"`        // m, runway elevation
	AirSpeedStart       float64 `mapstructure:"air_speed_start"` // m/s
	AirSpeedEnd         float64 `mapstructure:"air_speed_end"`   // m/s
	Throttle            float64 `mapstructure:"throttle"`
	FrictionCoefficient float64 `mapstructure:"friction_coefficient"`
}

// NewGround returns a ground roll with an idle throttle and a rolling friction of 0.04.
func NewGround(tag string) *Ground {
	s := &Ground{Segment: rcaide.NewSegment(tag), Altitude: rcaide.Unset, AirSpeedStart: rcaide.Unset, AirSpeedEnd: rcaide.Unset, FrictionCoefficient: 0.04}
	s.Controls.Velocity.Active = true
	s.Controls.ElapsedTime.Active = true
	s.FlightDynamics.ForceX = true
	v0 := func() float64 { return start(s.Segment, s.AirSpeedStart, rcaide.PathSpeed) }
	wire(s.Segment, hooks{
		validate: func(seg *rcaide.Segment) error {
			if err := startOrInitial(seg, "altitude", s.Altitude, rcaide.PathAltitude); err != nil {
				return err
			}
			if err := startOrInitial(seg, "air_speed_start", s.AirSpeedStart, rcaide.PathSpeed); err != nil {
				return err
			}
			return required(seg, param{"air_speed_end", s.AirSpeedEnd}, param{"throttle", s.Throttle}, param{"friction_coefficient", s.FrictionCoefficient})
		},
		declare: func(seg *rcaide.Segment) error {
			seg.State.Residuals.Set(ResidualFinalVelocity, rcaide.NewFixed(1, 1, []float64{0}))
			return nil
		},
		initialize: func(seg *rcaide.Segment) error {
			seg.State.Conditions.Array(rcaide.PathThrottle).Fill(s.Throttle)
			linearGuess(seg, UnknownVelocity, s.Controls.Velocity, v0(), s.AirSpeedEnd)
			if len(s.Controls.ElapsedTime.InitialGuess) == 0 {
				// About 2 m/s^2 of longitudinal acceleration.
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
	s.Phase(rcaide.PhaseIterate).Sub("conditions").Set("forces", chain(UpdateForces, func(seg *rcaide.Segment) error {
		return groundReaction(seg, s.FrictionCoefficient)
	}))
	return s
}

// NewTakeoff returns a full throttle ground roll from rest.
func NewTakeoff(tag string) *Ground {
	s := NewGround(tag)
	s.AirSpeedStart = 0
	s.Throttle = 1
	return s
}

// NewLanding returns an idle ground roll with braking friction, down to 10 m/s.
func NewLanding(tag string) *Ground {
	s := NewGround(tag)
	s.AirSpeedEnd = 10
	s.Throttle = 0
	s.FrictionCoefficient = 0.4
	return s
}

// groundReaction cancels the net downward force with the runway reaction and applies
// the friction it causes along the track.
func groundReaction(seg *rcaide.Segment, mu float64) error {
	c := seg.State.Conditions
	total := c.Array(rcaide.PathTotalForce)
	rot := c.Array(rcaide.PathBodyRotations)
	rows, _ := total.Dims()
	for i := 0; i < rows; i++ {
		normal := total.At(i, 2)
		if normal <= 0 {
			continue
		}
		sh, ch := math.Sincos(rot.At(i, 2))
		total.Set(i, 0, total.At(i, 0)-mu*normal*ch)
		total.Set(i, 1, total.At(i, 1)-mu*normal*sh)
		total.Set(i, 2, 0)
	}
	return nil
}
