package segments

import (
	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/units"
)

// vertical wires a segment of vertical flight: the throttle balances the weight and the
// horizontal position does not move.
func vertical(seg *rcaide.Segment, validate, kinematics step) {
	seg.Controls.Throttle.Active = true
	seg.FlightDynamics.ForceZ = true
	wire(seg, hooks{validate: validate, kinematics: kinematics})
	seg.Phase(rcaide.PhasePostProcess).Set("inertial_position", HoldPosition)
}

// HoldPosition keeps the horizontal position and the range of the first point.
func HoldPosition(seg *rcaide.Segment) error {
	c := seg.State.Conditions
	pos := c.Array(rcaide.PathPosition)
	rng := c.Array(rcaide.PathRange)
	pos.FillCol(0, pos.At(0, 0))
	pos.FillCol(1, pos.At(0, 1))
	rng.Fill(rng.At(0, 0))
	return nil
}

// Hover holds a constant altitude for a duration.
type Hover struct {
	*rcaide.Segment
	Altitude float64 `mapstructure:"altitude"` // m
	Time     float64 `mapstructure:"time"`     // s
}

// NewHover returns a one minute hover.
func NewHover(tag string) *Hover {
	s := &Hover{Segment: rcaide.NewSegment(tag), Altitude: rcaide.Unset, Time: 1 * units.Minute}
	vertical(s.Segment,
		func(seg *rcaide.Segment) error {
			if err := startOrInitial(seg, "altitude", s.Altitude, rcaide.PathAltitude); err != nil {
				return err
			}
			return positive(seg, param{"time", s.Time})
		},
		func(seg *rcaide.Segment) error {
			h := start(seg, s.Altitude, rcaide.PathAltitude)
			x := seg.State.Numerics.Dimensionless.X
			return levelProfile(seg, h, s.Time, make([]float64, len(x)))
		})
	return s
}

// VerticalClimb climbs straight up at a constant rate.
type VerticalClimb struct {
	*rcaide.Segment
	Altitudes `mapstructure:",squash"`
	ClimbRate float64 `mapstructure:"climb_rate"` // m/s
}

// NewVerticalClimb returns a vertical climb at 3 m/s.
func NewVerticalClimb(tag string) *VerticalClimb {
	s := &VerticalClimb{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), ClimbRate: 3 * units.MetersPerSecond}
	vertical(s.Segment,
		func(seg *rcaide.Segment) error {
			if err := s.Altitudes.validate(seg, 1); err != nil {
				return err
			}
			return positive(seg, param{"climb_rate", s.ClimbRate})
		},
		func(seg *rcaide.Segment) error {
			h0, h1 := s.Altitudes.resolve(seg)
			return climbProfile(seg, h0, h1, constantSpeed(s.ClimbRate), constantRate(s.ClimbRate))
		})
	return s
}

// VerticalDescent descends straight down at a constant rate.
type VerticalDescent struct {
	*rcaide.Segment
	Altitudes   `mapstructure:",squash"`
	DescentRate float64 `mapstructure:"descent_rate"` // m/s, positive down
}

// NewVerticalDescent returns a vertical descent at 3 m/s.
func NewVerticalDescent(tag string) *VerticalDescent {
	s := &VerticalDescent{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), DescentRate: 3 * units.MetersPerSecond}
	vertical(s.Segment,
		func(seg *rcaide.Segment) error {
			if err := s.Altitudes.validate(seg, -1); err != nil {
				return err
			}
			return positive(seg, param{"descent_rate", s.DescentRate})
		},
		func(seg *rcaide.Segment) error {
			h0, h1 := s.Altitudes.resolve(seg)
			return climbProfile(seg, h0, h1, constantSpeed(s.DescentRate), constantRate(-s.DescentRate))
		})
	return s
}
