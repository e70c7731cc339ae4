package segments

import (
	"fmt"

	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
)

// singlePoint wires a segment evaluated at one control point.
func singlePoint(seg *rcaide.Segment, altitude *float64, params func() []param, kinematics func(seg *rcaide.Segment, h float64) error) {
	seg.State.Numerics.NumberOfControlPoints = 1
	wire(seg, hooks{
		validate: func(seg *rcaide.Segment) error {
			if seg.State.Numerics.NumberOfControlPoints != 1 {
				return fmt.Errorf("%w: single point segment `%s` has %d control points", rcaide.ErrInvalidArgument, seg.Tag(), seg.State.Numerics.NumberOfControlPoints)
			}
			if err := startOrInitial(seg, "altitude", *altitude, rcaide.PathAltitude); err != nil {
				return err
			}
			return required(seg, params()...)
		},
		kinematics: func(seg *rcaide.Segment) error {
			return kinematics(seg, start(seg, *altitude, rcaide.PathAltitude))
		},
	})
}

// SetSpeedSetAltitude trims the vehicle at one flight condition with a prescribed
// acceleration.
type SetSpeedSetAltitude struct {
	*rcaide.Segment
	Altitude      float64 `mapstructure:"altitude"`       // m
	AirSpeed      float64 `mapstructure:"air_speed"`      // m/s
	XAcceleration float64 `mapstructure:"x_acceleration"` // m/s^2
	ZAcceleration float64 `mapstructure:"z_acceleration"` // m/s^2, positive down
}

// NewSetSpeedSetAltitude returns an unaccelerated single point segment.
func NewSetSpeedSetAltitude(tag string) *SetSpeedSetAltitude {
	s := &SetSpeedSetAltitude{Segment: rcaide.NewSegment(tag), Altitude: rcaide.Unset, AirSpeed: rcaide.Unset}
	aircraft(s.Segment)
	singlePoint(s.Segment, &s.Altitude,
		func() []param { return []param{{"air_speed", s.AirSpeed}} },
		func(seg *rcaide.Segment, h float64) error {
			if err := levelProfile(seg, h, 0, []float64{s.AirSpeed}); err != nil {
				return err
			}
			a := seg.State.Conditions.Array(rcaide.PathAcceleration)
			a.Set(0, 0, s.XAcceleration)
			a.Set(0, 2, s.ZAcceleration)
			return nil
		})
	return s
}

// SetSpeedSetThrottle finds the attitude and the longitudinal acceleration at one
// flight condition and throttle setting.
type SetSpeedSetThrottle struct {
	*rcaide.Segment
	Altitude float64 `mapstructure:"altitude"`  // m
	AirSpeed float64 `mapstructure:"air_speed"` // m/s
	Throttle float64 `mapstructure:"throttle"`
}

// NewSetSpeedSetThrottle returns a full throttle single point segment.
func NewSetSpeedSetThrottle(tag string) *SetSpeedSetThrottle {
	s := &SetSpeedSetThrottle{Segment: rcaide.NewSegment(tag), Altitude: rcaide.Unset, AirSpeed: rcaide.Unset, Throttle: 1}
	s.Controls.BodyAngle.Active = true
	s.Controls.Acceleration.Active = true
	s.FlightDynamics.ForceX = true
	s.FlightDynamics.ForceZ = true
	singlePoint(s.Segment, &s.Altitude,
		func() []param { return []param{{"air_speed", s.AirSpeed}, {"throttle", s.Throttle}} },
		func(seg *rcaide.Segment, h float64) error {
			seg.State.Conditions.Array(rcaide.PathThrottle).Fill(s.Throttle)
			if err := levelProfile(seg, h, 0, []float64{s.AirSpeed}); err != nil {
				return err
			}
			ax := seg.State.Unknowns.Array(UnknownAcceleration).At(0, 0)
			seg.State.Conditions.Array(rcaide.PathAcceleration).Set(0, 0, ax)
			return nil
		})
	return s
}
