package segments

import (
	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/units"
)

// DescentConstantSpeedConstantRate descends at constant true air speed and descent rate.
type DescentConstantSpeedConstantRate struct {
	*rcaide.Segment
	Altitudes   `mapstructure:",squash"`
	AirSpeed    float64 `mapstructure:"air_speed"`    // m/s
	DescentRate float64 `mapstructure:"descent_rate"` // m/s, positive down
}

// NewDescentConstantSpeedConstantRate returns a segment descending at 3 m/s.
func NewDescentConstantSpeedConstantRate(tag string) *DescentConstantSpeedConstantRate {
	s := &DescentConstantSpeedConstantRate{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), AirSpeed: rcaide.Unset, DescentRate: 3 * units.MetersPerSecond}
	altitudeIndexed(s.Segment, &s.Altitudes, -1,
		func() []param { return []param{{"air_speed", s.AirSpeed}, {"descent_rate", s.DescentRate}} },
		func() (speedLaw, verticalLaw) { return constantSpeed(s.AirSpeed), constantRate(-s.DescentRate) })
	return s
}

// DescentConstantSpeedConstantAngle descends at constant true air speed and flight path angle.
type DescentConstantSpeedConstantAngle struct {
	*rcaide.Segment
	Altitudes    `mapstructure:",squash"`
	AirSpeed     float64 `mapstructure:"air_speed"`     // m/s
	DescentAngle float64 `mapstructure:"descent_angle"` // rad, positive down
}

// NewDescentConstantSpeedConstantAngle returns a segment descending at 3 degrees.
func NewDescentConstantSpeedConstantAngle(tag string) *DescentConstantSpeedConstantAngle {
	s := &DescentConstantSpeedConstantAngle{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), AirSpeed: rcaide.Unset, DescentAngle: 3 * degree}
	altitudeIndexed(s.Segment, &s.Altitudes, -1,
		func() []param { return []param{{"air_speed", s.AirSpeed}, {"descent_angle", s.DescentAngle}} },
		func() (speedLaw, verticalLaw) { return constantSpeed(s.AirSpeed), constantAngle(-s.DescentAngle) })
	return s
}

// DescentConstantCASConstantRate descends at constant calibrated air speed and descent rate.
type DescentConstantCASConstantRate struct {
	*rcaide.Segment
	Altitudes          `mapstructure:",squash"`
	CalibratedAirSpeed float64 `mapstructure:"calibrated_air_speed"` // m/s
	DescentRate        float64 `mapstructure:"descent_rate"`         // m/s, positive down
}

// NewDescentConstantCASConstantRate returns a segment descending at 3 m/s.
func NewDescentConstantCASConstantRate(tag string) *DescentConstantCASConstantRate {
	s := &DescentConstantCASConstantRate{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), CalibratedAirSpeed: rcaide.Unset, DescentRate: 3 * units.MetersPerSecond}
	altitudeIndexed(s.Segment, &s.Altitudes, -1,
		func() []param {
			return []param{{"calibrated_air_speed", s.CalibratedAirSpeed}, {"descent_rate", s.DescentRate}}
		},
		func() (speedLaw, verticalLaw) { return calibratedSpeed(s.CalibratedAirSpeed), constantRate(-s.DescentRate) })
	return s
}

// DescentConstantEASConstantRate descends at constant equivalent air speed and descent rate.
type DescentConstantEASConstantRate struct {
	*rcaide.Segment
	Altitudes          `mapstructure:",squash"`
	EquivalentAirSpeed float64 `mapstructure:"equivalent_air_speed"` // m/s
	DescentRate        float64 `mapstructure:"descent_rate"`         // m/s, positive down
}

// NewDescentConstantEASConstantRate returns a segment descending at 3 m/s.
func NewDescentConstantEASConstantRate(tag string) *DescentConstantEASConstantRate {
	s := &DescentConstantEASConstantRate{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), EquivalentAirSpeed: rcaide.Unset, DescentRate: 3 * units.MetersPerSecond}
	altitudeIndexed(s.Segment, &s.Altitudes, -1,
		func() []param {
			return []param{{"equivalent_air_speed", s.EquivalentAirSpeed}, {"descent_rate", s.DescentRate}}
		},
		func() (speedLaw, verticalLaw) { return equivalentSpeed(s.EquivalentAirSpeed), constantRate(-s.DescentRate) })
	return s
}

// DescentLinearMachConstantRate descends at constant rate with the Mach number varying
// linearly from MachStart to MachEnd.
type DescentLinearMachConstantRate struct {
	*rcaide.Segment
	Altitudes   `mapstructure:",squash"`
	MachStart   float64 `mapstructure:"mach_start"`
	MachEnd     float64 `mapstructure:"mach_end"`
	DescentRate float64 `mapstructure:"descent_rate"` // m/s, positive down
}

// NewDescentLinearMachConstantRate returns a segment descending at 3 m/s.
func NewDescentLinearMachConstantRate(tag string) *DescentLinearMachConstantRate {
	s := &DescentLinearMachConstantRate{Segment: rcaide.NewSegment(tag), Altitudes: unsetAltitudes(), MachStart: rcaide.Unset, MachEnd: rcaide.Unset, DescentRate: 3 * units.MetersPerSecond}
	altitudeIndexed(s.Segment, &s.Altitudes, -1,
		func() []param {
			return []param{{"mach_start", s.MachStart}, {"mach_end", s.MachEnd}, {"descent_rate", s.DescentRate}}
		},
		func() (speedLaw, verticalLaw) { return linearMach(s.MachStart, s.MachEnd), constantRate(-s.DescentRate) })
	return s
}
