package segments

import (
	"fmt"
	"sort"

	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
)

var registry = map[string]func(tag string) rcaide.Segmenter{
	"climb.constant_speed_constant_rate":             func(t string) rcaide.Segmenter { return NewClimbConstantSpeedConstantRate(t) },
	"climb.constant_speed_constant_angle":            func(t string) rcaide.Segmenter { return NewClimbConstantSpeedConstantAngle(t) },
	"climb.constant_speed_linear_altitude":           func(t string) rcaide.Segmenter { return NewClimbConstantSpeedLinearAltitude(t) },
	"climb.constant_mach_constant_rate":              func(t string) rcaide.Segmenter { return NewClimbConstantMachConstantRate(t) },
	"climb.constant_mach_constant_angle":             func(t string) rcaide.Segmenter { return NewClimbConstantMachConstantAngle(t) },
	"climb.constant_mach_linear_altitude":            func(t string) rcaide.Segmenter { return NewClimbConstantMachLinearAltitude(t) },
	"climb.constant_cas_constant_rate":               func(t string) rcaide.Segmenter { return NewClimbConstantCASConstantRate(t) },
	"climb.constant_eas_constant_rate":               func(t string) rcaide.Segmenter { return NewClimbConstantEASConstantRate(t) },
	"climb.constant_dynamic_pressure_constant_rate":  func(t string) rcaide.Segmenter { return NewClimbConstantDynamicPressureConstantRate(t) },
	"climb.constant_dynamic_pressure_constant_angle": func(t string) rcaide.Segmenter { return NewClimbConstantDynamicPressureConstantAngle(t) },
	"climb.constant_throttle_constant_speed":         func(t string) rcaide.Segmenter { return NewClimbConstantThrottleConstantSpeed(t) },
	"climb.linear_mach_constant_rate":                func(t string) rcaide.Segmenter { return NewClimbLinearMachConstantRate(t) },
	"climb.linear_speed_constant_rate":               func(t string) rcaide.Segmenter { return NewClimbLinearSpeedConstantRate(t) },

	"cruise.constant_speed_constant_altitude":            func(t string) rcaide.Segmenter { return NewCruiseConstantSpeedConstantAltitude(t) },
	"cruise.constant_mach_constant_altitude":             func(t string) rcaide.Segmenter { return NewCruiseConstantMachConstantAltitude(t) },
	"cruise.constant_dynamic_pressure_constant_altitude": func(t string) rcaide.Segmenter { return NewCruiseConstantDynamicPressureConstantAltitude(t) },
	"cruise.constant_speed_constant_altitude_loiter":     func(t string) rcaide.Segmenter { return NewCruiseConstantSpeedConstantAltitudeLoiter(t) },
	"cruise.constant_mach_constant_altitude_loiter":      func(t string) rcaide.Segmenter { return NewCruiseConstantMachConstantAltitudeLoiter(t) },
	"cruise.constant_acceleration_constant_altitude":     func(t string) rcaide.Segmenter { return NewCruiseConstantAccelerationConstantAltitude(t) },
	"cruise.constant_throttle_constant_altitude":         func(t string) rcaide.Segmenter { return NewCruiseConstantThrottleConstantAltitude(t) },
	"cruise.constant_pitch_rate_constant_altitude":       func(t string) rcaide.Segmenter { return NewCruiseConstantPitchRateConstantAltitude(t) },
	"cruise.curved_constant_radius":                      func(t string) rcaide.Segmenter { return NewCruiseCurvedConstantRadius(t) },

	"descent.constant_speed_constant_rate":  func(t string) rcaide.Segmenter { return NewDescentConstantSpeedConstantRate(t) },
	"descent.constant_speed_constant_angle": func(t string) rcaide.Segmenter { return NewDescentConstantSpeedConstantAngle(t) },
	"descent.constant_cas_constant_rate":    func(t string) rcaide.Segmenter { return NewDescentConstantCASConstantRate(t) },
	"descent.constant_eas_constant_rate":    func(t string) rcaide.Segmenter { return NewDescentConstantEASConstantRate(t) },
	"descent.linear_mach_constant_rate":     func(t string) rcaide.Segmenter { return NewDescentLinearMachConstantRate(t) },

	"ground.ground":  func(t string) rcaide.Segmenter { return NewGround(t) },
	"ground.takeoff": func(t string) rcaide.Segmenter { return NewTakeoff(t) },
	"ground.landing": func(t string) rcaide.Segmenter { return NewLanding(t) },

	"vertical.hover":   func(t string) rcaide.Segmenter { return NewHover(t) },
	"vertical.climb":   func(t string) rcaide.Segmenter { return NewVerticalClimb(t) },
	"vertical.descent": func(t string) rcaide.Segmenter { return NewVerticalDescent(t) },

	"single_point.set_speed_set_altitude": func(t string) rcaide.Segmenter { return NewSetSpeedSetAltitude(t) },
	"single_point.set_speed_set_throttle": func(t string) rcaide.Segmenter { return NewSetSpeedSetThrottle(t) },
}

// New returns a segment of the given kind, such as "climb.constant_speed_constant_rate".
func New(kind, tag string) (rcaide.Segmenter, error) {
	ctor, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown segment kind `%s`", rcaide.ErrInvalidArgument, kind)
	}
	return ctor(tag), nil
}

// Kinds returns the known segment kinds, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
