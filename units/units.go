// Package units holds SI multipliers so that mission inputs read like the
// quantities they describe, e.g. `seg.AltitudeEnd = 10 * units.Kilometer`.
package units

import "math"

// Length
const (
	Meter        = 1.0
	Kilometer    = 1000 * Meter
	Feet         = 0.3048 * Meter
	NauticalMile = 1852 * Meter
	Mile         = 1609.344 * Meter
)

// Time
const (
	Second = 1.0
	Minute = 60 * Second
	Hour   = 60 * Minute
)

// Speed
const (
	MetersPerSecond = Meter / Second
	Knots           = NauticalMile / Hour
	FeetPerMinute   = Feet / Minute
	KilometersPerHr = Kilometer / Hour
)

// Angles
const (
	Radian = 1.0
	Degree = math.Pi / 180 * Radian
)

// Mass, force, energy and power
const (
	Kilogram     = 1.0
	Pound        = 0.45359237 * Kilogram
	Newton       = 1.0
	KiloNewton   = 1000 * Newton
	Joule        = 1.0
	Watt         = 1.0
	Kilowatt     = 1000 * Watt
	WattHour     = 3600 * Joule
	KiloWattHour = 1000 * WattHour
	Volt         = 1.0
	RPM          = 2 * math.Pi / 60
)
