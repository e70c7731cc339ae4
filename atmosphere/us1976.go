// Package atmosphere provides standard atmosphere models.
package atmosphere

import (
	"errors"
	"fmt"
	"math"

	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
)

const (
	// G0 is the standard gravitational acceleration (m/s^2).
	G0 = 9.80665
	// GasConstant is the specific gas constant of dry air (J/kg/K).
	GasConstant = 287.0528
	// HeatRatio is the ratio of specific heats of air.
	HeatRatio = 1.4
	// EarthRadius is the mean radius used for the gravity model (m).
	EarthRadius = 6371e3
	// geopotentialRadius is the effective radius of the geopotential conversion (m).
	geopotentialRadius = 6356766.
	// hydrostatic is g0 M / R* in K/m.
	hydrostatic = G0 * 0.0289644 / 8.3144598
	// MinAltitude and MaxAltitude bound the geometric altitudes supported (m).
	MinAltitude = -5000.
	MaxAltitude = 86000.
)

// ErrAltitudeRange is returned for altitudes outside of the model.
var ErrAltitudeRange = errors.New("altitude outside of the atmosphere model")

type layer struct {
	base        float64 // geopotential altitude, m
	lapse       float64 // K/m
	temperature float64 // K
	pressure    float64 // Pa
}

var layers = []layer{
	{0, -6.5e-3, 288.15, 101325},
	{11000, 0, 216.65, 22632.06},
	{20000, 1.0e-3, 216.65, 5474.889},
	{32000, 2.8e-3, 228.65, 868.0187},
	{47000, 0, 270.65, 110.9063},
	{51000, -2.8e-3, 270.65, 66.93887},
	{71000, -2.0e-3, 214.65, 3.956420},
}

// US1976 is the U.S. Standard Atmosphere 1976 up to 86 km. The temperature deviation
// shifts the temperature at constant pressure.
type US1976 struct{}

// ComputeValues implements rcaide.AtmosphereModel.
func (US1976) ComputeValues(altitude, temperatureDeviation []float64) (*rcaide.AtmosphereData, error) {
	n := len(altitude)
	if len(temperatureDeviation) != n && len(temperatureDeviation) > 1 {
		return nil, fmt.Errorf("%w: %d temperature deviations for %d altitudes", rcaide.ErrInvalidArgument, len(temperatureDeviation), n)
	}
	d := &rcaide.AtmosphereData{
		Pressure:         make([]float64, n),
		Temperature:      make([]float64, n),
		Density:          make([]float64, n),
		SpeedOfSound:     make([]float64, n),
		DynamicViscosity: make([]float64, n),
		Gravity:          make([]float64, n),
	}
	for i, z := range altitude {
		if math.IsNaN(z) || z < MinAltitude || z > MaxAltitude {
			return nil, fmt.Errorf("%w: %.1f m not in [%.0f, %.0f]", ErrAltitudeRange, z, MinAltitude, MaxAltitude)
		}
		dT := 0.
		switch len(temperatureDeviation) {
		case 0:
		case 1:
			dT = temperatureDeviation[0]
		default:
			dT = temperatureDeviation[i]
		}
		T, P := standard(z)
		T += dT
		if T <= 0 {
			return nil, fmt.Errorf("%w: temperature deviation %.1f K yields %.1f K", rcaide.ErrInvalidArgument, dT, T)
		}
		d.Pressure[i] = P
		d.Temperature[i] = T
		d.Density[i] = P / (GasConstant * T)
		d.SpeedOfSound[i] = math.Sqrt(HeatRatio * GasConstant * T)
		d.DynamicViscosity[i] = Sutherland(T)
		r := EarthRadius / (EarthRadius + z)
		d.Gravity[i] = G0 * r * r
	}
	return d, nil
}

// standard returns the standard day temperature and pressure at geometric altitude z.
func standard(z float64) (T, P float64) {
	h := geopotentialRadius * z / (geopotentialRadius + z)
	l := layers[0]
	for _, candidate := range layers[1:] {
		if h < candidate.base {
			break
		}
		l = candidate
	}
	dh := h - l.base
	T = l.temperature + l.lapse*dh
	if l.lapse == 0 {
		P = l.pressure * math.Exp(-hydrostatic*dh/l.temperature)
	} else {
		P = l.pressure * math.Pow(l.temperature/T, hydrostatic/l.lapse)
	}
	return T, P
}

// Sutherland returns the dynamic viscosity of air (Pa s) at temperature T (K).
func Sutherland(T float64) float64 {
	return 1.458e-6 * math.Pow(T, 1.5) / (T + 110.4)
}

// Density returns the density at altitude z on a standard day. It panics outside of
// the model, like every other use of an unsupported altitude.
func Density(z float64) float64 {
	d, err := US1976{}.ComputeValues([]float64{z}, nil)
	if err != nil {
		panic(err)
	}
	return d.Density[0]
}
