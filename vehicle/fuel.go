package vehicle

import (
	"fmt"
	"math"

	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
)

// SeaLevelDensity is the standard day density at sea level (kg/m^3).
const SeaLevelDensity = 1.225

// Turbofan is a thrust producing engine. Its thrust is the throttle times the sea level
// static thrust, lapsed with the density ratio.
type Turbofan struct {
	Tag          string  `mapstructure:"tag"`
	SLSThrust    float64 `mapstructure:"sls_thrust"`    // N
	TSFC         float64 `mapstructure:"tsfc"`          // kg/N/s
	DensityLapse float64 `mapstructure:"density_lapse"` // exponent of the density ratio
	Angle        float64 `mapstructure:"angle"`         // rad, nose up from the body x axis
}

// Thrust returns the thrust (N) and the fuel flow (kg/s) at the given throttle and density.
func (t Turbofan) Thrust(throttle, density float64) (thrust, fuelFlow float64) {
	thrust = throttle * t.SLSThrust * math.Pow(density/SeaLevelDensity, t.DensityLapse)
	return thrust, t.TSFC * math.Abs(thrust)
}

func (t Turbofan) tag(k int) string {
	if t.Tag == "" {
		return fmt.Sprintf("turbofan_%d", k)
	}
	return t.Tag
}

// FuelNetwork is a set of turbofans sharing the segment throttle and burning fuel.
type FuelNetwork struct {
	NetworkTag string     `mapstructure:"tag"`
	Turbofans  []Turbofan `mapstructure:"turbofans"`
}

// Tag implements rcaide.Network.
func (n *FuelNetwork) Tag() string { return n.NetworkTag }

// AppendOperatingConditions implements rcaide.Network.
func (n *FuelNetwork) AppendOperatingConditions(seg *rcaide.Segment, energy *rcaide.Conditions) {
	sub := energy.Sub(n.NetworkTag)
	sub.Set("thrust", rcaide.Expanded(1, 0))
	sub.Set("fuel_flow_rate", rcaide.Expanded(1, 0))
	for k, t := range n.Turbofans {
		eng := sub.Sub(t.tag(k))
		eng.Set("thrust", rcaide.Expanded(1, 0))
		eng.Set("fuel_flow_rate", rcaide.Expanded(1, 0))
	}
}

// ComputePerformance implements rcaide.Network.
func (n *FuelNetwork) ComputePerformance(s *rcaide.State) (rcaide.Performance, error) {
	if len(n.Turbofans) == 0 {
		return rcaide.Performance{}, fmt.Errorf("fuel network `%s` has no turbofan", n.NetworkTag)
	}
	c := s.Conditions
	throttle := c.Array(rcaide.PathThrottle).Col(0)
	rho := c.Array(rcaide.PathDensity).Col(0)
	rows := len(throttle)
	perf := rcaide.Performance{
		Thrust:   rcaide.NewArray(rows, 3),
		MassRate: make([]float64, rows),
		Power:    make([]float64, rows),
	}
	sub := c.Sub(rcaide.PathEnergy + "." + n.NetworkTag)
	total := sub.Array("thrust")
	flow := sub.Array("fuel_flow_rate")
	for i := 0; i < rows; i++ {
		var T, mdot float64
		for k, t := range n.Turbofans {
			ti, fi := t.Thrust(throttle[i], rho[i])
			sub.Array(t.tag(k)+".thrust").Set(i, 0, ti)
			sub.Array(t.tag(k)+".fuel_flow_rate").Set(i, 0, fi)
			perf.Thrust.Set(i, 0, perf.Thrust.At(i, 0)+ti*math.Cos(t.Angle))
			perf.Thrust.Set(i, 2, perf.Thrust.At(i, 2)-ti*math.Sin(t.Angle))
			T += ti
			mdot += fi
		}
		total.Set(i, 0, T)
		flow.Set(i, 0, mdot)
		perf.MassRate[i] = mdot
	}
	return perf, nil
}
