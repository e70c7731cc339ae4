// Package vehicle provides the physical models of an aircraft: a drag polar, fuel and
// electric propulsion networks and the mass properties, bundled in a Vehicle.
package vehicle

import (
	"fmt"

	"github.com/brunoga/deep"
	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/atmosphere"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/units"
)

// MassProperties of a vehicle (kg).
type MassProperties struct {
	TakeoffMass        float64 `mapstructure:"takeoff"`
	OperatingEmptyMass float64 `mapstructure:"operating_empty"`
	MaxTakeoffMass     float64 `mapstructure:"max_takeoff"`
}

// Vehicle bundles the models evaluated by the segments of a mission.
type Vehicle struct {
	Tag            string
	MassProperties MassProperties
	Aerodynamics   *DragPolar
	Networks       []rcaide.Network
}

// TakeoffMass implements rcaide.MassModel.
func (v *Vehicle) TakeoffMass() float64 {
	return v.MassProperties.TakeoffMass
}

// Clone returns a deep copy of the vehicle, networks included.
func (v *Vehicle) Clone() *Vehicle {
	return deep.MustCopy(v)
}

// Validate returns an error if the vehicle cannot fly a mission.
func (v *Vehicle) Validate() error {
	if v.MassProperties.TakeoffMass <= 0 {
		return fmt.Errorf("%w: vehicle `%s` has a takeoff mass of %f kg", rcaide.ErrInvalidArgument, v.Tag, v.MassProperties.TakeoffMass)
	}
	if v.MassProperties.MaxTakeoffMass > 0 && v.MassProperties.TakeoffMass > v.MassProperties.MaxTakeoffMass {
		return fmt.Errorf("%w: vehicle `%s` is over its maximum takeoff mass", rcaide.ErrInvalidArgument, v.Tag)
	}
	if v.Aerodynamics == nil || v.Aerodynamics.Area <= 0 {
		return fmt.Errorf("%w: vehicle `%s` has no reference area", rcaide.ErrInvalidArgument, v.Tag)
	}
	if len(v.Networks) == 0 {
		return fmt.Errorf("%w: vehicle `%s` has no propulsion network", rcaide.ErrInvalidArgument, v.Tag)
	}
	return nil
}

// Analyses returns the analyses of a segment flown by this vehicle in the given
// atmosphere, the standard atmosphere if nil.
func (v *Vehicle) Analyses(atm rcaide.AtmosphereModel) *rcaide.Analyses {
	if atm == nil {
		atm = atmosphere.US1976{}
	}
	return &rcaide.Analyses{
		Atmosphere:   atm,
		Aerodynamics: v.Aerodynamics,
		Networks:     v.Networks,
		Weights:      v,
		PlanetRadius: atmosphere.EarthRadius,
	}
}

// Transport returns a twin turbofan narrow body transport.
func Transport() *Vehicle {
	return &Vehicle{
		Tag: "transport",
		MassProperties: MassProperties{
			TakeoffMass:        70000,
			OperatingEmptyMass: 41000,
			MaxTakeoffMass:     79000,
		},
		Aerodynamics: &DragPolar{
			Area:          124.86,
			Chord:         4.17,
			CD0:           0.02,
			InducedFactor: 0.045,
			CL0:           0.2,
			CLAlpha:       5.5,
			CLDelta:       0.3,
			Cm0:           0.05,
			CmAlpha:       -1.0,
			CmDelta:       -1.5,
		},
		Networks: []rcaide.Network{&FuelNetwork{
			NetworkTag: "fuel_line",
			Turbofans: []Turbofan{
				{Tag: "left", SLSThrust: 120 * units.KiloNewton, TSFC: 1.7e-5, DensityLapse: 0.75},
				{Tag: "right", SLSThrust: 120 * units.KiloNewton, TSFC: 1.7e-5, DensityLapse: 0.75},
			},
		}},
	}
}

// Multicopter returns a four rotor electric vertical lift vehicle.
func Multicopter() *Vehicle {
	return &Vehicle{
		Tag: "multicopter",
		MassProperties: MassProperties{
			TakeoffMass:        600,
			OperatingEmptyMass: 450,
			MaxTakeoffMass:     650,
		},
		Aerodynamics: &DragPolar{Area: 2, Chord: 1, CD0: 0.5},
		Networks: []rcaide.Network{&ElectricNetwork{
			NetworkTag: "bus",
			Battery:    Battery{MaxEnergy: 200 * units.KiloWattHour, Voltage: 400},
			Motor:      DCMotor{Resistance: 0.05, SpeedConstant: 2, NoLoadCurrent: 1},
			Rotor:      Rotor{Diameter: 2, Ct: 0.1, Cq: 0.01, Count: 4, Angle: 90 * units.Degree},
			RotorSpeed: 150,
		}},
	}
}
