package vehicle

import (
	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
)

// DragPolar is a linear lift curve with a parabolic drag polar and a linear pitching
// moment, all driven by the angle of attack and the elevator deflection.
type DragPolar struct {
	Area          float64 `mapstructure:"area"`  // m^2
	Chord         float64 `mapstructure:"chord"` // m
	CD0           float64 `mapstructure:"cd0"`
	InducedFactor float64 `mapstructure:"k"`
	CL0           float64 `mapstructure:"cl0"`
	CLAlpha       float64 `mapstructure:"cl_alpha"` // per rad
	CLDelta       float64 `mapstructure:"cl_delta"` // per rad
	Cm0           float64 `mapstructure:"cm0"`
	CmAlpha       float64 `mapstructure:"cm_alpha"` // per rad
	CmDelta       float64 `mapstructure:"cm_delta"` // per rad
}

// ReferenceArea implements rcaide.AerodynamicsModel.
func (p *DragPolar) ReferenceArea() float64 { return p.Area }

// ReferenceLength implements rcaide.AerodynamicsModel.
func (p *DragPolar) ReferenceLength() float64 { return p.Chord }

// Evaluate implements rcaide.AerodynamicsModel.
func (p *DragPolar) Evaluate(s *rcaide.State) error {
	c := s.Conditions
	alpha := c.Array(rcaide.PathAlpha)
	delta := c.Array(rcaide.PathElevator)
	CL := c.Array(rcaide.PathCL)
	CD := c.Array(rcaide.PathCD)
	CM := c.Array(rcaide.PathCM)
	rows, _ := alpha.Dims()
	for i := 0; i < rows; i++ {
		a := alpha.At(i, 0)
		d := delta.At(i, 0)
		cl := p.CL0 + p.CLAlpha*a + p.CLDelta*d
		CL.Set(i, 0, cl)
		CD.Set(i, 0, p.CD0+p.InducedFactor*cl*cl)
		CM.Set(i, 0, p.Cm0+p.CmAlpha*a+p.CmDelta*d)
	}
	return nil
}
