package rcaide

import (
	"fmt"

	"github.com/leadsgroup/RCAIDE-UIUC-sub000/spectral"
	"gonum.org/v1/gonum/mat"
)

// Integrate returns I f: the running integral of f from the first control point.
func Integrate(ops *spectral.Operators, f []float64) []float64 {
	return apply(ops.I, f)
}

// Differentiate returns D f.
func Differentiate(ops *spectral.Operators, f []float64) []float64 {
	return apply(ops.D, f)
}

func apply(m *mat.Dense, f []float64) []float64 {
	r, c := m.Dims()
	if c != len(f) {
		panic(fmt.Errorf("%d values for a %dx%d operator", len(f), r, c))
	}
	out := mat.NewVecDense(r, nil)
	out.MulVec(m, mat.NewVecDense(len(f), append([]float64(nil), f...)))
	return out.RawVector().Data
}
