// Package spectral builds the collocation grids and the differentiation and
// integration operators used to discretize a mission segment.
//
// All grids live on the normalized interval [0, 1]. The operators are exact for
// polynomials of degree N-1 on the N points of the grid, and the integration
// operator fixes the integration constant at the first point to zero.
package spectral

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidArgument is returned when a grid cannot be built from the requested size.
var ErrInvalidArgument = errors.New("invalid argument")

// Kind defines the spacing of the collocation points.
type Kind uint8

const (
	// ChebyshevKind uses cosine spaced (Chebyshev-Gauss-Lobatto) points.
	ChebyshevKind Kind = iota + 1
	// LinearKind uses equally spaced points.
	LinearKind
)

func (k Kind) String() string {
	switch k {
	case ChebyshevKind:
		return "chebyshev"
	case LinearKind:
		return "linear"
	}
	panic("cannot stringify unknown discretization")
}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "chebyshev", "cheb":
		return ChebyshevKind, nil
	case "linear":
		return LinearKind, nil
	}
	return 0, fmt.Errorf("%w: unknown discretization `%s`", ErrInvalidArgument, s)
}

// Operators stores the collocation points with their differentiation (D) and
// integration (I) matrices.
type Operators struct {
	X []float64  // control points, increasing
	D *mat.Dense // N x N differentiation operator
	I *mat.Dense // N x N integration operator, zero first row and column
}

// N returns the number of control points.
func (o *Operators) N() int {
	return len(o.X)
}

// Copy returns a deep copy of these operators.
func (o *Operators) Copy() *Operators {
	x := make([]float64, len(o.X))
	copy(x, o.X)
	return &Operators{X: x, D: mat.DenseCopyOf(o.D), I: mat.DenseCopyOf(o.I)}
}

// Scaled returns the operators mapped from [0, 1] onto [0, span]: the points are
// multiplied by span, D is divided by it and I is multiplied by it.
func (o *Operators) Scaled(span float64) *Operators {
	s := o.Copy()
	for i := range s.X {
		s.X[i] *= span
	}
	if span != 0 {
		s.D.Scale(1/span, s.D)
	}
	s.I.Scale(span, s.I)
	return s
}

// Mapped returns the operators with respect to t, a monotonic function of the points
// sampled on X. With t' = D t, the new D is diag(1/t') D and the new I is I diag(t'),
// so that I (D f) = f - f[0] still holds. A linear t gives the same operators as Scaled.
func (o *Operators) Mapped(t []float64) *Operators {
	n := o.N()
	if len(t) != n {
		panic(fmt.Errorf("spectral: %d values to map %d points", len(t), n))
	}
	m := o.Copy()
	copy(m.X, t)
	if n == 1 {
		return m
	}
	dt := mat.NewVecDense(n, nil)
	dt.MulVec(o.D, mat.NewVecDense(n, append([]float64(nil), t...)))
	for i := 0; i < n; i++ {
		row := m.D.RawRowView(i)
		inv := 1 / dt.AtVec(i)
		for j := range row {
			row[j] *= inv
		}
	}
	for j := 0; j < n; j++ {
		w := dt.AtVec(j)
		for i := 0; i < n; i++ {
			m.I.Set(i, j, m.I.At(i, j)*w)
		}
	}
	return m
}

// New returns the operators of the requested kind.
func New(kind Kind, n int) (*Operators, error) {
	switch kind {
	case ChebyshevKind:
		return Chebyshev(n)
	case LinearKind:
		return Linear(n)
	}
	return nil, fmt.Errorf("%w: unknown discretization %d", ErrInvalidArgument, kind)
}

// Chebyshev returns the operators on N cosine spaced points mapped onto [0, 1].
func Chebyshev(n int) (*Operators, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: chebyshev grid needs at least one point (got %d)", ErrInvalidArgument, n)
	}
	if n == 1 {
		return singlePoint(), nil
	}
	x := make([]float64, n)
	c := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(n-1)))
		c[i] = 1
		if i == 0 || i == n-1 {
			c[i] = 2
		}
		if i%2 == 1 {
			c[i] = -c[i]
		}
	}
	return fromWeights(x, c)
}

// Linear returns the operators on N equally spaced points of [0, 1].
func Linear(n int) (*Operators, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: linear grid needs at least one point (got %d)", ErrInvalidArgument, n)
	}
	if n == 1 {
		return singlePoint(), nil
	}
	x := make([]float64, n)
	c := make([]float64, n)
	binom := 1.0
	for i := 0; i < n; i++ {
		if i > 0 {
			binom *= float64(n-i) / float64(i)
		}
		x[i] = float64(i) / float64(n-1)
		c[i] = 1 / binom
		if i%2 == 1 {
			c[i] = -c[i]
		}
	}
	// Guard against rounding on the last point.
	x[n-1] = 1
	return fromWeights(x, c)
}

func singlePoint() *Operators {
	return &Operators{X: []float64{0}, D: mat.NewDense(1, 1, nil), I: mat.NewDense(1, 1, nil)}
}

// fromWeights builds D from the inverse barycentric weights c and derives I from D.
func fromWeights(x, c []float64) (*Operators, error) {
	n := len(x)
	D := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			v := (c[i] / c[j]) / (x[i] - x[j])
			D.Set(i, j, v)
			sum += v
		}
		// Differentiating a constant must return zero.
		D.Set(i, i, -sum)
	}

	var inv mat.Dense
	if err := inv.Inverse(D.Slice(1, n, 1, n)); err != nil {
		return nil, fmt.Errorf("spectral: integration operator for N=%d: %w", n, err)
	}
	I := mat.NewDense(n, n, nil)
	I.Slice(1, n, 1, n).(*mat.Dense).Copy(&inv)
	return &Operators{X: x, D: D, I: I}, nil
}
