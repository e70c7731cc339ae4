// Package solve finds the roots of square nonlinear systems.
package solve

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultTolerance is the residual norm below which a system is solved.
	DefaultTolerance = 1e-8
	// DefaultMinDamping is the smallest fraction of a Newton step tried by the line search.
	DefaultMinDamping = 1. / 1024
)

// DefaultStep is the relative forward difference step of the Jacobian.
var DefaultStep = math.Sqrt(2.220446049250313e-16)

// ErrDimension is returned when the residual vector and the unknown vector differ in length.
var ErrDimension = errors.New("residual and unknown vectors differ in length")

// Func evaluates the residuals of the system at x. The returned slice must have the
// same length as x and must not be retained by the callee.
type Func func(x []float64) ([]float64, error)

// Status defines how a solve ended.
type Status uint8

const (
	// Converged means the residual norm is below the tolerance.
	Converged Status = iota + 1
	// MaxEvaluations means the evaluation budget was exhausted.
	MaxEvaluations
	// Singular means the Jacobian could not be inverted.
	Singular
	// Stalled means no damped step reduced the residual norm.
	Stalled
	// NonFinite means the residuals at the starting point are NaN or infinite.
	NonFinite
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case MaxEvaluations:
		return "max evaluations"
	case Singular:
		return "singular jacobian"
	case Stalled:
		return "stalled"
	case NonFinite:
		return "non finite residuals"
	}
	panic("cannot stringify unknown solver status")
}

// Settings of the Newton solver. Zero values select the defaults.
type Settings struct {
	Tolerance      float64 // on the 2-norm of the residuals
	MaxEvaluations int     // 0 means 200*(n+1)
	Step           float64 // relative finite difference step
	MinDamping     float64 // smallest step fraction of the line search
	// Reject reports whether an error of f means x lies outside the domain of the
	// system. Such points are treated as failed trial steps instead of ending the solve.
	Reject func(err error) bool
}

func (s Settings) withDefaults(n int) Settings {
	if s.Tolerance <= 0 {
		s.Tolerance = DefaultTolerance
	}
	if s.MaxEvaluations <= 0 {
		s.MaxEvaluations = 200 * (n + 1)
	}
	if s.Step <= 0 {
		s.Step = DefaultStep
	}
	if s.MinDamping <= 0 || s.MinDamping > 1 {
		s.MinDamping = DefaultMinDamping
	}
	return s
}

// Result of a solve. X and Residual hold the best point found.
type Result struct {
	X           []float64
	Residual    []float64
	Norm        float64
	Evaluations int
	Iterations  int
	Status      Status
}

// Converged returns whether the solve reached the tolerance.
func (r Result) Converged() bool {
	return r.Status == Converged
}

func (r Result) String() string {
	return fmt.Sprintf("%s after %d iterations (%d evaluations), |R|=%.3e", r.Status, r.Iterations, r.Evaluations, r.Norm)
}

var errBudget = errors.New("evaluation budget exhausted")

// Newton solves f(x) = 0 from x0 with a damped Newton-Raphson method using a forward
// difference Jacobian. An error is only returned when f itself fails or returns a
// vector of the wrong length; failing to converge is reported through Result.Status.
// Errors accepted by Settings.Reject shorten the line search step, and switch the
// Jacobian to a backward difference for the affected column.
func Newton(f Func, x0 []float64, s Settings) (Result, error) {
	n := len(x0)
	s = s.withDefaults(n)
	r := Result{X: make([]float64, n)}
	copy(r.X, x0)

	eval := func(x []float64) ([]float64, error) {
		if r.Evaluations >= s.MaxEvaluations {
			return nil, errBudget
		}
		r.Evaluations++
		fx, err := f(x)
		if err != nil {
			return nil, err
		}
		if len(fx) != n {
			return nil, fmt.Errorf("%w: %d residuals for %d unknowns", ErrDimension, len(fx), n)
		}
		out := make([]float64, n)
		copy(out, fx)
		return out, nil
	}
	// stop maps the budget sentinel to a status and passes every other error through.
	stop := func(err error) (Result, error) {
		if errors.Is(err, errBudget) {
			r.Status = MaxEvaluations
			return r, nil
		}
		return r, err
	}
	rejected := func(err error) bool {
		return s.Reject != nil && !errors.Is(err, errBudget) && s.Reject(err)
	}

	fx, err := eval(r.X)
	if err != nil {
		return stop(err)
	}
	r.Residual = fx
	r.Norm = floats.Norm(fx, 2)
	if !finite(r.Norm) {
		r.Status = NonFinite
		return r, nil
	}

	jac := mat.NewDense(max(n, 1), max(n, 1), nil)
	xh := make([]float64, n)
	for {
		if r.Norm < s.Tolerance {
			r.Status = Converged
			return r, nil
		}
		// Jacobian, one column per unknown.
		for j := 0; j < n; j++ {
			copy(xh, r.X)
			h := s.Step * math.Max(math.Abs(r.X[j]), 1)
			xh[j] += h
			fh, err := eval(xh)
			if err != nil && rejected(err) {
				h = -h
				xh[j] = r.X[j] + h
				fh, err = eval(xh)
			}
			if err != nil {
				return stop(err)
			}
			for i := 0; i < n; i++ {
				jac.Set(i, j, (fh[i]-r.Residual[i])/h)
			}
		}
		rhs := mat.NewVecDense(n, nil)
		for i, v := range r.Residual {
			rhs.SetVec(i, -v)
		}
		var dx mat.VecDense
		if err := dx.SolveVec(jac, rhs); err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) {
				r.Status = Singular
				return r, nil
			}
		}
		step := dx.RawVector().Data
		if !allFinite(step) {
			r.Status = Singular
			return r, nil
		}

		// Backtrack until the residual norm decreases.
		accepted := false
		xt := make([]float64, n)
		for lambda := 1.0; lambda >= s.MinDamping; lambda /= 2 {
			for i := range xt {
				xt[i] = r.X[i] + lambda*step[i]
			}
			ft, err := eval(xt)
			if err != nil {
				if rejected(err) {
					continue
				}
				return stop(err)
			}
			if nt := floats.Norm(ft, 2); finite(nt) && nt < r.Norm {
				copy(r.X, xt)
				r.Residual = ft
				r.Norm = nt
				accepted = true
				break
			}
		}
		r.Iterations++
		if !accepted {
			r.Status = Stalled
			return r, nil
		}
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(v []float64) bool {
	for _, f := range v {
		if !finite(f) {
			return false
		}
	}
	return true
}
