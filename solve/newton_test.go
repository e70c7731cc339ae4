package solve

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func circle(x []float64) ([]float64, error) {
	return []float64{x[0]*x[0] + x[1]*x[1] - 4, x[0] - x[1]}, nil
}

func TestNewtonLinear(t *testing.T) {
	f := func(x []float64) ([]float64, error) {
		return []float64{2*x[0] + x[1] - 3, x[0] - x[1]}, nil
	}
	r, err := Newton(f, []float64{10, -4}, Settings{})
	if err != nil {
		t.Fatal(err)
	}
	if !r.Converged() {
		t.Fatalf("linear system did not converge: %s", r)
	}
	if !floats.EqualApprox(r.X, []float64{1, 1}, 1e-7) {
		t.Fatalf("incorrect solution %+v", r.X)
	}
	if r.Iterations > 2 {
		t.Fatalf("linear system took %d iterations", r.Iterations)
	}
}

func TestNewtonNonLinear(t *testing.T) {
	r, err := Newton(circle, []float64{1, 0.5}, Settings{Tolerance: 1e-10})
	if err != nil {
		t.Fatal(err)
	}
	if !r.Converged() {
		t.Fatalf("did not converge: %s", r)
	}
	if !scalar.EqualWithinAbs(r.X[0], math.Sqrt2, 1e-8) || !scalar.EqualWithinAbs(r.X[1], math.Sqrt2, 1e-8) {
		t.Fatalf("incorrect solution %+v", r.X)
	}
	if r.Norm >= 1e-10 {
		t.Fatalf("residual norm %e above tolerance", r.Norm)
	}
	// Each iteration costs n evaluations for the Jacobian and at least one for the step.
	if r.Evaluations < 1+3*r.Iterations {
		t.Fatalf("evaluations not all counted: %d for %d iterations", r.Evaluations, r.Iterations)
	}
}

func TestNewtonAlreadySolved(t *testing.T) {
	r, err := Newton(circle, []float64{math.Sqrt2, math.Sqrt2}, Settings{Tolerance: 1e-8})
	if err != nil {
		t.Fatal(err)
	}
	if !r.Converged() || r.Evaluations != 1 || r.Iterations != 0 {
		t.Fatalf("expected immediate convergence, got %s", r)
	}
}

func TestNewtonEmpty(t *testing.T) {
	calls := 0
	f := func(x []float64) ([]float64, error) {
		calls++
		return []float64{}, nil
	}
	r, err := Newton(f, nil, Settings{})
	if err != nil {
		t.Fatal(err)
	}
	if !r.Converged() || calls != 1 {
		t.Fatalf("empty system: %s (%d calls)", r, calls)
	}
}

func TestNewtonBudget(t *testing.T) {
	r, err := Newton(circle, []float64{1, 0.5}, Settings{MaxEvaluations: 3})
	if err != nil {
		t.Fatal(err)
	}
	if r.Status != MaxEvaluations {
		t.Fatalf("expected %s got %s", MaxEvaluations, r.Status)
	}
	if r.Evaluations != 3 {
		t.Fatalf("expected 3 evaluations got %d", r.Evaluations)
	}
}

func TestNewtonNoSolution(t *testing.T) {
	f := func(x []float64) ([]float64, error) {
		s := x[0] + x[1]
		return []float64{s, s - 1}, nil
	}
	r, err := Newton(f, []float64{3, 2}, Settings{MaxEvaluations: 200})
	if err != nil {
		t.Fatal(err)
	}
	if r.Converged() {
		t.Fatalf("system without a root reported convergence: %s", r)
	}
	if r.Norm < math.Sqrt(0.5)-1e-9 {
		t.Fatalf("norm %f below the minimum of the system", r.Norm)
	}
}

func TestNewtonErrors(t *testing.T) {
	boom := errors.New("propulsion singularity")
	calls := 0
	f := func(x []float64) ([]float64, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return circle(x)
	}
	if _, err := Newton(f, []float64{1, 0.5}, Settings{}); err != boom {
		t.Fatalf("model error not propagated unmodified: %v", err)
	}

	short := func(x []float64) ([]float64, error) {
		return []float64{x[0]}, nil
	}
	if _, err := Newton(short, []float64{1, 2}, Settings{}); !errors.Is(err, ErrDimension) {
		t.Fatalf("expected ErrDimension got %v", err)
	}

	nan := func(x []float64) ([]float64, error) {
		return []float64{math.NaN()}, nil
	}
	if r, err := Newton(nan, []float64{1}, Settings{}); err != nil || r.Status != NonFinite {
		t.Fatalf("expected %s got %s (%v)", NonFinite, r.Status, err)
	}
}

func TestNewtonDomain(t *testing.T) {
	errDomain := errors.New("outside the domain")
	reject := func(err error) bool { return errors.Is(err, errDomain) }
	// The full Newton step from 6 lands at -6, and the half step at 0.
	inverse := func(x []float64) ([]float64, error) {
		if x[0] <= 0 {
			return nil, errDomain
		}
		return []float64{1 - 2/x[0]}, nil
	}
	if _, err := Newton(inverse, []float64{6}, Settings{}); !errors.Is(err, errDomain) {
		t.Fatalf("expected the domain error without a reject func, got %v", err)
	}
	r, err := Newton(inverse, []float64{6}, Settings{Reject: reject})
	if err != nil {
		t.Fatal(err)
	}
	if !r.Converged() || !scalar.EqualWithinAbs(r.X[0], 2, 1e-7) {
		t.Fatalf("incorrect solution %s at %v", r, r.X)
	}

	// Starting on the boundary, the forward difference leaves the domain.
	root := func(x []float64) ([]float64, error) {
		if x[0] > 2 {
			return nil, errDomain
		}
		return []float64{math.Sqrt(2-x[0]) - 1}, nil
	}
	r, err = Newton(root, []float64{2}, Settings{Reject: reject, Tolerance: 1e-10})
	if err != nil {
		t.Fatal(err)
	}
	if !r.Converged() || !scalar.EqualWithinAbs(r.X[0], 1, 1e-8) {
		t.Fatalf("incorrect solution %s at %v", r, r.X)
	}

	// Other errors still end the solve.
	boom := errors.New("propulsion singularity")
	failing := func(x []float64) ([]float64, error) {
		if x[0] < 3 {
			return nil, boom
		}
		return inverse(x)
	}
	if _, err := Newton(failing, []float64{6}, Settings{Reject: reject}); err != boom {
		t.Fatalf("model error not propagated unmodified: %v", err)
	}
}

func TestStatusString(t *testing.T) {
	for _, s := range []Status{Converged, MaxEvaluations, Singular, Stalled, NonFinite} {
		if s.String() == "" {
			t.Fatalf("empty string for status %d", s)
		}
	}
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("unknown status did not panic")
		}
	}()
	_ = Status(0).String()
}
