package rcaide

import (
	"errors"
	"fmt"

	"github.com/goforj/godump"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/solve"
	"gonum.org/v1/gonum/floats"
)

// ConvergeRoot drives the residuals of the segment to zero by adjusting its unknowns.
// Each residual evaluation unpacks the candidate unknowns, runs the iterate phase and
// packs the residuals. The unknown and residual vectors must have the same length.
func ConvergeRoot(s *Segment) error {
	s.status = Converging
	num := &s.State.Numerics
	iterate := s.Phase(PhaseIterate)

	x0 := s.State.Unknowns.Pack()
	if err := iterate.Run(s); err != nil {
		return err
	}
	if r := s.State.Residuals.PackLen(); r != len(x0) {
		return &DimensionError{Segment: s.tag, Unknowns: len(x0), Residuals: r}
	}
	if len(x0) == 0 {
		// Fully prescribed segment: one pass of the iterate phase is the solution.
		num.Converged = true
		num.Evaluations = 1
		num.Iterations = 0
		num.ResidualNorm = 0
		s.status = Converged
		observeSolve(s.status, 1)
		return nil
	}

	f := func(x []float64) ([]float64, error) {
		if err := s.State.Unknowns.Unpack(x); err != nil {
			return nil, err
		}
		if err := iterate.Run(s); err != nil {
			return nil, err
		}
		r := s.State.Residuals.Pack()
		if s.Settings.Verbose {
			s.logger.Log("level", "debug", "subsys", "solver", "|R|", norm2(r))
		}
		return r, nil
	}
	res, err := solve.Newton(f, x0, solve.Settings{
		Tolerance:      num.ToleranceSolution,
		MaxEvaluations: num.MaxEvaluations,
		Step:           num.FiniteDifferenceStep,
		MinDamping:     s.Settings.MinDamping,
		// Unknowns out of the range of a segment shorten the Newton step.
		Reject: func(err error) bool { return errors.Is(err, ErrInvalidArgument) },
	})
	num.Evaluations = res.Evaluations + 1
	num.Iterations = res.Iterations
	if err != nil {
		// External model errors leave the segment converging.
		return err
	}
	// The last evaluation may have been a Jacobian column: bring the state back to the best point.
	if err := s.State.Unknowns.Unpack(res.X); err != nil {
		return err
	}
	if err := iterate.Run(s); err != nil {
		return err
	}
	num.Evaluations++
	num.ResidualNorm = res.Norm

	if !res.Converged() {
		num.Converged = false
		s.status = Diverged
		observeSolve(s.status, num.Evaluations)
		s.logger.Log("level", "error", "subsys", "solver", "status", res.Status, "|R|", res.Norm, "evaluations", num.Evaluations,
			"residuals", godump.DumpStr(residualNorms(s.State.Residuals)))
		return &ConvergenceError{Segment: s.tag, Status: res.Status, Norm: res.Norm, Tolerance: solveTolerance(num), Evaluations: num.Evaluations}
	}
	if reason := invalidRoot(s); reason != "" {
		num.Converged = false
		s.status = Diverged
		observeSolve(s.status, num.Evaluations)
		s.logger.Log("level", "error", "subsys", "solver", "status", res.Status, "reason", reason, "evaluations", num.Evaluations)
		return &ConvergenceError{Segment: s.tag, Status: res.Status, Norm: res.Norm, Tolerance: solveTolerance(num), Evaluations: num.Evaluations, Reason: reason}
	}
	num.Converged = true
	s.status = Converged
	observeSolve(s.status, num.Evaluations)
	s.logger.Log("level", "debug", "subsys", "solver", "status", res.Status, "iterations", res.Iterations, "|R|", res.Norm)
	return nil
}

// invalidRoot describes why a root of the residuals cannot be flown, if it cannot.
// Time must increase over the segment.
func invalidRoot(s *Segment) string {
	t, ok := s.State.Conditions.Lookup(PathTime)
	if !ok || t.Pending() {
		return ""
	}
	if rows, _ := t.Dims(); rows < 2 {
		return ""
	}
	if d := t.Last(0) - t.First(0); !(d > 0) {
		return fmt.Sprintf("non positive duration of %.3g s", d)
	}
	return ""
}

func solveTolerance(num *Numerics) float64 {
	if num.ToleranceSolution <= 0 {
		return solve.DefaultTolerance
	}
	return num.ToleranceSolution
}

// residualNorms returns the 2-norm of every residual leaf.
func residualNorms(r *Conditions) map[string]float64 {
	out := make(map[string]float64)
	r.Walk(func(path string, a *Array) error {
		if !a.Pending() {
			out[path] = norm2(a.data)
		}
		return nil
	})
	return out
}

func norm2(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, 2)
}
