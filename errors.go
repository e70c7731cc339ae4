package rcaide

import (
	"errors"
	"fmt"

	"github.com/leadsgroup/RCAIDE-UIUC-sub000/solve"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/spectral"
)

var (
	// ErrInvalidArgument flags a construction input that cannot be used (bad control
	// point count, unknown segment kind, negative duration...).
	ErrInvalidArgument = spectral.ErrInvalidArgument
	// ErrMissingAttribute flags a segment parameter left unset.
	ErrMissingAttribute = errors.New("missing attribute")
	// ErrInvalidTag flags a tag which sanitizes to nothing.
	ErrInvalidTag = errors.New("invalid tag")
	// ErrConvergence flags a segment whose residuals did not reach the tolerance.
	ErrConvergence = errors.New("segment did not converge")
	// ErrDimension flags a non square system.
	ErrDimension = solve.ErrDimension
)

// ConvergenceError is returned by ConvergeRoot when the solver gives up, or when the
// root it found is not a flyable segment. Reason is only set in the latter case.
type ConvergenceError struct {
	Segment     string
	Status      solve.Status
	Norm        float64
	Tolerance   float64
	Evaluations int
	Reason      string
}

func (e *ConvergenceError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("segment `%s` converged to an invalid solution: %s after %d evaluations", e.Segment, e.Reason, e.Evaluations)
	}
	return fmt.Sprintf("segment `%s` did not converge: %s with |R|=%.3e > %.1e after %d evaluations", e.Segment, e.Status, e.Norm, e.Tolerance, e.Evaluations)
}

// Unwrap allows errors.Is(err, ErrConvergence).
func (e *ConvergenceError) Unwrap() error {
	return ErrConvergence
}

// DimensionError is returned when the unknown and residual vectors differ in length.
type DimensionError struct {
	Segment   string
	Unknowns  int
	Residuals int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("segment `%s` declares %d unknowns but %d residuals", e.Segment, e.Unknowns, e.Residuals)
}

// Unwrap allows errors.Is(err, ErrDimension).
func (e *DimensionError) Unwrap() error {
	return ErrDimension
}

// SegmentError names the segment which aborted a mission.
type SegmentError struct {
	Mission string
	Segment string
	Index   int
	Err     error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("mission `%s`: segment #%d `%s`: %s", e.Mission, e.Index, e.Segment, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

// missingf returns an ErrMissingAttribute error.
func missingf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMissingAttribute, fmt.Sprintf(format, args...))
}

// invalidf returns an ErrInvalidArgument error.
func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
