package rcaide

import (
	"fmt"

	kitlog "github.com/go-kit/kit/log"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/spectral"
)

// Status of the evaluation of a segment.
type Status uint8

const (
	// Constructed segments have not been evaluated.
	Constructed Status = iota + 1
	// Initialized segments have their state expanded and seeded.
	Initialized
	// Converging segments are in their solve, or stopped there on a model error.
	Converging
	// Converged segments solved their residuals within tolerance.
	Converged
	// Diverged segments exhausted their solver without converging.
	Diverged
	// PostProcessed segments are complete.
	PostProcessed
)

func (s Status) String() string {
	switch s {
	case Constructed:
		return "constructed"
	case Initialized:
		return "initialized"
	case Converging:
		return "converging"
	case Converged:
		return "converged"
	case Diverged:
		return "diverged"
	case PostProcessed:
		return "post-processed"
	}
	panic("cannot stringify unknown segment status")
}

// Names of the phases of the root process of a segment.
const (
	PhaseInitialize  = "initialize"
	PhaseConverge    = "converge"
	PhaseIterate     = "iterate"
	PhasePostProcess = "post_process"
)

// ControlVariable is an unknown the solver may adjust. The initial guess is broadcast to
// every control point when it holds a single value.
type ControlVariable struct {
	Active       bool
	InitialGuess []float64
}

// Guess returns the first value of the initial guess, or def when there is none.
func (c ControlVariable) Guess(def float64) float64 {
	if len(c.InitialGuess) == 0 {
		return def
	}
	return c.InitialGuess[0]
}

// Controls declares the unknowns of an aerodynamic segment.
type Controls struct {
	Throttle           ControlVariable
	BodyAngle          ControlVariable
	ElevatorDeflection ControlVariable
	Velocity           ControlVariable
	ElapsedTime        ControlVariable
	Altitude           ControlVariable
	FlightPathAngle    ControlVariable
	Acceleration       ControlVariable
}

// FlightDynamics declares which equations of motion are residuals.
type FlightDynamics struct {
	ForceX  bool
	ForceZ  bool
	MomentY bool
}

// Settings of a segment solve.
type Settings struct {
	MinDamping float64 // smallest Newton step fraction, 0 for the solver default
	Verbose    bool    // log every residual evaluation
}

// Segmenter is implemented by every segment kind. Concrete segments embed *Segment.
type Segmenter interface {
	Base() *Segment
}

// Segment is one leg of a mission solved as a boundary value problem over the control
// points of its State.
type Segment struct {
	tag                  string
	Settings             Settings
	State                *State
	Analyses             *Analyses
	Process              *Process[*Segment]
	Controls             Controls
	FlightDynamics       FlightDynamics
	TemperatureDeviation float64 // K
	TrueCourse           float64 // rad
	status               Status
	base, logger         kitlog.Logger
}

// NewSegment returns a segment with the four phases of the root process and the
// expansion, differentials and root convergence steps wired in.
func NewSegment(tag string) *Segment {
	s := &Segment{tag: tag, State: NewState(), Analyses: &Analyses{}, status: Constructed}
	s.State.Conditions = defaultConditions()
	s.SetLogger(defaultLogger())
	p := NewProcess[*Segment]()
	ini := p.Sub(PhaseInitialize)
	ini.Set("expand_state", ExpandState)
	ini.Set("differentials", DifferentialsDimensionless)
	p.Sub(PhaseConverge).Set("converge_root", ConvergeRoot)
	iter := p.Sub(PhaseIterate)
	iter.Sub("initials")
	iter.Sub("unknowns")
	iter.Sub("conditions")
	iter.Sub("residuals")
	p.Sub(PhasePostProcess)
	s.Process = p
	return s
}

// Base implements Segmenter.
func (s *Segment) Base() *Segment { return s }

// Tag returns the tag of this segment.
func (s *Segment) Tag() string { return s.tag }

// SetTag renames the segment. Containers call it to keep tags unique.
func (s *Segment) SetTag(tag string) {
	s.tag = tag
	s.logger = kitlog.With(s.base, "segment", tag)
}

// Status returns the evaluation status.
func (s *Segment) Status() Status { return s.status }

// Logger returns the logger of this segment.
func (s *Segment) Logger() kitlog.Logger { return s.logger }

// SetLogger sets the logger, every record being tagged with the segment.
func (s *Segment) SetLogger(l kitlog.Logger) {
	if l == nil {
		l = kitlog.NewNopLogger()
	}
	s.base = l
	s.logger = kitlog.With(l, "segment", s.tag)
}

// Phase returns one of the top level phases of the process.
func (s *Segment) Phase(name string) *Process[*Segment] {
	return s.Process.Sub(name)
}

// Evaluate initializes, solves and post-processes the segment.
func (s *Segment) Evaluate() error {
	if err := s.Phase(PhaseInitialize).Run(s); err != nil {
		return err
	}
	s.status = Initialized
	if err := s.Phase(PhaseConverge).Run(s); err != nil {
		return err
	}
	if err := s.Phase(PhasePostProcess).Run(s); err != nil {
		return err
	}
	s.status = PostProcessed
	s.logger.Log("level", "info", "subsys", "segment", "status", s.status, "evaluations", s.State.Numerics.Evaluations, "|R|", s.State.Numerics.ResidualNorm)
	return nil
}

// ExpandState sizes the whole state for the number of control points.
func ExpandState(s *Segment) error {
	n := s.State.Numerics.NumberOfControlPoints
	if n <= 0 {
		return invalidf("segment `%s` has %d control points", s.tag, n)
	}
	return s.State.ExpandRows(n, false)
}

// DifferentialsDimensionless attaches the operators on [0, 1] to the numerics.
func DifferentialsDimensionless(s *Segment) error {
	num := &s.State.Numerics
	ops, err := spectral.Cached(num.Discretization, num.NumberOfControlPoints)
	if err != nil {
		return fmt.Errorf("segment `%s`: %w", s.tag, err)
	}
	num.Dimensionless = ops
	return nil
}
