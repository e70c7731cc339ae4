package rcaide

import (
	"fmt"

	"github.com/iancoleman/orderedmap"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/spectral"
)

// Numerics stores the discretization of a segment and the bookkeeping of its solve.
type Numerics struct {
	NumberOfControlPoints int
	Discretization        spectral.Kind
	ToleranceSolution     float64
	MaxEvaluations        int // 0 selects the solver default
	FiniteDifferenceStep  float64
	// Solve outcome.
	Converged    bool
	Evaluations  int
	Iterations   int
	ResidualNorm float64
	// Dimensionless holds the operators on [0, 1]; Time is set by the segments which
	// know their duration.
	Dimensionless *spectral.Operators
	Time          *spectral.Operators
}

// NewNumerics returns the numerics configured by the library defaults.
func NewNumerics() Numerics {
	conf := rcaideConfig()
	return Numerics{
		NumberOfControlPoints: conf.ControlPoints,
		Discretization:        conf.Discretization,
		ToleranceSolution:     conf.Tolerance,
		MaxEvaluations:        conf.MaxEvaluations,
	}
}

// State is the whole numerical state of a segment.
type State struct {
	Initials   *Conditions // last row of the previous segment, nil for the first one
	Numerics   Numerics
	Unknowns   *Conditions
	Conditions *Conditions
	Residuals  *Conditions
}

// NewState returns an empty state with default numerics.
func NewState() *State {
	return &State{
		Numerics:   NewNumerics(),
		Unknowns:   NewConditions(),
		Conditions: NewConditions(),
		Residuals:  NewConditions(),
	}
}

// ExpandRows expands the unknowns, the conditions and the residuals to n rows.
func (s *State) ExpandRows(n int, override bool) error {
	for _, c := range []*Conditions{s.Unknowns, s.Conditions, s.Residuals} {
		if err := c.ExpandRows(n, override); err != nil {
			return err
		}
	}
	return nil
}

// Copy returns a deep copy of this state. The operators are shared as they are never
// modified once built.
func (s *State) Copy() *State {
	c := &State{
		Numerics:   s.Numerics,
		Unknowns:   s.Unknowns.Copy(),
		Conditions: s.Conditions.Copy(),
		Residuals:  s.Residuals.Copy(),
	}
	if s.Initials != nil {
		c.Initials = s.Initials.Copy()
	}
	return c
}

// StateContainer stores the final states of the segments of a mission, in mission order.
type StateContainer struct {
	states *orderedmap.OrderedMap
}

// NewStateContainer returns an empty container.
func NewStateContainer() *StateContainer {
	return &StateContainer{orderedmap.New()}
}

// Append stores the state of segment `tag`.
func (sc *StateContainer) Append(tag string, s *State) {
	if _, exists := sc.states.Get(tag); exists {
		panic(fmt.Errorf("state of segment `%s` already stored", tag))
	}
	sc.states.Set(tag, s)
}

// Get returns the state of segment `tag`.
func (sc *StateContainer) Get(tag string) (*State, bool) {
	v, ok := sc.states.Get(tag)
	if !ok {
		return nil, false
	}
	return v.(*State), true
}

// Tags returns the segment tags in mission order.
func (sc *StateContainer) Tags() []string {
	keys := sc.states.Keys()
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Len returns the number of stored segments.
func (sc *StateContainer) Len() int {
	return len(sc.states.Keys())
}

// Last returns the state of the last segment.
func (sc *StateContainer) Last() *State {
	keys := sc.states.Keys()
	if len(keys) == 0 {
		return nil
	}
	s, _ := sc.Get(keys[len(keys)-1])
	return s
}

// Merged stacks the segments into a single time history. Only the leaves present in
// every segment with the same column count are kept.
func (sc *StateContainer) Merged() *State {
	merged := &State{
		Unknowns:   NewConditions(),
		Conditions: NewConditions(),
		Residuals:  NewConditions(),
	}
	tags := sc.Tags()
	if len(tags) == 0 {
		return merged
	}
	states := make([]*State, len(tags))
	for i, tag := range tags {
		states[i], _ = sc.Get(tag)
	}
	merged.Numerics = states[0].Numerics
	merged.Numerics.Converged = true
	merged.Numerics.Evaluations = 0
	merged.Numerics.Iterations = 0
	for _, s := range states {
		merged.Numerics.Converged = merged.Numerics.Converged && s.Numerics.Converged
		merged.Numerics.Evaluations += s.Numerics.Evaluations
		merged.Numerics.Iterations += s.Numerics.Iterations
	}
	stack(states, func(s *State) *Conditions { return s.Unknowns }, merged.Unknowns)
	stack(states, func(s *State) *Conditions { return s.Conditions }, merged.Conditions)
	stack(states, func(s *State) *Conditions { return s.Residuals }, merged.Residuals)
	return merged
}

func stack(states []*State, pick func(*State) *Conditions, dst *Conditions) {
	first := pick(states[0])
	total := 0
	first.Walk(func(path string, a *Array) error {
		if a.Pending() {
			return nil
		}
		cols := a.cols
		rows := 0
		leaves := make([]*Array, 0, len(states))
		for _, s := range states {
			other, ok := pick(s).Lookup(path)
			if !ok || other.Pending() || other.cols != cols {
				return nil
			}
			rows += other.rows
			leaves = append(leaves, other)
		}
		data := make([]float64, 0, rows*cols)
		for _, leaf := range leaves {
			data = append(data, leaf.data...)
		}
		dst.DeepSet(path, NewArrayFrom(rows, cols, data))
		if rows > total {
			total = rows
		}
		return nil
	})
	dst.size = total
}
