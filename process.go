package rcaide

import (
	"fmt"

	"github.com/iancoleman/orderedmap"
)

// Step is one named operation of a Process. Steps communicate only by mutating their
// argument.
type Step[T any] func(T) error

// Skip is the step which does nothing. Replacing a step by Skip disables it while
// keeping its name and position in the process.
func Skip[T any](T) error { return nil }

type processEntry[T any] struct {
	step Step[T]
	sub  *Process[T]
	skip bool
}

// Process is an ordered pipeline of named steps and nested processes. Running a process
// runs every entry in insertion order with the same argument.
type Process[T any] struct {
	entries *orderedmap.OrderedMap
}

// NewProcess returns an empty process.
func NewProcess[T any]() *Process[T] {
	return &Process[T]{orderedmap.New()}
}

// Set stores step under name. An existing name keeps its position. A nil step is a no-op.
func (p *Process[T]) Set(name string, step Step[T]) *Process[T] {
	p.entries.Set(name, &processEntry[T]{step: step})
	return p
}

// SetProcess stores a nested process under name.
func (p *Process[T]) SetProcess(name string, sub *Process[T]) *Process[T] {
	p.entries.Set(name, &processEntry[T]{sub: sub})
	return p
}

// Sub returns the nested process stored under name, creating it when missing.
func (p *Process[T]) Sub(name string) *Process[T] {
	if e, ok := p.entry(name); ok {
		if e.sub == nil {
			panic(fmt.Errorf("process entry `%s` is a step, not a process", name))
		}
		return e.sub
	}
	sub := NewProcess[T]()
	p.SetProcess(name, sub)
	return sub
}

// Skip replaces the entry under name by the no-op step. The key must exist.
func (p *Process[T]) Skip(name string) *Process[T] {
	if !p.Has(name) {
		panic(fmt.Errorf("cannot skip unknown process entry `%s`", name))
	}
	p.entries.Set(name, &processEntry[T]{step: Skip[T], skip: true})
	return p
}

// IsSkipped returns whether the entry under name was replaced by the no-op step.
func (p *Process[T]) IsSkipped(name string) bool {
	e, ok := p.entry(name)
	return ok && e.skip
}

// Has returns whether name is an entry of this process.
func (p *Process[T]) Has(name string) bool {
	_, ok := p.entries.Get(name)
	return ok
}

// Keys returns the entry names in execution order.
func (p *Process[T]) Keys() []string {
	keys := p.entries.Keys()
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Remove deletes the entry under name.
func (p *Process[T]) Remove(name string) {
	p.entries.Delete(name)
}

// Clone returns a copy of the process tree. Steps are shared.
func (p *Process[T]) Clone() *Process[T] {
	c := NewProcess[T]()
	for _, name := range p.entries.Keys() {
		e, _ := p.entry(name)
		cp := *e
		if e.sub != nil {
			cp.sub = e.sub.Clone()
		}
		c.entries.Set(name, &cp)
	}
	return c
}

// Run runs every entry in order and stops on the first error, which is returned as is.
func (p *Process[T]) Run(arg T) error {
	for _, name := range p.entries.Keys() {
		e, _ := p.entry(name)
		switch {
		case e.sub != nil:
			if err := e.sub.Run(arg); err != nil {
				return err
			}
		case e.step != nil:
			if err := e.step(arg); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Process[T]) entry(name string) (*processEntry[T], bool) {
	v, ok := p.entries.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*processEntry[T]), true
}
