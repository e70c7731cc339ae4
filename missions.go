package rcaide

import (
	"context"
	"errors"
	"runtime"

	"github.com/iancoleman/orderedmap"
	"golang.org/x/sync/errgroup"
)

// Missions is an ordered collection of independent missions.
type Missions struct {
	items *orderedmap.OrderedMap
}

// NewMissions returns an empty collection.
func NewMissions() *Missions {
	return &Missions{orderedmap.New()}
}

// AppendMission adds m, renaming it when its tag is already used, and returns its tag.
func (ms *Missions) AppendMission(m *Mission) (string, error) {
	clean, err := tagCache.Sanitize(m.Tag)
	if err != nil {
		return "", err
	}
	tag := uniqueTag(clean, func(t string) bool {
		_, ok := ms.items.Get(t)
		return ok
	})
	m.Tag = tag
	m.Segments.tag = tag
	m.SetLogger(m.base)
	ms.items.Set(tag, m)
	return tag, nil
}

// Get returns the mission stored under tag.
func (ms *Missions) Get(tag string) (*Mission, bool) {
	v, ok := ms.items.Get(tag)
	if !ok {
		return nil, false
	}
	return v.(*Mission), true
}

// Keys returns the mission tags in order.
func (ms *Missions) Keys() []string {
	keys := ms.items.Keys()
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Len returns the number of missions.
func (ms *Missions) Len() int {
	return len(ms.items.Keys())
}

// EvaluateOptions controls a batch evaluation.
type EvaluateOptions struct {
	Concurrency     int  // maximum missions in flight, 0 for GOMAXPROCS
	ContinueOnError bool // evaluate every mission even when one fails
}

// MissionResult is the outcome of one mission of a batch.
type MissionResult struct {
	Tag     string
	Results *StateContainer
	Err     error
}

// Evaluate evaluates every mission concurrently. The results are in mission order.
// Without ContinueOnError the first failure stops the missions not yet started and is
// returned. With it every mission runs and the failures are joined in the returned error.
// A mission already solving is never interrupted.
func (ms *Missions) Evaluate(ctx context.Context, opts EvaluateOptions) ([]MissionResult, error) {
	tags := ms.Keys()
	out := make([]MissionResult, len(tags))
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, tag := range tags {
		m, _ := ms.Get(tag)
		out[i].Tag = tag
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			out[i].Results, out[i].Err = m.Evaluate()
			if out[i].Err != nil && !opts.ContinueOnError {
				return out[i].Err
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return out, err
	}
	var errs []error
	for _, r := range out {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return out, errors.Join(errs...)
}
