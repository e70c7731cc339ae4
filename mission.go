package rcaide

import (
	"time"

	kitlog "github.com/go-kit/kit/log"
)

/* Handles the evaluation of a sequence of segments. */

// Mission is an ordered sequence of segments flown one after the other. Every segment
// starts from the last point of the previous one.
type Mission struct {
	Tag      string
	Segments *Container
	Process  *Process[*Mission]
	Epoch    time.Time // start of the mission, used to date exported results
	results  *StateContainer
	base     kitlog.Logger
	logger   kitlog.Logger
}

// NewMission returns an empty mission with the initialize and evaluate steps.
func NewMission(tag string) (*Mission, error) {
	segs, err := NewContainer(tag)
	if err != nil {
		return nil, err
	}
	m := &Mission{Tag: segs.Tag(), Segments: segs, Epoch: time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)}
	m.SetLogger(defaultLogger())
	m.Process = NewProcess[*Mission]().
		Set("initialize", initializeMission).
		Set("evaluate", EvaluateSegments)
	return m, nil
}

// SetLogger sets the logger of the mission and of every segment already appended.
func (m *Mission) SetLogger(l kitlog.Logger) {
	if l == nil {
		l = kitlog.NewNopLogger()
	}
	m.base = l
	m.logger = kitlog.With(l, "mission", m.Tag)
	if m.Segments != nil {
		for _, s := range m.Segments.Leaves() {
			s.Base().SetLogger(m.logger)
		}
	}
}

// AppendSegment adds a segment at the end of the mission and returns its final tag.
func (m *Mission) AppendSegment(s Segmenter) (string, error) {
	s.Base().SetLogger(m.logger)
	return m.Segments.Append(s)
}

// AppendGroup adds a group of segments at the end of the mission.
func (m *Mission) AppendGroup(c *Container) (string, error) {
	for _, s := range c.Leaves() {
		s.Base().SetLogger(m.logger)
	}
	return m.Segments.AppendContainer(c)
}

// Results returns the states of the segments evaluated so far.
func (m *Mission) Results() *StateContainer {
	return m.results
}

// Evaluate runs the mission process. On a segment failure the states of the segments
// solved before it are returned with a *SegmentError.
func (m *Mission) Evaluate() (*StateContainer, error) {
	m.results = NewStateContainer()
	start := time.Now()
	err := m.Process.Run(m)
	observeMission(err)
	if err != nil {
		m.logger.Log("level", "error", "subsys", "mission", "status", "aborted", "err", err)
		return m.results, err
	}
	m.logger.Log("level", "notice", "subsys", "mission", "status", "finished", "segments", m.results.Len(), "duration", time.Since(start))
	return m.results, nil
}

func initializeMission(m *Mission) error {
	if m.Segments.Len() == 0 {
		return missingf("mission `%s` has no segments", m.Tag)
	}
	return nil
}

// EvaluateSegments evaluates the segments in order, seeding the initials of each one with
// the last row of the conditions of the previous one.
func EvaluateSegments(m *Mission) error {
	var prev *Segment
	idx := 0
	return m.Segments.Walk(func(path string, s Segmenter) error {
		seg := s.Base()
		if prev != nil {
			seg.State.Initials = prev.State.Conditions.LastRow()
		}
		if err := seg.Evaluate(); err != nil {
			return &SegmentError{Mission: m.Tag, Segment: path, Index: idx, Err: err}
		}
		m.results.Append(path, seg.State.Copy())
		prev = seg
		idx++
		return nil
	})
}
