package rcaide

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/vmihailenco/msgpack/v5"
)

// ExportConfig configures the exporting of mission results.
type ExportConfig struct {
	Filename     string
	AsCSV        bool
	Archive      bool
	Timestamp    bool
	CSVAppend    func(st *State, row int) []string // Custom columns
	CSVAppendHdr func() []string                   // Header for the custom columns
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV && !c.Archive
}

// csvColumns are the condition paths exported after the time columns.
var csvColumns = []struct {
	name, path string
	col        int
	scale      float64
}{
	{"range_m", PathRange, 0, 1},
	{"altitude_m", PathAltitude, 0, 1},
	{"speed_mps", PathSpeed, 0, 1},
	{"mach", PathMach, 0, 1},
	{"throttle", PathThrottle, 0, 1},
	{"mass_kg", PathMass, 0, 1},
	{"CL", PathCL, 0, 1},
	{"CD", PathCD, 0, 1},
	{"alpha_deg", PathAlpha, 0, 180 / math.Pi},
	{"pitch_deg", PathBodyRotations, 1, 180 / math.Pi},
	{"power_W", PathPower, 0, 1},
}

// conditionAt returns the value of column j of the array at path on row i, or NaN when
// the segment does not define it.
func conditionAt(c *Conditions, path string, i, j int) float64 {
	a, ok := c.Lookup(path)
	if !ok || a.Pending() {
		return math.NaN()
	}
	if r, cols := a.Dims(); i >= r || j >= cols {
		return math.NaN()
	}
	return a.At(i, j)
}

// WriteCSV writes one record per control point of every segment. Time is also written as
// a Julian date counted from epoch.
func WriteCSV(w io.Writer, results *StateContainer, epoch time.Time, conf ExportConfig) error {
	cw := csv.NewWriter(w)
	hdr := []string{"segment", "time_s", "jd"}
	for _, c := range csvColumns {
		hdr = append(hdr, c.name)
	}
	if conf.CSVAppendHdr != nil {
		hdr = append(hdr, conf.CSVAppendHdr()...)
	}
	if err := cw.Write(hdr); err != nil {
		return err
	}
	for _, tag := range results.Tags() {
		st, _ := results.Get(tag)
		rows := st.Conditions.Size()
		for i := 0; i < rows; i++ {
			t := conditionAt(st.Conditions, PathTime, i, 0)
			jd := math.NaN()
			if !math.IsNaN(t) {
				jd = julian.TimeToJD(epoch.Add(time.Duration(t * float64(time.Second))))
			}
			record := []string{tag, format(t), strconv.FormatFloat(jd, 'f', 8, 64)}
			for _, c := range csvColumns {
				record = append(record, format(c.scale*conditionAt(st.Conditions, c.path, i, c.col)))
			}
			if conf.CSVAppend != nil {
				record = append(record, conf.CSVAppend(st, i)...)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

type archivedLeaf struct {
	Path string    `msgpack:"path"`
	Rows int       `msgpack:"rows"`
	Cols int       `msgpack:"cols"`
	Data []float64 `msgpack:"data"`
}

type archivedSegment struct {
	Tag           string         `msgpack:"tag"`
	ControlPoints int            `msgpack:"control_points"`
	Converged     bool           `msgpack:"converged"`
	Evaluations   int            `msgpack:"evaluations"`
	Iterations    int            `msgpack:"iterations"`
	ResidualNorm  float64        `msgpack:"residual_norm"`
	Unknowns      []archivedLeaf `msgpack:"unknowns"`
	Conditions    []archivedLeaf `msgpack:"conditions"`
	Residuals     []archivedLeaf `msgpack:"residuals"`
}

// Archive is the persisted form of the results of a mission.
type Archive struct {
	Mission  string            `msgpack:"mission"`
	Epoch    time.Time         `msgpack:"epoch"`
	Created  time.Time         `msgpack:"created"`
	Segments []archivedSegment `msgpack:"segments"`
}

func archiveLeaves(c *Conditions) []archivedLeaf {
	var out []archivedLeaf
	c.Walk(func(path string, a *Array) error {
		if a.Pending() {
			return nil
		}
		r, cols := a.Dims()
		data := make([]float64, len(a.data))
		copy(data, a.data)
		out = append(out, archivedLeaf{path, r, cols, data})
		return nil
	})
	return out
}

func restoreLeaves(leaves []archivedLeaf, size int) (*Conditions, error) {
	c := NewConditions()
	for _, l := range leaves {
		if l.Cols <= 0 || l.Rows < 0 || len(l.Data) != l.Rows*l.Cols {
			return nil, fmt.Errorf("corrupted archive leaf `%s`: %d values for %dx%d", l.Path, len(l.Data), l.Rows, l.Cols)
		}
		c.DeepSet(l.Path, NewArrayFrom(l.Rows, l.Cols, l.Data))
	}
	c.setSize(size)
	return c, nil
}

func (c *Conditions) setSize(n int) {
	c.size = n
	for _, key := range c.m.Keys() {
		if v, _ := c.m.Get(key); v != nil {
			if sub, ok := v.(*Conditions); ok {
				sub.setSize(n)
			}
		}
	}
}

// SaveResults writes the results as msgpack in a zstd stream.
func SaveResults(w io.Writer, mission string, epoch time.Time, results *StateContainer) error {
	a := Archive{Mission: mission, Epoch: epoch.UTC(), Created: time.Now().UTC()}
	for _, tag := range results.Tags() {
		st, _ := results.Get(tag)
		num := st.Numerics
		a.Segments = append(a.Segments, archivedSegment{
			Tag:           tag,
			ControlPoints: num.NumberOfControlPoints,
			Converged:     num.Converged,
			Evaluations:   num.Evaluations,
			Iterations:    num.Iterations,
			ResidualNorm:  num.ResidualNorm,
			Unknowns:      archiveLeaves(st.Unknowns),
			Conditions:    archiveLeaves(st.Conditions),
			Residuals:     archiveLeaves(st.Residuals),
		})
	}
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer zw.Close()
	if err := msgpack.NewEncoder(zw).Encode(a); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return zw.Close()
}

// LoadResults reads results written by SaveResults.
func LoadResults(r io.Reader) (*Archive, *StateContainer, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer zr.Close()
	var a Archive
	if err := msgpack.NewDecoder(zr).Decode(&a); err != nil {
		return nil, nil, fmt.Errorf("failed to decode results: %w", err)
	}
	sc := NewStateContainer()
	for _, seg := range a.Segments {
		st := &State{Numerics: Numerics{
			NumberOfControlPoints: seg.ControlPoints,
			Converged:             seg.Converged,
			Evaluations:           seg.Evaluations,
			Iterations:            seg.Iterations,
			ResidualNorm:          seg.ResidualNorm,
		}}
		if st.Unknowns, err = restoreLeaves(seg.Unknowns, seg.ControlPoints); err != nil {
			return nil, nil, err
		}
		if st.Conditions, err = restoreLeaves(seg.Conditions, seg.ControlPoints); err != nil {
			return nil, nil, err
		}
		if st.Residuals, err = restoreLeaves(seg.Residuals, seg.ControlPoints); err != nil {
			return nil, nil, err
		}
		sc.Append(seg.Tag, st)
	}
	return &a, sc, nil
}

// Export writes the results of m into the configured output directory.
func Export(conf ExportConfig, m *Mission) error {
	if conf.IsUseless() || m.results == nil {
		return nil
	}
	name := conf.Filename
	if name == "" {
		name = m.Tag
	}
	if conf.Timestamp {
		t := time.Now()
		name = fmt.Sprintf("%s-%d-%02d-%02dT%02d.%02d.%02d", name, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
	dir := OutputDir()
	if conf.AsCSV {
		f, err := os.Create(filepath.Join(dir, "mission-"+name+".csv"))
		if err != nil {
			return err
		}
		if err := WriteCSV(f, m.results, m.Epoch, conf); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		m.logger.Log("level", "info", "subsys", "export", "file", f.Name())
	}
	if conf.Archive {
		f, err := os.Create(filepath.Join(dir, "mission-"+name+".msgpack.zst"))
		if err != nil {
			return err
		}
		if err := SaveResults(f, m.Tag, m.Epoch, m.results); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		m.logger.Log("level", "info", "subsys", "export", "file", f.Name())
	}
	return nil
}
