package rcaide

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestArrayExpansion(t *testing.T) {
	c := NewConditions()
	c.Set("pending", Expanded(3, 0))
	c.Set("short", ExpandedValue(1, 1, 2.5))
	c.Set("single", Vector(1, 2))
	c.Set("fixed", NewFixed(1, 1, []float64{7}))
	c.Set("full", Column([]float64{1, 2, 3}))
	if err := c.ExpandRows(4, false); err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		key        string
		rows, cols int
	}{
		{"pending", 4, 3},
		{"short", 3, 1},
		{"single", 4, 2},
		{"fixed", 1, 1},
		{"full", 3, 1},
	} {
		a := c.Array(tc.key)
		if r, cols := a.Dims(); r != tc.rows || cols != tc.cols {
			t.Fatalf("%s: got %dx%d exp %dx%d", tc.key, r, cols, tc.rows, tc.cols)
		}
	}
	if v := c.Array("short").Col(0); !floats.Equal(v, []float64{2.5, 2.5, 2.5}) {
		t.Fatalf("expanded value not broadcast: %v", v)
	}
	if v := c.Array("single").Col(1); !floats.Equal(v, []float64{2, 2, 2, 2}) {
		t.Fatalf("single row not broadcast: %v", v)
	}
	if c.Size() != 4 {
		t.Fatalf("size got %d exp 4", c.Size())
	}
	// Resolved arrays keep their adjustment when overridden.
	if err := c.ExpandRows(5, true); err != nil {
		t.Fatal(err)
	}
	if r, _ := c.Array("short").Dims(); r != 4 {
		t.Fatalf("short array expanded to %d rows", r)
	}
	if v := c.Array("full").Col(0); !floats.Equal(v, []float64{1, 2, 3, 1, 2}) {
		t.Fatalf("override is not a cyclic repeat: %v", v)
	}
	if r, _ := c.Array("fixed").Dims(); r != 1 {
		t.Fatal("fixed array expanded")
	}
	if err := c.ExpandRows(0, false); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected an invalid argument, got %v", err)
	}
}

func TestPendingAccess(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("reading a pending array should panic")
		}
	}()
	Expanded(1, 0).At(0, 0)
}

func TestPackUnpack(t *testing.T) {
	c := NewConditions()
	c.DeepSet("b.vec", NewArrayFrom(2, 2, []float64{1, 2, 3, 4}))
	c.DeepSet("a", Column([]float64{5, 6}))
	c.DeepSet("b.scalar", Scalar(7))
	if keys := c.Keys(); keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("insertion order lost: %v", keys)
	}
	// Column by column, in insertion order.
	exp := []float64{1, 3, 2, 4, 7, 5, 6}
	if p := c.Pack(); !floats.Equal(p, exp) {
		t.Fatalf("pack got %v exp %v", p, exp)
	}
	if c.PackLen() != len(exp) {
		t.Fatalf("pack length %d", c.PackLen())
	}
	x := []float64{10, 30, 20, 40, 70, 50, 60}
	if err := c.Unpack(x); err != nil {
		t.Fatal(err)
	}
	if v := c.Array("b.vec").Row(1); !floats.Equal(v, []float64{30, 40}) {
		t.Fatalf("unpacked row got %v", v)
	}
	if !floats.Equal(c.Pack(), x) {
		t.Fatal("pack is not the inverse of unpack")
	}
	if err := c.Unpack(x[1:]); !errors.Is(err, ErrDimension) {
		t.Fatalf("expected a dimension error, got %v", err)
	}
}

func TestConditionsTree(t *testing.T) {
	c := NewConditions()
	c.DeepSet("frames.inertial.time", Column([]float64{0, 1, 2}))
	c.DeepSet("frames.body.pitch", Expanded(1, 0))
	if _, err := c.DeepGet("frames.wind.lift"); !errors.Is(err, ErrMissingAttribute) {
		t.Fatalf("expected a missing attribute, got %v", err)
	}
	if _, err := c.DeepGet("frames.inertial.time.x"); !errors.Is(err, ErrMissingAttribute) {
		t.Fatalf("expected a missing attribute below a leaf, got %v", err)
	}
	last := c.LastRow()
	if v := last.Array("frames.inertial.time").Raw(); !floats.Equal(v, []float64{2}) {
		t.Fatalf("last row got %v", v)
	}
	if _, ok := last.Lookup("frames.body.pitch"); ok {
		t.Fatal("pending leaf kept in the last row")
	}

	other := NewConditions()
	other.DeepSet("frames.inertial.time", Scalar(9))
	other.DeepSet("frames.wind.lift", Scalar(1))
	c.Update(other)
	if c.Array("frames.inertial.time").Len() != 1 || !c.Sub("frames").Has("wind") || !c.Sub("frames").Has("body") {
		t.Fatalf("incorrect merge:\n%s", c)
	}
	other.Array("frames.wind.lift").Set(0, 0, 2)
	if c.Array("frames.wind.lift").At(0, 0) != 1 {
		t.Fatal("update shares the leaves of the other tree")
	}

	cp := c.Copy()
	cp.Array("frames.inertial.time").Set(0, 0, -1)
	if c.Array("frames.inertial.time").At(0, 0) != 9 {
		t.Fatal("copy shares the leaves")
	}
	if leaves := c.Leaves(); len(leaves) != 3 || leaves[0] != "frames.inertial.time" {
		t.Fatalf("leaves got %v", leaves)
	}
}

func TestConditionsPanics(t *testing.T) {
	for name, fn := range map[string]func(){
		"dotted key":   func() { NewConditions().Set("a.b", Scalar(1)) },
		"bad leaf":     func() { NewConditions().Set("a", 1.0) },
		"missing path": func() { NewConditions().Array("nope") },
		"leaf as node": func() {
			c := NewConditions()
			c.Set("a", Scalar(1))
			c.Sub("a.b")
		},
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("%s: expected a panic", name)
				}
			}()
			fn()
		}()
	}
}

func TestStateContainer(t *testing.T) {
	sc := NewStateContainer()
	for i, tag := range []string{"climb", "cruise"} {
		s := NewState()
		s.Conditions.Set("x", Column([]float64{float64(i), float64(i) + 0.5}))
		s.Conditions.Set("only_first", Scalar(1))
		if i == 1 {
			s.Conditions.Delete("only_first")
		}
		s.Numerics.Converged = true
		s.Numerics.Evaluations = 3
		sc.Append(tag, s)
	}
	if sc.Len() != 2 || sc.Tags()[1] != "cruise" {
		t.Fatalf("unexpected container %v", sc.Tags())
	}
	m := sc.Merged()
	if v := m.Conditions.Array("x").Col(0); !floats.Equal(v, []float64{0, 0.5, 1, 1.5}) {
		t.Fatalf("merged history got %v", v)
	}
	if m.Conditions.Has("only_first") {
		t.Fatal("leaf missing from a segment was merged")
	}
	if m.Numerics.Evaluations != 6 || !m.Numerics.Converged {
		t.Fatalf("merged numerics %+v", m.Numerics)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("storing a segment twice should panic")
		}
	}()
	sc.Append("climb", NewState())
}
