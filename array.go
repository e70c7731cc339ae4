package rcaide

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Unset marks a segment parameter which must be provided before evaluation.
var Unset = math.NaN()

// IsUnset returns whether v was left Unset.
func IsUnset(v float64) bool {
	return math.IsNaN(v)
}

// Array is a leaf of a Conditions tree: a row-major 2-D array with one row per control
// point and one column per component (e.g. three for an inertial vector).
//
// An Array is either resolved, holding data, or pending: a placeholder which only knows
// its column count and how many rows fewer than the control point count it will hold.
// Pending arrays are resolved by Conditions.ExpandRows, exactly once. Fixed arrays are
// never resized by an expansion.
type Array struct {
	rows, cols int
	adjust     int
	fill       float64
	pending    bool
	fixed      bool
	data       []float64
}

// NewArray returns a zero array of the given shape.
func NewArray(rows, cols int) *Array {
	if rows < 0 || cols <= 0 {
		panic(fmt.Errorf("invalid array shape %dx%d", rows, cols))
	}
	return &Array{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// NewArrayFrom returns an array of the given shape backed by a copy of the row-major data.
func NewArrayFrom(rows, cols int, data []float64) *Array {
	a := NewArray(rows, cols)
	if len(data) != rows*cols {
		panic(fmt.Errorf("%d values for a %dx%d array", len(data), rows, cols))
	}
	copy(a.data, data)
	return a
}

// Scalar returns a single row, single column array holding v.
func Scalar(v float64) *Array {
	return NewArrayFrom(1, 1, []float64{v})
}

// Vector returns a single row array holding the values, one per column.
func Vector(values ...float64) *Array {
	return NewArrayFrom(1, len(values), values)
}

// Column returns a single column array holding the values, one per row.
func Column(values []float64) *Array {
	return NewArrayFrom(len(values), 1, values)
}

// NewFixed returns a fixed size array which expansion never resizes.
func NewFixed(rows, cols int, data []float64) *Array {
	a := NewArrayFrom(rows, cols, data)
	a.fixed = true
	return a
}

// Expanded returns a pending zero array with `cols` columns. It resolves to N-adjust rows.
func Expanded(cols, adjust int) *Array {
	return ExpandedValue(cols, adjust, 0)
}

// ExpandedValue returns a pending array which resolves with every entry set to v.
func ExpandedValue(cols, adjust int, v float64) *Array {
	if cols <= 0 || adjust < 0 || adjust > 2 {
		panic(fmt.Errorf("invalid expanded array: %d columns, adjustment %d", cols, adjust))
	}
	return &Array{cols: cols, adjust: adjust, fill: v, pending: true}
}

// Pending returns whether this array still waits for an expansion.
func (a *Array) Pending() bool { return a.pending }

// Fixed returns whether this array is excluded from expansions.
func (a *Array) Fixed() bool { return a.fixed }

// Adjustment returns how many rows fewer than the control point count this array holds.
func (a *Array) Adjustment() int { return a.adjust }

func (a *Array) mustResolved() {
	if a.pending {
		panic("access to a pending array before expansion")
	}
}

// Dims returns the shape of the array. A pending array has no rows.
func (a *Array) Dims() (rows, cols int) {
	return a.rows, a.cols
}

// Len returns the number of values held.
func (a *Array) Len() int {
	return a.rows * a.cols
}

// At returns the value at row i and column j.
func (a *Array) At(i, j int) float64 {
	a.mustResolved()
	a.check(i, j)
	return a.data[i*a.cols+j]
}

// Set sets the value at row i and column j.
func (a *Array) Set(i, j int, v float64) {
	a.mustResolved()
	a.check(i, j)
	a.data[i*a.cols+j] = v
}

func (a *Array) check(i, j int) {
	if i < 0 || i >= a.rows || j < 0 || j >= a.cols {
		panic(fmt.Errorf("index (%d, %d) out of range for %dx%d array", i, j, a.rows, a.cols))
	}
}

// Col returns a copy of column j.
func (a *Array) Col(j int) []float64 {
	a.mustResolved()
	out := make([]float64, a.rows)
	for i := range out {
		out[i] = a.data[i*a.cols+j]
	}
	return out
}

// SetCol sets column j. A single value is broadcast to every row.
func (a *Array) SetCol(j int, v []float64) {
	a.mustResolved()
	if len(v) == 1 {
		a.FillCol(j, v[0])
		return
	}
	if len(v) != a.rows {
		panic(fmt.Errorf("%d values for a column of %d rows", len(v), a.rows))
	}
	for i, val := range v {
		a.data[i*a.cols+j] = val
	}
}

// FillCol sets every row of column j to v.
func (a *Array) FillCol(j int, v float64) {
	a.mustResolved()
	for i := 0; i < a.rows; i++ {
		a.data[i*a.cols+j] = v
	}
}

// Row returns a copy of row i.
func (a *Array) Row(i int) []float64 {
	a.mustResolved()
	out := make([]float64, a.cols)
	copy(out, a.data[i*a.cols:(i+1)*a.cols])
	return out
}

// Last returns the value of column j on the last row.
func (a *Array) Last(j int) float64 {
	return a.At(a.rows-1, j)
}

// First returns the value of column j on the first row.
func (a *Array) First(j int) float64 {
	return a.At(0, j)
}

// Fill sets every value to v.
func (a *Array) Fill(v float64) {
	a.mustResolved()
	for i := range a.data {
		a.data[i] = v
	}
}

// Raw returns the row-major backing slice.
func (a *Array) Raw() []float64 {
	a.mustResolved()
	return a.data
}

// Dense returns a gonum view sharing the data of this array.
func (a *Array) Dense() *mat.Dense {
	a.mustResolved()
	return mat.NewDense(a.rows, a.cols, a.data)
}

// Copy returns a deep copy.
func (a *Array) Copy() *Array {
	c := *a
	if a.data != nil {
		c.data = make([]float64, len(a.data))
		copy(c.data, a.data)
	}
	return &c
}

// LastRow returns a single row copy of the last row.
func (a *Array) LastRow() *Array {
	a.mustResolved()
	if a.rows == 0 {
		return NewArray(0, a.cols)
	}
	return NewArrayFrom(1, a.cols, a.data[(a.rows-1)*a.cols:])
}

func (a *Array) String() string {
	if a.pending {
		return fmt.Sprintf("pending(cols=%d, adjust=%d)", a.cols, a.adjust)
	}
	if a.rows == 0 {
		return "[]"
	}
	return fmt.Sprintf("%v", mat.Formatted(a.Dense(), mat.Squeeze()))
}

// expand resizes the array to n-adjust rows following the expansion rules.
func (a *Array) expand(n int, override bool) {
	if a.fixed {
		return
	}
	rows := n - a.adjust
	if rows < 0 {
		rows = 0
	}
	if a.pending {
		a.pending = false
		a.rows = rows
		a.data = make([]float64, rows*a.cols)
		if a.fill != 0 {
			for i := range a.data {
				a.data[i] = a.fill
			}
		}
		return
	}
	if a.rows == rows || (a.rows != 1 && !override) {
		return
	}
	// Cyclic repeat of the existing values: a single row is broadcast.
	data := make([]float64, rows*a.cols)
	if len(a.data) > 0 {
		for i := range data {
			data[i] = a.data[i%len(a.data)]
		}
	}
	a.rows = rows
	a.data = data
}
