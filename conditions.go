package rcaide

import (
	"fmt"
	"strings"

	"github.com/iancoleman/orderedmap"
)

// Conditions is an insertion ordered tree of named arrays. Every node is either a nested
// *Conditions or an *Array leaf. Iteration, packing and merging all follow insertion order.
type Conditions struct {
	m    *orderedmap.OrderedMap
	size int
}

// NewConditions returns an empty tree.
func NewConditions() *Conditions {
	return &Conditions{m: orderedmap.New()}
}

// Set stores a *Conditions or an *Array under key, keeping the position of an existing key.
func (c *Conditions) Set(key string, v interface{}) {
	if key == "" || strings.Contains(key, ".") {
		panic(fmt.Errorf("invalid conditions key `%s`", key))
	}
	switch v.(type) {
	case *Conditions, *Array:
		c.m.Set(key, v)
	default:
		panic(fmt.Errorf("conditions cannot store %T under `%s`", v, key))
	}
}

// Get returns the node stored under key.
func (c *Conditions) Get(key string) (interface{}, bool) {
	return c.m.Get(key)
}

// Has returns whether key is set on this node.
func (c *Conditions) Has(key string) bool {
	_, ok := c.m.Get(key)
	return ok
}

// Delete removes key from this node.
func (c *Conditions) Delete(key string) {
	c.m.Delete(key)
}

// Keys returns the keys of this node in insertion order.
func (c *Conditions) Keys() []string {
	keys := c.m.Keys()
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Len returns the number of direct children.
func (c *Conditions) Len() int {
	return len(c.m.Keys())
}

// Size returns the row count recorded by the last expansion.
func (c *Conditions) Size() int {
	return c.size
}

// Sub returns the nested node at the dotted path, creating every missing node.
func (c *Conditions) Sub(path string) *Conditions {
	node := c
	for _, key := range strings.Split(path, ".") {
		v, ok := node.m.Get(key)
		if !ok {
			child := NewConditions()
			child.size = node.size
			node.Set(key, child)
			node = child
			continue
		}
		child, isNode := v.(*Conditions)
		if !isNode {
			panic(fmt.Errorf("`%s` in `%s` is an array, not a node", key, path))
		}
		node = child
	}
	return node
}

// DeepGet returns the node at the dotted path.
func (c *Conditions) DeepGet(path string) (interface{}, error) {
	keys := strings.Split(path, ".")
	var node interface{} = c
	for i, key := range keys {
		cond, ok := node.(*Conditions)
		if !ok {
			return nil, missingf("`%s` is an array", strings.Join(keys[:i], "."))
		}
		if node, ok = cond.m.Get(key); !ok {
			return nil, missingf("no `%s` in conditions", strings.Join(keys[:i+1], "."))
		}
	}
	return node, nil
}

// DeepSet stores v at the dotted path, creating the intermediate nodes.
func (c *Conditions) DeepSet(path string, v interface{}) {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		c.Set(path, v)
		return
	}
	c.Sub(path[:idx]).Set(path[idx+1:], v)
}

// Lookup returns the array at the dotted path.
func (c *Conditions) Lookup(path string) (*Array, bool) {
	v, err := c.DeepGet(path)
	if err != nil {
		return nil, false
	}
	a, ok := v.(*Array)
	return a, ok
}

// Array returns the array at the dotted path and panics if there is none: a missing
// array is a wiring error of the segment, not a runtime condition.
func (c *Conditions) Array(path string) *Array {
	a, ok := c.Lookup(path)
	if !ok {
		panic(fmt.Errorf("no array `%s` in conditions", path))
	}
	return a
}

// Update merges other into c: nested nodes are merged recursively and leaves are
// overwritten by copies of those of other.
func (c *Conditions) Update(other *Conditions) {
	for _, key := range other.m.Keys() {
		v, _ := other.m.Get(key)
		switch o := v.(type) {
		case *Conditions:
			if mine, ok := c.m.Get(key); ok {
				if sub, isNode := mine.(*Conditions); isNode {
					sub.Update(o)
					continue
				}
			}
			c.m.Set(key, o.Copy())
		case *Array:
			c.m.Set(key, o.Copy())
		}
	}
}

// ExpandRows sizes every leaf for n control points. Pending arrays resolve to n-adjust
// rows, single row arrays are broadcast, arrays with several rows are kept unless
// override is set, and fixed arrays are never touched.
func (c *Conditions) ExpandRows(n int, override bool) error {
	if n <= 0 {
		return invalidf("cannot expand conditions to %d rows", n)
	}
	c.expand(n, override)
	return nil
}

func (c *Conditions) expand(n int, override bool) {
	c.size = n
	for _, key := range c.m.Keys() {
		v, _ := c.m.Get(key)
		switch node := v.(type) {
		case *Conditions:
			node.expand(n, override)
		case *Array:
			node.expand(n, override)
		}
	}
}

// Walk calls fn on every leaf, depth first in insertion order, with its dotted path.
func (c *Conditions) Walk(fn func(path string, a *Array) error) error {
	return c.walk("", fn)
}

func (c *Conditions) walk(prefix string, fn func(string, *Array) error) error {
	for _, key := range c.m.Keys() {
		v, _ := c.m.Get(key)
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch node := v.(type) {
		case *Conditions:
			if err := node.walk(path, fn); err != nil {
				return err
			}
		case *Array:
			if err := fn(path, node); err != nil {
				return err
			}
		}
	}
	return nil
}

// Leaves returns the dotted paths of every leaf.
func (c *Conditions) Leaves() []string {
	var paths []string
	c.Walk(func(path string, _ *Array) error {
		paths = append(paths, path)
		return nil
	})
	return paths
}

// PackLen returns the length of the packed vector.
func (c *Conditions) PackLen() int {
	n := 0
	c.Walk(func(_ string, a *Array) error {
		n += a.Len()
		return nil
	})
	return n
}

// Pack flattens every leaf in insertion order, each one column by column.
func (c *Conditions) Pack() []float64 {
	out := make([]float64, 0, c.PackLen())
	c.Walk(func(_ string, a *Array) error {
		a.mustResolved()
		for j := 0; j < a.cols; j++ {
			for i := 0; i < a.rows; i++ {
				out = append(out, a.data[i*a.cols+j])
			}
		}
		return nil
	})
	return out
}

// Unpack is the inverse of Pack.
func (c *Conditions) Unpack(x []float64) error {
	if n := c.PackLen(); n != len(x) {
		return fmt.Errorf("%w: cannot unpack %d values into %d", ErrDimension, len(x), n)
	}
	k := 0
	return c.Walk(func(_ string, a *Array) error {
		a.mustResolved()
		for j := 0; j < a.cols; j++ {
			for i := 0; i < a.rows; i++ {
				a.data[i*a.cols+j] = x[k]
				k++
			}
		}
		return nil
	})
}

// Copy returns a deep copy of the tree.
func (c *Conditions) Copy() *Conditions {
	out := NewConditions()
	out.size = c.size
	for _, key := range c.m.Keys() {
		v, _ := c.m.Get(key)
		switch node := v.(type) {
		case *Conditions:
			out.m.Set(key, node.Copy())
		case *Array:
			out.m.Set(key, node.Copy())
		}
	}
	return out
}

// LastRow returns a copy of the tree where every resolved leaf only holds its last row.
// Pending leaves are dropped.
func (c *Conditions) LastRow() *Conditions {
	out := NewConditions()
	out.size = 1
	for _, key := range c.m.Keys() {
		v, _ := c.m.Get(key)
		switch node := v.(type) {
		case *Conditions:
			out.m.Set(key, node.LastRow())
		case *Array:
			if !node.pending && node.rows > 0 {
				out.m.Set(key, node.LastRow())
			}
		}
	}
	return out
}

func (c *Conditions) String() string {
	var b strings.Builder
	c.Walk(func(path string, a *Array) error {
		r, cols := a.Dims()
		fmt.Fprintf(&b, "%s (%dx%d)\n", path, r, cols)
		return nil
	})
	return b.String()
}
