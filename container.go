package rcaide

import (
	"fmt"

	"github.com/iancoleman/orderedmap"
)

// Container is an ordered group of segments and nested containers, evaluated in order.
type Container struct {
	tag   string
	items *orderedmap.OrderedMap
}

// NewContainer returns an empty container.
func NewContainer(tag string) (*Container, error) {
	clean, err := tagCache.Sanitize(tag)
	if err != nil {
		return nil, err
	}
	return &Container{tag: clean, items: orderedmap.New()}, nil
}

// Tag returns the tag of this container.
func (c *Container) Tag() string { return c.tag }

func (c *Container) taken(tag string) bool {
	_, ok := c.items.Get(tag)
	return ok
}

// Append adds a segment. Its tag is sanitized and suffixed with a number when already
// used in this container. The final tag is returned.
func (c *Container) Append(s Segmenter) (string, error) {
	seg := s.Base()
	clean, err := tagCache.Sanitize(seg.Tag())
	if err != nil {
		return "", err
	}
	tag := uniqueTag(clean, c.taken)
	seg.SetTag(tag)
	c.items.Set(tag, s)
	return tag, nil
}

// AppendContainer adds a nested container, with the same tag rules as Append.
func (c *Container) AppendContainer(sub *Container) (string, error) {
	if sub == c {
		return "", invalidf("container `%s` cannot contain itself", c.tag)
	}
	tag := uniqueTag(sub.tag, c.taken)
	sub.tag = tag
	c.items.Set(tag, sub)
	return tag, nil
}

// Get returns the Segmenter or *Container stored under tag.
func (c *Container) Get(tag string) (interface{}, bool) {
	return c.items.Get(tag)
}

// Keys returns the tags of the direct children in order.
func (c *Container) Keys() []string {
	keys := c.items.Keys()
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Len returns the number of direct children.
func (c *Container) Len() int {
	return len(c.items.Keys())
}

// Walk calls fn on every segment in evaluation order with its dotted path.
func (c *Container) Walk(fn func(path string, s Segmenter) error) error {
	return c.walk("", fn)
}

func (c *Container) walk(prefix string, fn func(string, Segmenter) error) error {
	for _, key := range c.items.Keys() {
		v, _ := c.items.Get(key)
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch item := v.(type) {
		case *Container:
			if err := item.walk(path, fn); err != nil {
				return err
			}
		case Segmenter:
			if err := fn(path, item); err != nil {
				return err
			}
		default:
			panic(fmt.Errorf("unexpected %T in container `%s`", v, c.tag))
		}
	}
	return nil
}

// Leaves returns every segment in evaluation order.
func (c *Container) Leaves() []Segmenter {
	var out []Segmenter
	c.Walk(func(_ string, s Segmenter) error {
		out = append(out, s)
		return nil
	})
	return out
}
