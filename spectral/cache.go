package spectral

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheKey struct {
	kind Kind
	n    int
}

// Cache memoizes operators by kind and size. It is safe for concurrent use.
type Cache struct {
	lru *lru.Cache[cacheKey, *Operators]
}

// NewCache returns a cache holding at most size grids.
func NewCache(size int) *Cache {
	c, err := lru.New[cacheKey, *Operators](size)
	if err != nil {
		panic(err)
	}
	return &Cache{c}
}

// Get returns a private copy of the requested operators, building them on a miss.
// Callers may rescale the returned matrices freely.
func (c *Cache) Get(kind Kind, n int) (*Operators, error) {
	k := cacheKey{kind, n}
	if ops, ok := c.lru.Get(k); ok {
		return ops.Copy(), nil
	}
	ops, err := New(kind, n)
	if err != nil {
		return nil, err
	}
	c.lru.Add(k, ops)
	return ops.Copy(), nil
}

// Len returns the number of cached grids.
func (c *Cache) Len() int {
	return c.lru.Len()
}

var defaultCache = NewCache(32)

// Cached returns a private copy of the requested operators from the package cache.
func Cached(kind Kind, n int) (*Operators, error) {
	return defaultCache.Get(kind, n)
}
