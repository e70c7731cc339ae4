package rcaide

import (
	"fmt"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
)

// TagCache memoizes SanitizeTag.
type TagCache struct {
	lru *lru.Cache[string, string]
}

// NewTagCache returns a cache of at most size tags.
func NewTagCache(size int) *TagCache {
	c, err := lru.New[string, string](size)
	if err != nil {
		panic(err)
	}
	return &TagCache{c}
}

// Sanitize returns SanitizeTag(tag), from the cache when possible.
func (c *TagCache) Sanitize(tag string) (string, error) {
	if clean, ok := c.lru.Get(tag); ok {
		return clean, nil
	}
	clean, err := SanitizeTag(tag)
	if err != nil {
		return "", err
	}
	c.lru.Add(tag, clean)
	return clean, nil
}

var tagCache = NewTagCache(256)

// SanitizeTag replaces every rune which cannot appear in an identifier by an underscore.
// Tags with nothing left but underscores are invalid.
func SanitizeTag(tag string) (string, error) {
	clean := strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, strings.TrimSpace(tag))
	if strings.Trim(clean, "_") == "" {
		return "", fmt.Errorf("%w: `%s`", ErrInvalidTag, tag)
	}
	return clean, nil
}

// uniqueTag returns tag, or tag suffixed by the first free number from 2.
func uniqueTag(tag string, taken func(string) bool) string {
	if !taken(tag) {
		return tag
	}
	for i := 2; ; i++ {
		if candidate := fmt.Sprintf("%s%d", tag, i); !taken(candidate) {
			return candidate
		}
	}
}
