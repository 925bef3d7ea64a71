package database

import (
	"strings"
	"sync"
)

// rebind rewrites ? parameters into the dialect's syntax.
func rebind(d Dialect, query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteString(d.Bind(n))
	}
	return b.String()
}

// statements caches rebound queries; every query in this package is a
// constant, so the cache is bounded by the number of call sites.
type statements struct {
	dialect Dialect
	cache   sync.Map
}

func (s *statements) bind(query string) string {
	if q, ok := s.cache.Load(query); ok {
		return q.(string)
	}
	q := rebind(s.dialect, query)
	s.cache.Store(query, q)
	return q
}
