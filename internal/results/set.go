package results

import (
	"encoding/json"
	"sort"
)

// Set is an ordered, immutable collection of results keyed by Key. Members
// sort before the dungeons and tasks that aggregate them.
type Set struct {
	results []Result
	index   map[Key]int
}

// NewSet builds a set; a later result replaces an earlier one with the same
// key.
func NewSet(rs ...Result) Set {
	byKey := make(map[Key]Result, len(rs))
	for _, r := range rs {
		byKey[r.Key] = r
	}
	s := Set{
		results: make([]Result, 0, len(byKey)),
		index:   make(map[Key]int, len(byKey)),
	}
	for _, r := range byKey {
		s.results = append(s.results, r)
	}
	sort.Slice(s.results, func(i, j int) bool { return less(s.results[i].Key, s.results[j].Key) })
	for i, r := range s.results {
		s.index[r.Key] = i
	}
	return s
}

// Len is the number of results.
func (s Set) Len() int { return len(s.results) }

// Get looks up a result.
func (s Set) Get(k Key) (Result, bool) {
	i, ok := s.index[k]
	if !ok {
		return Result{}, false
	}
	return s.results[i], true
}

// All returns the results in order. The slice is a copy.
func (s Set) All() []Result {
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}

// Members resolves r's member keys against the set, skipping missing ones.
func (s Set) Members(r Result) []Result {
	out := make([]Result, 0, len(r.Members))
	for _, k := range r.Members {
		if m, ok := s.Get(k); ok {
			out = append(out, m)
		}
	}
	return out
}

// Transform applies fn to every result in order and returns the new set.
// fn sees done, the results already transformed, so aggregates can read their
// members' new values.
func (s Set) Transform(fn func(r Result, done Set) Result) Set {
	out := Set{
		results: make([]Result, 0, len(s.results)),
		index:   make(map[Key]int, len(s.results)),
	}
	for _, r := range s.results {
		nr := fn(r, out)
		nr.Key = r.Key
		out.index[nr.Key] = len(out.results)
		out.results = append(out.results, nr)
	}
	return out
}

// MarshalJSON encodes the set as an object keyed by result key.
func (s Set) MarshalJSON() ([]byte, error) {
	m := make(map[Key]Result, len(s.results))
	for _, r := range s.results {
		m[r.Key] = r
	}
	return json.Marshal(m)
}
