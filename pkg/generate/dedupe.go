package generate

import "artforge/pkg/traits"

// combinationSet tracks every combination accepted during one run. It grows
// monotonically, one entry per accepted token, and is discarded at run end.
type combinationSet struct {
	keys map[string]struct{}
}

func newCombinationSet() *combinationSet {
	return &combinationSet{keys: make(map[string]struct{})}
}

// Has reports whether a structurally equal combination was already accepted.
func (s *combinationSet) Has(c traits.Combination) bool {
	_, ok := s.keys[c.Key()]
	return ok
}

// Add records an accepted combination.
func (s *combinationSet) Add(c traits.Combination) {
	s.keys[c.Key()] = struct{}{}
}

// Len returns the number of accepted combinations.
func (s *combinationSet) Len() int {
	return len(s.keys)
}
