// Package traits resolves layered trait catalogs and samples weighted trait
// combinations from them.
//
// A catalog is derived once per run from the collection config: each layer's
// asset directory is scanned for image files, declared rarities are repaired
// and normalized against the discovered candidates, and non-required layers
// gain a synthetic "no trait" candidate. The catalog is immutable after
// loading; sampling never mutates it.
//
// # Weight semantics
//
// Rarities are relative likelihoods, conceptually out of 100. After loading,
// every layer satisfies len(Candidates) == len(Weights). Candidates with a
// zero or negative weight are unreachable and are never selected.
package traits

import (
	"strings"
)

// Candidate is one selectable trait asset within a layer, or the "no trait"
// sentinel (the zero value).
type Candidate struct {
	// Path is the asset file path. Empty for the "no trait" sentinel.
	Path string
	// Label is the candidate's identifying label, derived from the file
	// name without its extension.
	Label string
	// SubType is the containing sub-type directory name for nested
	// layers. Empty for flat layers and the sentinel.
	SubType string
}

// None reports whether the candidate is the "no trait" sentinel.
func (c Candidate) None() bool {
	return c.Path == ""
}

// id returns the candidate's identity for combination keys.
func (c Candidate) id() string {
	if c.None() {
		return "-"
	}
	return c.Path
}

// Layer is one resolved trait dimension: an ordered candidate list with an
// aligned integer weight list.
type Layer struct {
	Name       string
	Candidates []Candidate
	Weights    []int
}

// reachable counts candidates that can actually be drawn (positive weight).
func (l Layer) reachable() int {
	n := 0
	for _, w := range l.Weights {
		if w > 0 {
			n++
		}
	}
	return n
}

// Catalog is the full ordered set of resolved layers for one run.
type Catalog struct {
	Layers []Layer
}

// Capacity returns the number of distinct reachable combinations: the
// product of per-layer reachable candidate counts. The result saturates at
// maxCapacity to avoid overflow on very large trait spaces.
func (c *Catalog) Capacity() int {
	const maxCapacity = int(1) << 52
	capacity := 1
	for _, l := range c.Layers {
		n := l.reachable()
		if n == 0 {
			return 0
		}
		if capacity > maxCapacity/n {
			return maxCapacity
		}
		capacity *= n
	}
	return capacity
}

// Choice is the candidate selected for one layer during one draw.
type Choice struct {
	Layer     string
	Candidate Candidate
}

// Combination is the full ordered set of choices across all layers for one
// token. It is the unit of deduplication.
type Combination []Choice

// Key returns a string that is equal for two combinations exactly when they
// selected the same candidate for every layer, in order.
func (c Combination) Key() string {
	var b strings.Builder
	for i, ch := range c {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(ch.Candidate.id())
	}
	return b.String()
}
