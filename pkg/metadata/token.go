// Package metadata builds, persists, and post-processes per-token metadata
// documents.
//
// Each accepted token is serialized as indented JSON under build/json,
// keyed by edition number. Two optional post-processing passes enrich the
// documents after generation: rarity percentages (Enrich) and a
// harmonic-mean rarity ranking (Rank). Rank requires Enrich to have run
// first.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"artforge/pkg/config"
	"artforge/pkg/errors"
	"artforge/pkg/traits"
)

// Attribute is one trait entry of a token document.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
	// SubValue is set for nested layers: Value carries the sub-type name
	// and SubValue the concrete file label.
	SubValue string `json:"sub_value,omitempty"`
	// Percentage is the share of the collection carrying this trait
	// value. Zero until Enrich has run.
	Percentage float64 `json:"percentage,omitempty"`
}

// Token is the metadata document for one edition. Created when a combination
// is accepted and never mutated afterwards, except by the explicit
// post-processing passes.
type Token struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Edition     int         `json:"edition"`
	Attributes  []Attribute `json:"attributes"`
	RarityScore float64     `json:"rarity_score,omitempty"`
	RarityRank  int         `json:"rarity_rank,omitempty"`
}

// Build converts an accepted combination into a token document. Layers whose
// choice is the "no trait" sentinel contribute no attribute.
func Build(cfg *config.Config, edition int, comb traits.Combination) Token {
	token := Token{
		Name:        fmt.Sprintf("%s #%d", cfg.TokenPrefix, edition),
		Description: cfg.Description,
		Image:       fmt.Sprintf("%sbaseURI/%d.png", cfg.URIPrefix, edition),
		Edition:     edition,
		Attributes:  []Attribute{},
	}
	for _, ch := range comb {
		if ch.Candidate.None() {
			continue
		}
		attr := Attribute{TraitType: ch.Layer, Value: ch.Candidate.Label}
		if ch.Candidate.SubType != "" {
			attr.Value = ch.Candidate.SubType
			attr.SubValue = ch.Candidate.Label
		}
		token.Attributes = append(token.Attributes, attr)
	}
	return token
}

// Write serializes the token as indented JSON to dir/{edition}.json.
func Write(dir string, token Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshaling edition %d", token.Edition)
	}
	path := filepath.Join(dir, fmt.Sprintf("%d.json", token.Edition))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing %s", path)
	}
	return nil
}

// Read loads a previously written token document.
func Read(dir string, edition int) (Token, error) {
	path := filepath.Join(dir, fmt.Sprintf("%d.json", edition))
	data, err := os.ReadFile(path)
	if err != nil {
		return Token{}, errors.Wrap(errors.ErrCodeMetadataNotFound, err, "reading %s", path)
	}
	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return Token{}, errors.Wrap(errors.ErrCodeInternal, err, "parsing %s", path)
	}
	return token, nil
}

// readRange loads the token documents for editions start..start+amount-1.
func readRange(dir string, start, amount int) ([]Token, error) {
	tokens := make([]Token, 0, amount)
	for edition := start; edition < start+amount; edition++ {
		token, err := Read(dir, edition)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}
