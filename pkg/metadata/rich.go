package metadata

import (
	"math"

	"github.com/charmbracelet/log"
)

// TraitKey identifies one trait value within a trait type for frequency
// counting. Sub-values are part of the identity so nested variants are
// counted separately.
type TraitKey struct {
	TraitType string
	Value     string
	SubValue  string
}

// Counts is the trait-value frequency table of a collection.
type Counts map[TraitKey]int

// CountTraits tallies how many tokens in the edition range carry each trait
// value.
func CountTraits(dir string, start, amount int) (Counts, error) {
	tokens, err := readRange(dir, start, amount)
	if err != nil {
		return nil, err
	}
	counts := make(Counts)
	for _, token := range tokens {
		for _, attr := range token.Attributes {
			counts[TraitKey{attr.TraitType, attr.Value, attr.SubValue}]++
		}
	}
	return counts, nil
}

// Percentages converts frequency counts into percentages of the collection,
// rounded to two decimals.
func Percentages(counts Counts, amount int) map[TraitKey]float64 {
	percentages := make(map[TraitKey]float64, len(counts))
	if amount == 0 {
		return percentages
	}
	for key, count := range counts {
		pct := float64(count) / float64(amount) * 100
		percentages[key] = math.Round(pct*100) / 100
	}
	return percentages
}

// Enrich rewrites the metadata documents in the edition range, adding a
// rarity percentage to every attribute.
func Enrich(dir string, start, amount int, logger *log.Logger) error {
	counts, err := CountTraits(dir, start, amount)
	if err != nil {
		return err
	}
	percentages := Percentages(counts, amount)
	logger.Debugf("computed percentages for %d distinct trait values", len(percentages))

	for edition := start; edition < start+amount; edition++ {
		token, err := Read(dir, edition)
		if err != nil {
			return err
		}
		for i, attr := range token.Attributes {
			token.Attributes[i].Percentage = percentages[TraitKey{attr.TraitType, attr.Value, attr.SubValue}]
		}
		if err := Write(dir, token); err != nil {
			return err
		}
	}
	logger.Infof("Enriched %d metadata files with rarity percentages", amount)
	return nil
}
