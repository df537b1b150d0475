package metadata

import (
	"math"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/montanaflynn/stats"

	"artforge/pkg/errors"
)

// commonScore is assigned to tokens without any attribute (every layer chose
// "no trait"). It sorts them after every token that carries a trait.
const commonScore = 100.0

// Rank scores every token in the edition range by the harmonic mean of its
// attribute percentages and appends a rank to each document: the token with
// the lowest score (rarest traits) gets rank 1.
//
// Rank requires Enrich to have run first; without percentages it fails with
// ErrCodeMissingRichMetadata, which callers surface as an instructional
// message rather than a crash.
func Rank(dir string, start, amount int, logger *log.Logger) error {
	tokens, err := readRange(dir, start, amount)
	if err != nil {
		return err
	}

	type scored struct {
		token Token
		score float64
	}
	ranked := make([]scored, 0, len(tokens))
	for _, token := range tokens {
		score, err := harmonicScore(token)
		if err != nil {
			return err
		}
		ranked = append(ranked, scored{token: token, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].token.Edition < ranked[j].token.Edition
	})

	for i := range ranked {
		ranked[i].token.RarityScore = math.Round(ranked[i].score*100) / 100
		ranked[i].token.RarityRank = i + 1
		if err := Write(dir, ranked[i].token); err != nil {
			return err
		}
	}
	logger.Infof("Ranked %d tokens by rarity", len(ranked))
	return nil
}

// harmonicScore computes the harmonic mean of a token's attribute
// percentages. The harmonic mean is dominated by the smallest values, so a
// single very rare trait pulls the whole token towards rank 1.
func harmonicScore(token Token) (float64, error) {
	if len(token.Attributes) == 0 {
		return commonScore, nil
	}
	percentages := make([]float64, 0, len(token.Attributes))
	for _, attr := range token.Attributes {
		if attr.Percentage <= 0 {
			return 0, errors.New(errors.ErrCodeMissingRichMetadata,
				"edition %d has no rarity percentages; enable rich_metadata and regenerate before ranking",
				token.Edition)
		}
		percentages = append(percentages, attr.Percentage)
	}
	return stats.HarmonicMean(percentages)
}
