package traits

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/sampleuv"

	"artforge/pkg/errors"
)

// Sampler draws weighted-random trait choices from a catalog. The random
// source is injected so a run is reproducible given a fixed seed.
type Sampler struct {
	src rand.Source
}

// NewSampler creates a sampler backed by src.
func NewSampler(src rand.Source) *Sampler {
	return &Sampler{src: src}
}

// Pick draws one candidate from the layer. Weights are relative likelihoods;
// zero and negative weights are unreachable. A layer with no reachable
// candidate is an error.
func (s *Sampler) Pick(layer Layer) (Candidate, error) {
	weights := make([]float64, len(layer.Weights))
	for i, w := range layer.Weights {
		if w > 0 {
			weights[i] = float64(w)
		}
	}
	idx, ok := sampleuv.NewWeighted(weights, s.src).Take()
	if !ok {
		return Candidate{}, errors.New(errors.ErrCodeNoCandidate,
			"layer %q has no candidate with a positive weight", layer.Name)
	}
	return layer.Candidates[idx], nil
}

// Draw performs one full trial: one weighted pick per layer, in layer order.
func (s *Sampler) Draw(catalog *Catalog) (Combination, error) {
	comb := make(Combination, 0, len(catalog.Layers))
	for _, layer := range catalog.Layers {
		c, err := s.Pick(layer)
		if err != nil {
			return nil, err
		}
		comb = append(comb, Choice{Layer: layer.Name, Candidate: c})
	}
	return comb, nil
}
