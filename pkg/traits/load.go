package traits

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"artforge/pkg/config"
	"artforge/pkg/errors"
)

// imageExts is the allow-list of raster asset extensions.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// LoadCatalog resolves every layer of the config into an immutable catalog.
// Weight repairs and normalization are logged but never fatal; only missing
// directories and empty layers abort the load.
func LoadCatalog(cfg *config.Config, logger *log.Logger) (*Catalog, error) {
	catalog := &Catalog{Layers: make([]Layer, 0, len(cfg.Layers))}
	for _, spec := range cfg.Layers {
		layer, err := loadLayer(cfg, spec, logger)
		if err != nil {
			return nil, err
		}
		catalog.Layers = append(catalog.Layers, layer)
	}
	return catalog, nil
}

// loadLayer resolves one layer: discovers candidates, aligns weights with
// them, appends the "no trait" sentinel for non-required layers, and
// normalizes weights to a (near-)100 total.
func loadLayer(cfg *config.Config, spec config.Layer, logger *log.Logger) (Layer, error) {
	dir := cfg.LayerDir(spec.Name)

	var candidates []Candidate
	var weights []int
	if spec.Nested() {
		for _, tg := range spec.Types {
			files, err := listImages(filepath.Join(dir, tg.Name))
			if err != nil {
				return Layer{}, errors.Wrap(errors.ErrCodeAssetNotFound, err,
					"layer %q sub-type %q", spec.Name, tg.Name)
			}
			for _, f := range files {
				candidates = append(candidates, Candidate{
					Path:    f,
					Label:   stem(f),
					SubType: tg.Name,
				})
			}
			weights = append(weights, tg.Rarities...)
		}
	} else {
		files, err := listImages(dir)
		if err != nil {
			return Layer{}, errors.Wrap(errors.ErrCodeAssetNotFound, err, "layer %q", spec.Name)
		}
		for _, f := range files {
			candidates = append(candidates, Candidate{Path: f, Label: stem(f)})
		}
		weights = append(weights, spec.Rarities...)
	}

	logger.Debugf("layer %s: %d candidates, rarities %v", spec.Name, len(candidates), weights)

	if len(candidates) == 0 {
		return Layer{}, errors.New(errors.ErrCodeEmptyLayer, "layer %q has no image files under %s", spec.Name, dir)
	}

	if !spec.IsRequired() {
		remainder := 100 - sum(weights)
		if remainder < 0 {
			logger.Warnf("layer %s: declared rarities exceed 100, 'no trait' weight is %d and unreachable", spec.Name, remainder)
		}
		candidates = append(candidates, Candidate{})
		weights = append(weights, remainder)
	}

	weights = repairWeights(spec.Name, candidates, weights, logger)
	weights = normalizeWeights(spec.Name, weights, logger)

	return Layer{Name: spec.Name, Candidates: candidates, Weights: weights}, nil
}

// repairWeights aligns the weight count with the candidate count: missing
// weights are padded with 0 (those candidates become unreachable), extra
// weights are truncated.
func repairWeights(layer string, candidates []Candidate, weights []int, logger *log.Logger) []int {
	if len(candidates) == len(weights) {
		return weights
	}
	logger.Warnf("layer %s: %d candidates but %d rarities, repairing", layer, len(candidates), len(weights))
	if len(candidates) > len(weights) {
		padded := make([]int, len(candidates))
		copy(padded, weights)
		return padded
	}
	return weights[:len(candidates)]
}

// normalizeWeights rescales weights so they sum to (at most) 100. A total of
// exactly 100 is left untouched. Each weight becomes floor(w/total*100);
// integer truncation can leave the new sum below 100.
func normalizeWeights(layer string, weights []int, logger *log.Logger) []int {
	total := sum(weights)
	if total == 100 {
		return weights
	}
	if total <= 0 {
		logger.Warnf("layer %s: rarities sum to %d, cannot normalize", layer, total)
		return weights
	}
	logger.Warnf("layer %s: rarities sum to %d, normalizing to 100", layer, total)
	normalized := make([]int, len(weights))
	for i, w := range weights {
		normalized[i] = w * 100 / total
	}
	return normalized
}

// listImages returns the allow-listed image files directly under dir, sorted
// lexically for deterministic candidate ordering.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func sum(ws []int) int {
	total := 0
	for _, w := range ws {
		total += w
	}
	return total
}
