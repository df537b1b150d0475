// Package generate drives the token generation loop: sample a trait
// combination, reject duplicates, composite the image, emit the metadata,
// until the requested amount is produced.
//
// The runner is deliberately fail-fast about degenerate configurations:
// before the loop it compares the requested amount against the number of
// distinct reachable combinations and refuses to start a run that could
// never finish. A per-edition retry cap guards the remaining pathological
// weight skews.
//
// # Usage
//
//	runner := generate.NewRunner(logger, seed)
//	result, err := runner.Execute(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	logger.Infof("produced %d tokens", result.Produced)
package generate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"artforge/pkg/config"
	"artforge/pkg/errors"
	"artforge/pkg/metadata"
	"artforge/pkg/render"
	"artforge/pkg/traits"
)

// maxDrawAttempts bounds the consecutive duplicate draws tolerated for a
// single edition before the run is aborted.
const maxDrawAttempts = 10000

// Runner executes generation runs. The random source is seeded once at
// construction, so two runners with the same seed and config produce
// identical collections.
type Runner struct {
	logger *log.Logger
	seed   uint64
	src    rand.Source
}

// NewRunner creates a runner with a deterministic random source derived from
// seed.
func NewRunner(logger *log.Logger, seed uint64) *Runner {
	return &Runner{
		logger: logger,
		seed:   seed,
		src:    rand.NewPCG(seed, seed),
	}
}

// Result summarizes a completed run.
type Result struct {
	RunID        string
	StartEdition int
	Produced     int
	Duplicates   int
	Capacity     int
}

// Execute runs the full generation loop for cfg, then the optional
// rich-metadata and rarity-rank passes.
func (r *Runner) Execute(ctx context.Context, cfg *config.Config) (*Result, error) {
	if err := cfg.EnsureBuildDirs(); err != nil {
		return nil, err
	}

	catalog, err := traits.LoadCatalog(cfg, r.logger)
	if err != nil {
		return nil, err
	}

	capacity := catalog.Capacity()
	if cfg.Amount > capacity {
		return nil, errors.New(errors.ErrCodeSpaceExhausted,
			"collection space exhausted: %d distinct combinations available, %d requested",
			capacity, cfg.Amount)
	}
	r.logger.Debugf("trait space holds %d distinct combinations", capacity)

	opts, err := renderOptions(cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:        uuid.NewString(),
		StartEdition: cfg.StartEdition(),
		Capacity:     capacity,
	}
	sampler := traits.NewSampler(r.src)
	compositor := render.NewCompositor()
	seen := newCombinationSet()

	edition := result.StartEdition
	end := result.StartEdition + cfg.Amount
	attempts := 0
	for edition < end {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		comb, err := sampler.Draw(catalog)
		if err != nil {
			return nil, err
		}
		if seen.Has(comb) {
			result.Duplicates++
			attempts++
			r.logger.Debugf("edition %d: duplicate combination, redrawing (attempt %d)", edition, attempts)
			if attempts >= maxDrawAttempts {
				return nil, errors.New(errors.ErrCodeRetryLimit,
					"gave up on edition %d after %d duplicate draws; the remaining trait space is too skewed",
					edition, attempts)
			}
			continue
		}

		if err := r.emit(cfg, compositor, opts, edition, comb); err != nil {
			return nil, err
		}
		seen.Add(comb)
		result.Produced++
		edition++
		attempts = 0
	}

	manifest := Manifest{
		RunID:        result.RunID,
		Seed:         r.seed,
		Amount:       cfg.Amount,
		StartEdition: result.StartEdition,
		Capacity:     capacity,
		Duplicates:   result.Duplicates,
		CreatedAt:    time.Now().UTC(),
	}
	if err := WriteManifest(cfg.BuildDir, manifest); err != nil {
		return nil, err
	}

	return result, r.postProcess(cfg, result)
}

// emit composites and persists one accepted token: the image under
// build/images and the metadata document under build/json.
func (r *Runner) emit(cfg *config.Config, compositor *render.Compositor, opts render.Options, edition int, comb traits.Combination) error {
	r.logger.Debugf("creating token #%d", edition)

	img, err := compositor.Compose(comb, opts)
	if err != nil {
		return err
	}
	imgPath := filepath.Join(cfg.ImagesDir(), fmt.Sprintf("%d.png", edition))
	if err := render.SavePNG(img, imgPath); err != nil {
		return err
	}

	return metadata.Write(cfg.JSONDir(), metadata.Build(cfg, edition, comb))
}

// postProcess runs the optional rich-metadata and rarity-rank passes over
// the produced edition range. A missing rich-metadata precondition is
// surfaced as a warning, not a failure.
func (r *Runner) postProcess(cfg *config.Config, result *Result) error {
	if cfg.RichMetadata {
		if err := metadata.Enrich(cfg.JSONDir(), result.StartEdition, result.Produced, r.logger); err != nil {
			return err
		}
	}
	if cfg.PaintswapMetadata {
		err := metadata.Rank(cfg.JSONDir(), result.StartEdition, result.Produced, r.logger)
		if errors.Is(err, errors.ErrCodeMissingRichMetadata) {
			r.logger.Warnf("Skipping rarity ranks: %s", errors.UserMessage(err))
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// renderOptions derives compositor options from the config.
func renderOptions(cfg *config.Config) (render.Options, error) {
	opts := render.Options{
		DrawBackground: cfg.DrawBackground,
		Width:          cfg.CanvasWidth,
		Height:         cfg.CanvasHeight,
	}
	if cfg.DrawBackground {
		bg, err := cfg.Background()
		if err != nil {
			return render.Options{}, err
		}
		opts.Background = bg
	}
	return opts, nil
}
