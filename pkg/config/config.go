// Package config loads and validates collection configuration files.
//
// A collection is described by a TOML document listing collection-level
// fields (amount, naming, canvas) and the ordered set of trait layers. Asset
// and output roots are explicit configuration rather than assumed relative to
// the working directory, so a run can be pointed at any tree.
//
// # Example
//
//	amount = 100
//	id_from_one = false
//	token_prefix = "Critter"
//	description = "100 generated critters"
//	uri_prefix = "ipfs://"
//	draw_background = true
//	canvas_width = 1000
//	canvas_height = 1000
//	background_color = "#1e1e2e"
//
//	[[layers]]
//	name = "body"
//	rarities = [50, 30, 20]
//
//	[[layers]]
//	name = "hat"
//	required = false
//	rarities = [30, 30]
package config

import (
	"image/color"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"

	"artforge/pkg/errors"
)

// Default directory layout, relative to the working directory unless
// overridden in the config file or on the command line.
const (
	DefaultAssetsDir = "assets"
	DefaultBuildDir  = "build"
)

// TypeGroup is one nested sub-type of a layer: a subdirectory of the layer's
// asset directory together with the declared rarities of its files.
type TypeGroup struct {
	Name     string `toml:"name"`
	Rarities []int  `toml:"rarities"`
}

// Layer describes one trait dimension of the collection.
//
// A layer is either flat (its candidates are the image files directly under
// assets/<name>) or nested (candidates come from the listed sub-type
// directories, in declaration order). Required defaults to true; a
// non-required layer gains a synthetic "no trait" candidate at load time.
type Layer struct {
	Name     string      `toml:"name"`
	Rarities []int       `toml:"rarities"`
	Required *bool       `toml:"required"`
	Types    []TypeGroup `toml:"types"`
}

// IsRequired reports whether the layer must contribute a trait to every
// token. Unset means required.
func (l Layer) IsRequired() bool {
	return l.Required == nil || *l.Required
}

// Nested reports whether the layer uses sub-type directories.
func (l Layer) Nested() bool {
	return len(l.Types) > 0
}

// Config is the immutable collection configuration for one run.
type Config struct {
	Amount            int     `toml:"amount"`
	IDFromOne         bool    `toml:"id_from_one"`
	TokenPrefix       string  `toml:"token_prefix"`
	Description       string  `toml:"description"`
	URIPrefix         string  `toml:"uri_prefix"`
	DrawBackground    bool    `toml:"draw_background"`
	CanvasWidth       int     `toml:"canvas_width"`
	CanvasHeight      int     `toml:"canvas_height"`
	BackgroundColor   string  `toml:"background_color"`
	RichMetadata      bool    `toml:"rich_metadata"`
	PaintswapMetadata bool    `toml:"paintswap_metadata"`
	AssetsDir         string  `toml:"assets_dir"`
	BuildDir          string  `toml:"build_dir"`
	Layers            []Layer `toml:"layers"`
}

// Load reads and validates a collection config from a TOML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading config %s", path)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config %s", path)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills in unset fields with sensible defaults.
func (c *Config) SetDefaults() {
	if c.AssetsDir == "" {
		c.AssetsDir = DefaultAssetsDir
	}
	if c.BuildDir == "" {
		c.BuildDir = DefaultBuildDir
	}
	if c.BackgroundColor == "" {
		c.BackgroundColor = "#ffffff"
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Amount < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "amount must be >= 0, got %d", c.Amount)
	}
	if len(c.Layers) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "at least one layer is required")
	}
	seen := make(map[string]bool, len(c.Layers))
	for _, l := range c.Layers {
		if l.Name == "" {
			return errors.New(errors.ErrCodeInvalidLayer, "layer name cannot be empty")
		}
		if seen[l.Name] {
			return errors.New(errors.ErrCodeInvalidLayer, "duplicate layer name %q", l.Name)
		}
		seen[l.Name] = true
		for _, tg := range l.Types {
			if tg.Name == "" {
				return errors.New(errors.ErrCodeInvalidLayer, "layer %q has a sub-type with no name", l.Name)
			}
		}
	}
	if c.DrawBackground {
		if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig,
				"canvas_width and canvas_height must be > 0 when draw_background is set (got %dx%d)",
				c.CanvasWidth, c.CanvasHeight)
		}
		if _, err := c.Background(); err != nil {
			return err
		}
	}
	return nil
}

// Background parses the configured background color.
func (c *Config) Background() (color.Color, error) {
	col, err := colorful.Hex(c.BackgroundColor)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidColor, err, "background_color %q", c.BackgroundColor)
	}
	return col, nil
}

// StartEdition returns the first edition number, 1 or 0 per id_from_one.
func (c *Config) StartEdition() int {
	if c.IDFromOne {
		return 1
	}
	return 0
}

// ImagesDir returns the directory for composited token images.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.BuildDir, "images")
}

// JSONDir returns the directory for per-token metadata documents.
func (c *Config) JSONDir() string {
	return filepath.Join(c.BuildDir, "json")
}

// LayerDir returns the asset directory for a layer.
func (c *Config) LayerDir(layer string) string {
	return filepath.Join(c.AssetsDir, layer)
}

// EnsureBuildDirs creates the build output directories if missing.
func (c *Config) EnsureBuildDirs() error {
	for _, dir := range []string{c.BuildDir, c.ImagesDir(), c.JSONDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "creating %s", dir)
		}
	}
	return nil
}
