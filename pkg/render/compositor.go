// Package render composes chosen trait layers into a single token image.
//
// Compositing uses standard source-over alpha blending in strict layer
// order: later layers are drawn on top, so the operation is not commutative.
// Decoded trait assets are memoized for the lifetime of a Compositor since
// the same asset typically recurs across many editions of a run.
package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"artforge/pkg/errors"
	"artforge/pkg/traits"
)

// Options configures the base canvas.
type Options struct {
	// DrawBackground allocates a blank canvas of Width x Height filled
	// with Background. When false, the first drawable layer is the base
	// canvas and the remaining layers are overlays.
	DrawBackground bool
	Width          int
	Height         int
	Background     color.Color
}

// Compositor stacks trait images into one RGBA canvas.
type Compositor struct {
	cache map[string]image.Image
}

// NewCompositor creates a compositor with an empty decode cache.
func NewCompositor() *Compositor {
	return &Compositor{cache: make(map[string]image.Image)}
}

// Compose renders one combination. "No trait" choices are skipped; every
// other layer is decoded and alpha-composited onto the canvas in layer
// order.
func (c *Compositor) Compose(comb traits.Combination, opts Options) (*image.NRGBA, error) {
	drawable := make([]string, 0, len(comb))
	for _, ch := range comb {
		if !ch.Candidate.None() {
			drawable = append(drawable, ch.Candidate.Path)
		}
	}

	var canvas *image.NRGBA
	if opts.DrawBackground {
		canvas = imaging.New(opts.Width, opts.Height, opts.Background)
	} else {
		if len(drawable) == 0 {
			return nil, errors.New(errors.ErrCodeInternal, "no drawable layers and no background to fall back on")
		}
		base, err := c.open(drawable[0])
		if err != nil {
			return nil, err
		}
		canvas = imaging.Clone(base)
		drawable = drawable[1:]
	}

	for _, path := range drawable {
		img, err := c.open(path)
		if err != nil {
			return nil, err
		}
		canvas = imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
	}
	return canvas, nil
}

// open decodes an asset, memoizing the result.
func (c *Compositor) open(path string) (image.Image, error) {
	if img, ok := c.cache[path]; ok {
		return img, nil
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssetUnreadable, err, "decoding %s", path)
	}
	c.cache[path] = img
	return img, nil
}

// SavePNG encodes img to path. The format follows the file extension.
func SavePNG(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "saving %s", path)
	}
	return nil
}
