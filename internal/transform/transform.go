// Package transform applies the fixed post-decode pipeline: resize, then
// brightness, then rotation, then enhance.
package transform

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Options for one image. Rotation is the raw flag value: empty, "auto", or a
// degree literal.
type Options struct {
	Ratio      float64
	Brightness Brightness
	Rotation   string
	Enhance    bool
}

// Apply runs the full pipeline. original carries the untouched input file
// bytes; rotation "auto" reads the EXIF orientation from them, not from the
// decoded image.
func Apply(img image.Image, opts Options, original []byte) image.Image {
	img = Resize(img, opts.Ratio)
	img = ApplyBrightness(img, opts.Brightness)
	img = ApplyRotation(img, opts.Rotation, original)
	if opts.Enhance {
		img = Enhance(img)
	}
	return img
}

// Resize scales both axes by √ratio with a Lanczos filter. Dimensions are
// rounded and floored at 1 so a tiny ratio still yields a valid image.
func Resize(img image.Image, ratio float64) image.Image {
	scale := math.Sqrt(ratio)
	b := img.Bounds()
	w := scaledDim(b.Dx(), scale)
	h := scaledDim(b.Dy(), scale)
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

func scaledDim(d int, scale float64) int {
	n := int(math.Round(float64(d) * scale))
	if n < 1 {
		return 1
	}
	return n
}

// ApplyBrightness multiplies R, G, B by the factor with clamping; alpha is
// untouched. None and Auto leave pixels alone: Auto only steers the
// decoder's internal exposure, never a post-hoc multiply.
func ApplyBrightness(img image.Image, b Brightness) image.Image {
	if b.Mode != BrightnessFactor {
		return img
	}
	f := b.Factor
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.R = clampChannel(float64(c.R) * f)
		c.G = clampChannel(float64(c.G) * f)
		c.B = clampChannel(float64(c.B) * f)
		return c
	})
}

func clampChannel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// enhanceFactor and enhanceSigma are the fixed enhance parameters.
const (
	enhanceFactor = 1.05
	enhanceSigma  = 1.0
)

// Enhance brightens slightly and applies a mild sharpening pass. Runs last.
func Enhance(img image.Image) image.Image {
	img = ApplyBrightness(img, Brightness{Mode: BrightnessFactor, Factor: enhanceFactor})
	return imaging.Sharpen(img, enhanceSigma)
}
