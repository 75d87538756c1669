package preprocess

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Factor-based enhancement primitives. A factor of 1.0 is always the
// identity; values above 1.0 strengthen the effect, values below weaken it.

func clampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// luminance returns the ITU-R 601 luma for an 8-bit RGB triple.
func luminance(r, g, b uint8) float64 {
	return (299*float64(r) + 587*float64(g) + 114*float64(b)) / 1000
}

// enhanceBrightness scales every channel by factor.
func enhanceBrightness(img image.Image, factor float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: clampU8(float64(c.R) * factor),
			G: clampU8(float64(c.G) * factor),
			B: clampU8(float64(c.B) * factor),
			A: c.A,
		}
	})
}

// enhanceContrast interpolates each pixel between the image's mean gray
// level and its original value.
func enhanceContrast(img image.Image, factor float64) *image.NRGBA {
	mean := grayMean(img)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: clampU8(mean + factor*(float64(c.R)-mean)),
			G: clampU8(mean + factor*(float64(c.G)-mean)),
			B: clampU8(mean + factor*(float64(c.B)-mean)),
			A: c.A,
		}
	})
}

// enhanceColor interpolates each pixel between its grayscale value and its
// original value, boosting or muting saturation.
func enhanceColor(img image.Image, factor float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		gray := luminance(c.R, c.G, c.B)
		return color.NRGBA{
			R: clampU8(gray + factor*(float64(c.R)-gray)),
			G: clampU8(gray + factor*(float64(c.G)-gray)),
			B: clampU8(gray + factor*(float64(c.B)-gray)),
			A: c.A,
		}
	})
}

// enhanceSharpness extrapolates each pixel away from a lightly blurred copy.
// Factor 1.0 returns the original, factors above 1.0 sharpen.
func enhanceSharpness(img image.Image, factor float64) *image.NRGBA {
	src := imaging.Clone(img)
	if factor == 1.0 {
		return src
	}
	blurred := imaging.Blur(src, 1.0)

	out := imaging.Clone(src)
	for i := 0; i < len(out.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			b := float64(blurred.Pix[i+c])
			o := float64(src.Pix[i+c])
			out.Pix[i+c] = clampU8(b + factor*(o-b))
		}
	}
	return out
}

// grayMean computes the mean luminance across the image.
func grayMean(img image.Image) float64 {
	bounds := img.Bounds()
	n := float64(bounds.Dx() * bounds.Dy())
	if n == 0 {
		return 0
	}
	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			sum += luminance(uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}
	return sum / n
}
