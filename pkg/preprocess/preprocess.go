// Package preprocess normalizes a food photo for classification.
//
// Every strategy shares the same skeleton: best-effort EXIF orientation
// correction, quality assessment on the unenhanced source, aspect-preserving
// downscale onto a white square canvas, then a strategy-specific enhancement
// pass. The strategies differ only in how hard they push brightness,
// contrast, sharpness and color.
package preprocess

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/menta2k/food-analyzer/pkg/quality"
	"github.com/menta2k/food-analyzer/pkg/types"
)

// TargetSize is the side of the square canvas handed to the classifier.
const TargetSize = 224

// Run preprocesses the image with the given strategy. raw carries the
// original encoded bytes so the EXIF orientation tag can be consulted;
// it may be nil. The returned metrics record the quality assessment and
// every enhancement factor applied.
func Run(src image.Image, raw []byte, strategy types.Strategy) (*image.NRGBA, types.QualityMetrics) {
	if !strategy.Valid() {
		strategy = types.StrategyAdaptive
	}
	metrics := types.QualityMetrics{Strategy: strategy}

	oriented, corrected := correctOrientation(src, raw)
	metrics.EXIFCorrected = corrected

	// Quality is always assessed on the source prior to enhancement so the
	// score is comparable across strategies.
	a := quality.Assess(oriented)
	metrics.Brightness = a.Brightness
	metrics.Variance = a.Variance
	metrics.QualityScore = a.Score

	var out *image.NRGBA
	switch strategy {
	case types.StrategyMinimal:
		out = runMinimal(oriented, &metrics)
	case types.StrategyAggressive:
		out = runAggressive(oriented, a, &metrics)
	default:
		out = runAdaptive(oriented, a, &metrics)
	}
	return out, metrics
}

// runMinimal applies light enhancement for photos that are already good.
func runMinimal(img image.Image, metrics *types.QualityMetrics) *image.NRGBA {
	out := fitToCanvas(img)

	out = enhanceContrast(out, 1.05)
	metrics.ContrastFactor = 1.05

	out = enhanceSharpness(out, 1.05)
	metrics.SharpnessFactor = 1.05

	return out
}

// runAdaptive scales the enhancement with the measured quality deficit.
func runAdaptive(img image.Image, a quality.Assessment, metrics *types.QualityMetrics) *image.NRGBA {
	var factor float64
	switch {
	case a.Brightness < 80:
		factor = 1.3
		metrics.LightingAdjusted = "brightened"
	case a.Brightness > 180:
		factor = 0.8
		metrics.LightingAdjusted = "darkened"
	default:
		factor = 1.0
		metrics.LightingAdjusted = "none"
	}
	if factor != 1.0 {
		img = enhanceBrightness(img, factor)
		metrics.BrightnessFactor = factor
	}

	out := fitToCanvas(img)

	contrast := 1.1 + 0.2*(1-a.Score)
	out = enhanceContrast(out, contrast)
	metrics.ContrastFactor = contrast

	sharpness := 1.1 + 0.15*(1-a.Score)
	out = enhanceSharpness(out, sharpness)
	metrics.SharpnessFactor = sharpness

	return out
}

// runAggressive pushes strong fixed enhancement for difficult photos.
func runAggressive(img image.Image, a quality.Assessment, metrics *types.QualityMetrics) *image.NRGBA {
	var factor float64
	switch {
	case a.Brightness < 100:
		factor = 1.5
	case a.Brightness > 160:
		factor = 0.7
	default:
		factor = 1.1
	}
	metrics.BrightnessFactor = factor
	img = enhanceBrightness(img, factor)

	out := fitToCanvas(img)

	out = enhanceContrast(out, 1.4)
	metrics.ContrastFactor = 1.4

	out = enhanceSharpness(out, 1.3)
	metrics.SharpnessFactor = 1.3

	out = enhanceColor(out, 1.2)
	metrics.ColorFactor = 1.2

	return out
}

// fitToCanvas downscales so the longer edge fits within twice the target
// size, then centers the result on a white TargetSize square.
func fitToCanvas(img image.Image) *image.NRGBA {
	thumb := imaging.Fit(img, TargetSize*2, TargetSize*2, imaging.Lanczos)
	canvas := imaging.New(TargetSize, TargetSize, color.NRGBA{255, 255, 255, 255})
	return imaging.PasteCenter(canvas, thumb)
}
