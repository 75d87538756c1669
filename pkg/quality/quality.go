// Package quality scores the photometric quality of a food photo.
//
// The score combines how centered the mean brightness is (ideal around 130)
// with how much per-channel variance the image carries. It feeds both the
// preprocessing strategy selection and the dynamic confidence thresholds
// applied to classifier output.
package quality

import (
	"image"
	"math"
)

// Assessment holds the photometric statistics for one image.
type Assessment struct {
	// Brightness is the average of the per-channel means, 0-255.
	Brightness float64
	// Variance is the average of the per-channel standard deviations.
	Variance float64
	// BrightnessQuality is 1 - min(|brightness-130|/130, 1).
	BrightnessQuality float64
	// VarianceQuality is min(variance/50, 1).
	VarianceQuality float64
	// Score is the mean of the two quality components, in [0,1].
	Score float64
}

// Assess computes the quality assessment for an image. Pure function: it
// never modifies the image and has no failure modes.
func Assess(img image.Image) Assessment {
	bounds := img.Bounds()
	n := float64(bounds.Dx() * bounds.Dy())
	if n == 0 {
		return Assessment{}
	}

	var sum, sumSq [3]float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			ch := [3]float64{float64(r >> 8), float64(g >> 8), float64(b >> 8)}
			for i, v := range ch {
				sum[i] += v
				sumSq[i] += v * v
			}
		}
	}

	var meanSum, stdSum float64
	for i := 0; i < 3; i++ {
		mean := sum[i] / n
		meanSum += mean
		variance := sumSq[i]/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		stdSum += math.Sqrt(variance)
	}

	a := Assessment{
		Brightness: meanSum / 3,
		Variance:   stdSum / 3,
	}
	a.BrightnessQuality = 1 - math.Min(math.Abs(a.Brightness-130)/130, 1)
	a.VarianceQuality = math.Min(a.Variance/50, 1)
	a.Score = (a.BrightnessQuality + a.VarianceQuality) / 2
	return a
}
