package quality

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// createUniformImage creates an image filled with a single gray level
func createUniformImage(width, height int, level uint8) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{level, level, level, 255})
		}
	}
	return img
}

// createCheckerImage alternates between black and white pixels for high variance
func createCheckerImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}
	return img
}

func TestAssessUniformIdealBrightness(t *testing.T) {
	a := Assess(createUniformImage(64, 64, 130))

	if math.Abs(a.Brightness-130) > 0.5 {
		t.Errorf("Expected brightness ~130, got %f", a.Brightness)
	}
	if a.Variance > 0.01 {
		t.Errorf("Expected zero variance for uniform image, got %f", a.Variance)
	}
	if math.Abs(a.BrightnessQuality-1.0) > 0.01 {
		t.Errorf("Expected brightness quality ~1.0, got %f", a.BrightnessQuality)
	}
	if a.VarianceQuality > 0.01 {
		t.Errorf("Expected variance quality ~0, got %f", a.VarianceQuality)
	}
	// (1.0 + 0.0) / 2
	if math.Abs(a.Score-0.5) > 0.01 {
		t.Errorf("Expected score ~0.5, got %f", a.Score)
	}
}

func TestAssessBlackImage(t *testing.T) {
	a := Assess(createUniformImage(32, 32, 0))

	if a.BrightnessQuality > 0.01 {
		t.Errorf("Expected brightness quality ~0 for black image, got %f", a.BrightnessQuality)
	}
	if a.Score > 0.01 {
		t.Errorf("Expected score ~0 for black image, got %f", a.Score)
	}
}

func TestAssessHighVariance(t *testing.T) {
	a := Assess(createCheckerImage(64, 64))

	// Checkerboard std-dev is 127.5 per channel, well over the 50 cap.
	if a.VarianceQuality != 1.0 {
		t.Errorf("Expected variance quality capped at 1.0, got %f", a.VarianceQuality)
	}
	// Mean brightness is 127.5, close to the 130 ideal.
	if a.BrightnessQuality < 0.95 {
		t.Errorf("Expected high brightness quality, got %f", a.BrightnessQuality)
	}
	if a.Score < 0.95 {
		t.Errorf("Expected near-perfect score, got %f", a.Score)
	}
}

func TestAssessScoreRange(t *testing.T) {
	levels := []uint8{0, 40, 80, 130, 180, 220, 255}
	for _, level := range levels {
		a := Assess(createUniformImage(16, 16, level))
		if a.Score < 0 || a.Score > 1 {
			t.Errorf("Score out of [0,1] for level %d: %f", level, a.Score)
		}
	}
}

func TestAssessEmptyImage(t *testing.T) {
	a := Assess(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	if a.Score != 0 {
		t.Errorf("Expected zero score for empty image, got %f", a.Score)
	}
}

func BenchmarkAssess(b *testing.B) {
	img := createCheckerImage(1024, 768)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Assess(img)
	}
}
