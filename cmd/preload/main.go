// Command preload warms the hosted classifier so the first real request
// does not pay the model cold-start penalty. It sends a generated noise
// image and relies on the classifier's built-in fallback model; if both
// models fail to answer, it exits nonzero.
package main

import (
	"context"
	"image"
	"image/color"
	"log"
	"math/rand"
	"time"

	"github.com/menta2k/food-analyzer/internal/config"
	"github.com/menta2k/food-analyzer/pkg/classify"
	"github.com/menta2k/food-analyzer/pkg/preprocess"
)

func main() {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	classifier := classify.NewHuggingFace(cfg.ModelID, cfg.HFAPIKey)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log.Printf("warming %s", cfg.ModelID)
	start := time.Now()
	predictions, err := classifier.Classify(ctx, noiseImage())
	if err != nil {
		log.Fatalf("Model warm-up failed: %v", err)
	}
	log.Printf("model ready in %s (%d predictions)", time.Since(start).Round(time.Millisecond), len(predictions))
}

// noiseImage builds a classifier-sized random image. Content is
// irrelevant; the request only needs to force the model to load.
func noiseImage() image.Image {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	img := image.NewNRGBA(image.Rect(0, 0, preprocess.TargetSize, preprocess.TargetSize))
	for y := 0; y < preprocess.TargetSize; y++ {
		for x := 0; x < preprocess.TargetSize; x++ {
			img.Set(x, y, color.NRGBA{
				uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255,
			})
		}
	}
	return img
}
