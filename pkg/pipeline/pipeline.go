// Package pipeline orchestrates a full food-photo analysis: validation,
// quality assessment, strategy selection, preprocessing, classification,
// extraction, nutrition resolution, health scoring and tip generation.
//
// Only input validation and a hard classifier/detection failure propagate
// to the caller. Everything downstream degrades gracefully, and the
// persistence write is detached entirely from the response.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/menta2k/food-analyzer/pkg/classify"
	"github.com/menta2k/food-analyzer/pkg/food"
	"github.com/menta2k/food-analyzer/pkg/imageio"
	"github.com/menta2k/food-analyzer/pkg/nutrition"
	"github.com/menta2k/food-analyzer/pkg/preprocess"
	"github.com/menta2k/food-analyzer/pkg/quality"
	"github.com/menta2k/food-analyzer/pkg/tips"
	"github.com/menta2k/food-analyzer/pkg/types"
)

// recordTimeout bounds the detached persistence write.
const recordTimeout = 10 * time.Second

// Recorder persists one analysis record and returns its meal id.
type Recorder interface {
	RecordAnalysis(ctx context.Context, rec types.AnalysisRecord) (string, error)
}

// Pipeline wires the analysis stages together. All collaborators are
// injected; recorder may be nil to disable persistence.
type Pipeline struct {
	selector   *preprocess.Selector
	classifier classify.Classifier
	resolver   *nutrition.Resolver
	tips       *tips.Generator
	recorder   Recorder
}

// New creates an analysis pipeline.
func New(selector *preprocess.Selector, classifier classify.Classifier,
	resolver *nutrition.Resolver, generator *tips.Generator, recorder Recorder) *Pipeline {
	return &Pipeline{
		selector:   selector,
		classifier: classifier,
		resolver:   resolver,
		tips:       generator,
		recorder:   recorder,
	}
}

// Analyze runs the full pipeline over one encoded image. cuisineType is
// optional and only influences nutrition resolution. Fails only on
// invalid input, a classifier hard failure, or no surviving detection.
func (p *Pipeline) Analyze(ctx context.Context, raw []byte, contentType, cuisineType string) (*types.Analysis, error) {
	if err := imageio.ValidateInput(contentType, len(raw)); err != nil {
		return nil, err
	}
	img, err := imageio.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	a := quality.Assess(img)
	strategy := p.selector.Select(&a.Score)
	log.Printf("quality score %.2f, strategy %s", a.Score, strategy)

	processed, metrics := preprocess.Run(img, raw, strategy)

	start := time.Now()
	predictions, err := p.classifier.Classify(ctx, processed)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}
	latency := time.Since(start).Milliseconds()

	extraction, err := food.Extract(predictions, metrics.QualityScore)
	if err != nil {
		return nil, err
	}
	metrics.Uncertainty = extraction.Uncertainty
	metrics.ConfidenceSpread = extraction.Spread

	var totals types.MealTotals
	items := make([]types.FoodItem, 0, len(extraction.Kept))
	labels := make([]string, 0, len(extraction.Kept))
	for _, pred := range extraction.Kept {
		profile := p.resolver.Resolve(ctx, pred.Label, cuisineType)
		canonical := food.Normalize(pred.Label)
		items = append(items, types.FoodItem{
			Label:      canonical,
			Confidence: math.Round(pred.Score*1000) / 1000,
			Servings:   1.0,
			Nutrition:  profile,
		})
		labels = append(labels, canonical)
		totals.Add(profile)
	}

	score := food.HealthScore(totals, labels)

	result := &types.Analysis{
		TotalCalories: int(math.Round(totals.Calories)),
		HealthScore:   score,
		Items:         items,
		Tips: p.tips.Generate(ctx, tips.Request{
			Foods:       labels,
			Totals:      totals,
			HealthScore: score,
		}),
	}

	if p.recorder != nil {
		rec := types.AnalysisRecord{
			Model:       p.classifier.Model(),
			Predictions: predictions,
			LatencyMS:   latency,
			Metrics:     metrics,
			CuisineType: cuisineType,
			Result:      *result,
		}
		// Fire-and-forget: a storage failure never affects the response,
		// and the write outlives the request context.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			defer cancel()
			mealID, err := p.recorder.RecordAnalysis(ctx, rec)
			if err != nil {
				log.Printf("failed to record analysis: %v", err)
				return
			}
			log.Printf("recorded meal %s", mealID)
		}()
	}

	return result, nil
}
