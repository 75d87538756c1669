package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/menta2k/food-analyzer/internal/config"
	"github.com/menta2k/food-analyzer/internal/storage"
	"github.com/menta2k/food-analyzer/pkg/classify"
	"github.com/menta2k/food-analyzer/pkg/imageio"
	"github.com/menta2k/food-analyzer/pkg/nutrition"
	"github.com/menta2k/food-analyzer/pkg/pipeline"
	"github.com/menta2k/food-analyzer/pkg/preprocess"
	"github.com/menta2k/food-analyzer/pkg/tips"
)

func main() {
	var in, cuisine, strategy, dbPath string
	var knownFoods, stats bool
	var feedbackMeal, missing, incorrect, corrected string
	var rating, accuracy int
	var qualityIssue bool

	flag.StringVar(&in, "in", "", "input image path or URL (jpg/png/webp)")
	flag.StringVar(&cuisine, "cuisine", "", "optional cuisine type for regional label mapping")
	flag.StringVar(&strategy, "strategy", "", "preprocessing override: minimal|adaptive|aggressive")
	flag.StringVar(&dbPath, "db", "", "sqlite database path (overrides DB_PATH)")

	flag.BoolVar(&knownFoods, "known-foods", false, "list foods with nutrition facts and exit")
	flag.BoolVar(&stats, "stats", false, "print aggregated feedback stats and exit")

	flag.StringVar(&feedbackMeal, "feedback", "", "meal id to submit feedback for")
	flag.IntVar(&rating, "rating", 0, "feedback: overall rating 1-5")
	flag.IntVar(&accuracy, "accuracy", 0, "feedback: detection accuracy rating 1-5")
	flag.StringVar(&missing, "missing", "", "feedback: comma-separated missing items")
	flag.StringVar(&incorrect, "incorrect", "", "feedback: comma-separated incorrect items")
	flag.StringVar(&corrected, "corrected", "", "feedback: comma-separated corrected items")
	flag.BoolVar(&qualityIssue, "quality-issue", false, "feedback: flag a photo quality problem")

	flag.Parse()

	cfg := config.FromEnv()
	if strategy != "" {
		cfg.StrategyOverride = strategy
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	var store *storage.SQLiteStorage
	if cfg.DBPath != "" {
		var err error
		store, err = storage.NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open storage: %v", err)
		}
		defer store.Close()
	}

	ctx := context.Background()

	switch {
	case knownFoods:
		runKnownFoods(ctx, store)
		return
	case stats:
		runStats(ctx, store)
		return
	case feedbackMeal != "":
		runFeedback(ctx, store, storage.Feedback{
			MealID:         feedbackMeal,
			Rating:         rating,
			AccuracyRating: accuracy,
			MissingItems:   splitList(missing),
			IncorrectItems: splitList(incorrect),
			CorrectedItems: splitList(corrected),
			CuisineType:    cuisine,
			QualityIssue:   qualityIssue,
		})
		return
	}

	if in == "" {
		log.Fatalf("usage: %s -in photo.jpg|URL [-cuisine italian] [-strategy minimal|adaptive|aggressive] [-db foods.db]", filepath.Base(os.Args[0]))
	}

	p := buildPipeline(cfg, store)

	raw, contentType, err := imageio.ReadSource(in)
	if err != nil {
		log.Fatal(err)
	}

	analysis, err := p.Analyze(ctx, raw, contentType, cuisine)
	if err != nil {
		log.Fatal(err)
	}

	printJSON(analysis)
}

func buildPipeline(cfg *config.Config, store *storage.SQLiteStorage) *pipeline.Pipeline {
	var classifier classify.Classifier
	switch cfg.ClassifierBackend {
	case "ollama":
		c, err := classify.NewOllama(cfg.OllamaURL, cfg.OllamaModel)
		if err != nil {
			log.Fatalf("Failed to create ollama classifier: %v", err)
		}
		classifier = c
	default:
		classifier = classify.NewHuggingFace(cfg.ModelID, cfg.HFAPIKey)
	}

	var provider tips.Provider
	switch cfg.TipProvider {
	case "openai":
		provider = tips.NewOpenAI(cfg.OpenAIAPIKey)
	case "anthropic":
		provider = tips.NewAnthropic(cfg.AnthropicAPIKey)
	default:
		provider = tips.NewHuggingFace(cfg.HFAPIKey)
	}

	// Store may be absent; both collaborators treat that as "no store".
	var nutritionStore nutrition.Store
	var recorder pipeline.Recorder
	if store != nil {
		nutritionStore = store
		recorder = store
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return pipeline.New(
		preprocess.NewSelector(cfg.StrategyOverride, cfg.ABTesting, rng),
		classifier,
		nutrition.NewResolver(nutritionStore),
		tips.NewGenerator(provider, cfg.AITips),
		recorder,
	)
}

func runKnownFoods(ctx context.Context, store *storage.SQLiteStorage) {
	if store == nil {
		printJSON(nutrition.KnownFoods())
		return
	}
	foods, err := store.KnownFoods(ctx)
	if err != nil {
		log.Fatalf("Failed to list foods: %v", err)
	}
	if len(foods) == 0 {
		foods = nutrition.KnownFoods()
	}
	printJSON(foods)
}

func runStats(ctx context.Context, store *storage.SQLiteStorage) {
	if store == nil {
		log.Fatal("Feedback stats require a database (-db or DB_PATH)")
	}
	feedbackStats, err := store.FeedbackStats(ctx)
	if err != nil {
		log.Fatalf("Failed to aggregate feedback: %v", err)
	}
	printJSON(feedbackStats)
}

func runFeedback(ctx context.Context, store *storage.SQLiteStorage, fb storage.Feedback) {
	if store == nil {
		log.Fatal("Feedback requires a database (-db or DB_PATH)")
	}
	id, err := store.SaveFeedback(ctx, fb)
	if err != nil {
		log.Fatalf("Failed to save feedback: %v", err)
	}
	log.Printf("saved feedback %s for meal %s", id, fb.MealID)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func printJSON(v any) {
	js, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal output: %v", err)
	}
	os.Stdout.Write(append(js, '\n'))
}
