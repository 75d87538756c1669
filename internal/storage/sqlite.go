package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/menta2k/food-analyzer/pkg/types"
)

// SQLiteStorage persists nutrition facts, analysis records and user
// feedback. It backs both the nutrition resolver (read path) and the
// pipeline recorder (write path).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (or creates) the database at dbPath and
// initializes the schema.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS nutrition_facts (
        canonical TEXT PRIMARY KEY,
        calories INTEGER NOT NULL,
        protein_g REAL NOT NULL,
        carbs_g REAL NOT NULL,
        fat_g REAL NOT NULL,
        fiber_g REAL NOT NULL,
        sat_fat_g REAL NOT NULL,
        added_sugar_g REAL NOT NULL
    );

    CREATE TABLE IF NOT EXISTS regional_cuisine_mappings (
        cuisine_type TEXT NOT NULL,
        label TEXT NOT NULL,
        canonical TEXT NOT NULL,
        PRIMARY KEY (cuisine_type, label)
    );

    CREATE TABLE IF NOT EXISTS meals (
        id TEXT PRIMARY KEY,
        total_calories INTEGER NOT NULL,
        health_score INTEGER NOT NULL,
        cuisine_type TEXT NOT NULL,
        tips_json TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS meal_items (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        meal_id TEXT NOT NULL,
        label TEXT NOT NULL,
        confidence REAL NOT NULL,
        servings REAL NOT NULL,
        calories INTEGER NOT NULL,
        protein_g REAL NOT NULL,
        carbs_g REAL NOT NULL,
        fat_g REAL NOT NULL,
        fiber_g REAL NOT NULL,
        sat_fat_g REAL NOT NULL,
        added_sugar_g REAL NOT NULL,
        FOREIGN KEY (meal_id) REFERENCES meals(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS inferences (
        id TEXT PRIMARY KEY,
        meal_id TEXT NOT NULL,
        model TEXT NOT NULL,
        labels_json TEXT NOT NULL,
        latency_ms INTEGER NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS preprocessing_experiments (
        id TEXT PRIMARY KEY,
        meal_id TEXT NOT NULL,
        strategy TEXT NOT NULL,
        brightness REAL NOT NULL,
        variance REAL NOT NULL,
        quality_score REAL NOT NULL,
        exif_corrected INTEGER NOT NULL,
        lighting_adjusted TEXT NOT NULL,
        uncertainty TEXT NOT NULL,
        confidence_spread REAL NOT NULL,
        accuracy_rating INTEGER,
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS user_feedback (
        id TEXT PRIMARY KEY,
        meal_id TEXT NOT NULL,
        rating INTEGER NOT NULL,
        accuracy_rating INTEGER NOT NULL,
        corrected_items_json TEXT NOT NULL,
        missing_items_json TEXT NOT NULL,
        incorrect_items_json TEXT NOT NULL,
        cuisine_type TEXT NOT NULL,
        quality_issue INTEGER NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_meal_items_meal_id ON meal_items(meal_id);
    CREATE INDEX IF NOT EXISTS idx_inferences_meal_id ON inferences(meal_id);
    CREATE INDEX IF NOT EXISTS idx_experiments_meal_id ON preprocessing_experiments(meal_id);
    CREATE INDEX IF NOT EXISTS idx_feedback_meal_id ON user_feedback(meal_id);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Lookup implements nutrition.Store. The second return is false when
// the canonical label has no stored facts.
func (s *SQLiteStorage) Lookup(ctx context.Context, canonical string) (types.NutritionProfile, bool, error) {
	query := `
        SELECT calories, protein_g, carbs_g, fat_g, fiber_g, sat_fat_g, added_sugar_g
        FROM nutrition_facts
        WHERE canonical = ?
    `

	var p types.NutritionProfile
	err := s.db.QueryRowContext(ctx, query, canonical).Scan(
		&p.Calories, &p.ProteinG, &p.CarbsG, &p.FatG,
		&p.FiberG, &p.SatFatG, &p.AddedSugarG)
	if err == sql.ErrNoRows {
		return types.NutritionProfile{}, false, nil
	}
	if err != nil {
		return types.NutritionProfile{}, false, fmt.Errorf("failed to query nutrition facts: %w", err)
	}

	return p, true, nil
}

// CuisineCanonical implements nutrition.Store: it re-canonicalizes a
// label through the regional mapping table for the given cuisine.
func (s *SQLiteStorage) CuisineCanonical(ctx context.Context, cuisineType, label string) (string, bool, error) {
	query := `
        SELECT canonical
        FROM regional_cuisine_mappings
        WHERE cuisine_type = ? AND label = ?
    `

	var canonical string
	err := s.db.QueryRowContext(ctx, query, strings.ToLower(cuisineType), label).Scan(&canonical)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query cuisine mapping: %w", err)
	}

	return canonical, true, nil
}

// SaveNutritionFact inserts or replaces the stored facts for a
// canonical label. Used by seeding and by feedback-driven corrections.
func (s *SQLiteStorage) SaveNutritionFact(ctx context.Context, canonical string, p types.NutritionProfile) error {
	query := `
        INSERT OR REPLACE INTO nutrition_facts
            (canonical, calories, protein_g, carbs_g, fat_g, fiber_g, sat_fat_g, added_sugar_g)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err := s.db.ExecContext(ctx, query, canonical,
		p.Calories, p.ProteinG, p.CarbsG, p.FatG, p.FiberG, p.SatFatG, p.AddedSugarG)
	if err != nil {
		return fmt.Errorf("failed to save nutrition fact: %w", err)
	}
	return nil
}

// SaveCuisineMapping inserts or replaces a regional label mapping.
func (s *SQLiteStorage) SaveCuisineMapping(ctx context.Context, cuisineType, label, canonical string) error {
	query := `
        INSERT OR REPLACE INTO regional_cuisine_mappings (cuisine_type, label, canonical)
        VALUES (?, ?, ?)
    `

	_, err := s.db.ExecContext(ctx, query, strings.ToLower(cuisineType), label, canonical)
	if err != nil {
		return fmt.Errorf("failed to save cuisine mapping: %w", err)
	}
	return nil
}

// KnownFoods returns every canonical label with stored nutrition facts.
func (s *SQLiteStorage) KnownFoods(ctx context.Context) (map[string]types.NutritionProfile, error) {
	query := `
        SELECT canonical, calories, protein_g, carbs_g, fat_g, fiber_g, sat_fat_g, added_sugar_g
        FROM nutrition_facts
        ORDER BY canonical
    `

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query nutrition facts: %w", err)
	}
	defer rows.Close()

	foods := make(map[string]types.NutritionProfile)
	for rows.Next() {
		var canonical string
		var p types.NutritionProfile
		if err := rows.Scan(&canonical, &p.Calories, &p.ProteinG, &p.CarbsG,
			&p.FatG, &p.FiberG, &p.SatFatG, &p.AddedSugarG); err != nil {
			return nil, fmt.Errorf("failed to scan nutrition fact: %w", err)
		}
		foods[canonical] = p
	}

	return foods, rows.Err()
}

// RecordAnalysis implements pipeline.Recorder: one transaction writes
// the meal, its items, the inference record and the preprocessing
// experiment. Returns the new meal id.
func (s *SQLiteStorage) RecordAnalysis(ctx context.Context, rec types.AnalysisRecord) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	mealID := uuid.New().String()
	now := time.Now().UTC()

	tipsJSON, err := json.Marshal(rec.Result.Tips)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tips: %w", err)
	}

	mealQuery := `
        INSERT INTO meals (id, total_calories, health_score, cuisine_type, tips_json, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err = tx.ExecContext(ctx, mealQuery,
		mealID, rec.Result.TotalCalories, rec.Result.HealthScore,
		rec.CuisineType, string(tipsJSON), now)
	if err != nil {
		return "", fmt.Errorf("failed to insert meal: %w", err)
	}

	itemQuery := `
        INSERT INTO meal_items
            (meal_id, label, confidence, servings, calories, protein_g, carbs_g, fat_g, fiber_g, sat_fat_g, added_sugar_g)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	for _, item := range rec.Result.Items {
		_, err = tx.ExecContext(ctx, itemQuery,
			mealID, item.Label, item.Confidence, item.Servings,
			item.Nutrition.Calories, item.Nutrition.ProteinG, item.Nutrition.CarbsG,
			item.Nutrition.FatG, item.Nutrition.FiberG, item.Nutrition.SatFatG,
			item.Nutrition.AddedSugarG)
		if err != nil {
			return "", fmt.Errorf("failed to insert meal item: %w", err)
		}
	}

	labelsJSON, err := json.Marshal(rec.Predictions)
	if err != nil {
		return "", fmt.Errorf("failed to marshal predictions: %w", err)
	}

	inferenceQuery := `
        INSERT INTO inferences (id, meal_id, model, labels_json, latency_ms, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err = tx.ExecContext(ctx, inferenceQuery,
		uuid.New().String(), mealID, rec.Model, string(labelsJSON), rec.LatencyMS, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert inference: %w", err)
	}

	experimentQuery := `
        INSERT INTO preprocessing_experiments
            (id, meal_id, strategy, brightness, variance, quality_score, exif_corrected,
             lighting_adjusted, uncertainty, confidence_spread, accuracy_rating, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)
    `
	m := rec.Metrics
	_, err = tx.ExecContext(ctx, experimentQuery,
		uuid.New().String(), mealID, string(m.Strategy), m.Brightness, m.Variance,
		m.QualityScore, m.EXIFCorrected, m.LightingAdjusted, m.Uncertainty,
		m.ConfidenceSpread, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert preprocessing experiment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit analysis record: %w", err)
	}
	return mealID, nil
}

// Feedback is a user's assessment of one analyzed meal. AccuracyRating is
// optional; zero means the user did not rate detection accuracy.
type Feedback struct {
	MealID         string   `json:"meal_id"`
	Rating         int      `json:"rating"`
	AccuracyRating int      `json:"accuracy_rating,omitempty"`
	CorrectedItems []string `json:"corrected_items"`
	MissingItems   []string `json:"missing_items"`
	IncorrectItems []string `json:"incorrect_items"`
	CuisineType    string   `json:"cuisine_type"`
	QualityIssue   bool     `json:"quality_issue"`
}

// SaveFeedback validates and stores feedback. When an accuracy rating is
// given it is also propagated onto the meal's preprocessing experiment so
// strategy performance can be compared later.
func (s *SQLiteStorage) SaveFeedback(ctx context.Context, fb Feedback) (string, error) {
	if fb.MealID == "" {
		return "", fmt.Errorf("meal id cannot be empty")
	}
	if fb.Rating < 1 || fb.Rating > 5 {
		return "", fmt.Errorf("rating must be between 1 and 5, got %d", fb.Rating)
	}
	if fb.AccuracyRating != 0 && (fb.AccuracyRating < 1 || fb.AccuracyRating > 5) {
		return "", fmt.Errorf("accuracy rating must be between 1 and 5, got %d", fb.AccuracyRating)
	}

	corrected, err := json.Marshal(emptyIfNil(fb.CorrectedItems))
	if err != nil {
		return "", fmt.Errorf("failed to marshal corrected items: %w", err)
	}
	missing, err := json.Marshal(emptyIfNil(fb.MissingItems))
	if err != nil {
		return "", fmt.Errorf("failed to marshal missing items: %w", err)
	}
	incorrect, err := json.Marshal(emptyIfNil(fb.IncorrectItems))
	if err != nil {
		return "", fmt.Errorf("failed to marshal incorrect items: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.New().String()
	query := `
        INSERT INTO user_feedback
            (id, meal_id, rating, accuracy_rating, corrected_items_json,
             missing_items_json, incorrect_items_json, cuisine_type, quality_issue, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = tx.ExecContext(ctx, query,
		id, fb.MealID, fb.Rating, fb.AccuracyRating,
		string(corrected), string(missing), string(incorrect),
		strings.ToLower(fb.CuisineType), fb.QualityIssue, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert feedback: %w", err)
	}

	if fb.AccuracyRating != 0 {
		update := `
            UPDATE preprocessing_experiments
            SET accuracy_rating = ?
            WHERE meal_id = ?
        `
		if _, err := tx.ExecContext(ctx, update, fb.AccuracyRating, fb.MealID); err != nil {
			return "", fmt.Errorf("failed to update experiment rating: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit feedback: %w", err)
	}
	return id, nil
}

// ItemCount pairs a reported item with how often it was reported.
type ItemCount struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// FeedbackStats aggregates all stored feedback.
type FeedbackStats struct {
	Count               int            `json:"count"`
	AvgRating           float64        `json:"avg_rating"`
	AvgAccuracy         float64        `json:"avg_accuracy"`
	QualityIssueCount   int            `json:"quality_issue_count"`
	TopMissingItems     []ItemCount    `json:"top_missing_items"`
	CuisineDistribution map[string]int `json:"cuisine_distribution"`
}

// FeedbackStats aggregates ratings, quality-issue counts, the most
// frequently reported missing items and the cuisine distribution.
func (s *SQLiteStorage) FeedbackStats(ctx context.Context) (*FeedbackStats, error) {
	stats := &FeedbackStats{CuisineDistribution: make(map[string]int)}

	// Accuracy is optional; average only rows where the user rated it.
	summary := `
        SELECT COUNT(*),
               COALESCE(AVG(rating), 0),
               COALESCE(AVG(CASE WHEN accuracy_rating > 0 THEN accuracy_rating END), 0),
               COALESCE(SUM(quality_issue), 0)
        FROM user_feedback
    `
	err := s.db.QueryRowContext(ctx, summary).Scan(
		&stats.Count, &stats.AvgRating, &stats.AvgAccuracy, &stats.QualityIssueCount)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate feedback: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT missing_items_json, cuisine_type FROM user_feedback`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback rows: %w", err)
	}
	defer rows.Close()

	missingCounts := make(map[string]int)
	for rows.Next() {
		var missingJSON, cuisine string
		if err := rows.Scan(&missingJSON, &cuisine); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}

		var missing []string
		if err := json.Unmarshal([]byte(missingJSON), &missing); err == nil {
			for _, item := range missing {
				missingCounts[item]++
			}
		}
		if cuisine != "" {
			stats.CuisineDistribution[cuisine]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback rows: %w", err)
	}

	stats.TopMissingItems = topItems(missingCounts, 5)
	return stats, nil
}

func topItems(counts map[string]int, limit int) []ItemCount {
	items := make([]ItemCount, 0, len(counts))
	for item, count := range counts {
		items = append(items, ItemCount{Item: item, Count: count})
	}
	// Highest count first; ties broken alphabetically for stable output.
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Item < items[j].Item
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
