package types

// Strategy names a preprocessing policy.
type Strategy string

const (
	StrategyMinimal    Strategy = "minimal"
	StrategyAdaptive   Strategy = "adaptive"
	StrategyAggressive Strategy = "aggressive"
)

// Valid reports whether s is a recognized strategy name.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyMinimal, StrategyAdaptive, StrategyAggressive:
		return true
	}
	return false
}

// Prediction is a single ranked classifier output. Classifier backends
// return predictions ordered descending by score; nothing downstream
// re-sorts them.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NutritionProfile holds the macro-nutrient values for one serving of a food.
type NutritionProfile struct {
	Calories    int     `json:"calories"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatG        float64 `json:"fat_g"`
	FiberG      float64 `json:"fiber_g"`
	SatFatG     float64 `json:"sat_fat_g"`
	AddedSugarG float64 `json:"added_sugar_g"`
}

// MealTotals accumulates nutrition profiles across every detected item.
type MealTotals struct {
	Calories    float64 `json:"calories"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatG        float64 `json:"fat_g"`
	FiberG      float64 `json:"fiber_g"`
	SatFatG     float64 `json:"sat_fat_g"`
	AddedSugarG float64 `json:"added_sugar_g"`
}

// Add accumulates a single profile into the totals.
func (t *MealTotals) Add(p NutritionProfile) {
	t.Calories += float64(p.Calories)
	t.ProteinG += p.ProteinG
	t.CarbsG += p.CarbsG
	t.FatG += p.FatG
	t.FiberG += p.FiberG
	t.SatFatG += p.SatFatG
	t.AddedSugarG += p.AddedSugarG
}

// FoodItem is a detected food with its canonical label, rounded confidence
// and resolved nutrition profile.
type FoodItem struct {
	Label      string           `json:"label"`
	Confidence float64          `json:"confidence"`
	Servings   float64          `json:"servings"`
	Nutrition  NutritionProfile `json:"nutrition"`
}

// QualityMetrics records the quality assessment of the source image and
// every enhancement factor the chosen preprocessing strategy applied.
// Immutable once the preprocessing pass has produced it.
type QualityMetrics struct {
	Strategy      Strategy `json:"strategy"`
	EXIFCorrected bool     `json:"exif_corrected"`
	Brightness    float64  `json:"brightness"`
	Variance      float64  `json:"variance"`
	QualityScore  float64  `json:"quality_score"`

	BrightnessFactor float64 `json:"brightness_factor,omitempty"`
	ContrastFactor   float64 `json:"contrast_factor,omitempty"`
	SharpnessFactor  float64 `json:"sharpness_factor,omitempty"`
	ColorFactor      float64 `json:"color_factor,omitempty"`
	LightingAdjusted string  `json:"lighting_adjusted,omitempty"`

	// Filled in after extraction when at least two predictions survive.
	Uncertainty      string  `json:"uncertainty,omitempty"`
	ConfidenceSpread float64 `json:"confidence_spread,omitempty"`
}

// Analysis is the assembled result for one food photo.
type Analysis struct {
	TotalCalories int        `json:"total_calories"`
	HealthScore   int        `json:"health_score"`
	Items         []FoodItem `json:"items"`
	Tips          []string   `json:"tips"`
}

// AnalysisRecord carries everything worth persisting about one analysis.
// Built after the response is assembled; written fire-and-forget so a
// storage failure can never affect the returned result.
type AnalysisRecord struct {
	Model       string
	Predictions []Prediction
	LatencyMS   int64
	Metrics     QualityMetrics
	CuisineType string
	Result      Analysis
}
