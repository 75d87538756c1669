package food

import (
	"math"

	"github.com/menta2k/food-analyzer/pkg/types"
)

// cautionFoods carries a fixed health-score penalty per canonical label.
// Read-only after init; safe for concurrent use.
var cautionFoods = map[string]int{
	"soda":         10,
	"french fries": 8,
	"burger":       5,
	"pizza":        3,
	"dessert":      7,
}

// HealthScore computes the 0-100 score for a meal:
//
//	100 - 0.02*max(0, calories-500) - 1.2*sat_fat - 0.2*added_sugar
//	    + 0.8*fiber + 0.5*protein
//
// then subtracts the caution-food penalty for every entry in detected.
// The detected list is intentionally not deduplicated: duplicate caution
// foods compound the penalty once per occurrence.
func HealthScore(totals types.MealTotals, detected []string) int {
	score := 100 -
		0.02*math.Max(0, totals.Calories-500) -
		1.2*totals.SatFatG -
		0.2*totals.AddedSugarG +
		0.8*totals.FiberG +
		0.5*totals.ProteinG

	for _, label := range detected {
		if penalty, ok := cautionFoods[Normalize(label)]; ok {
			score -= float64(penalty)
		}
	}

	rounded := int(math.Round(score))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
