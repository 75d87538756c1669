package tips

import "github.com/menta2k/food-analyzer/pkg/types"

// RuleBased generates deterministic tips from the meal totals. Checks are
// ordered and non-exclusive; if none fires, a single affirmation is
// returned. This path never fails.
func RuleBased(totals types.MealTotals) []string {
	var out []string

	if totals.AddedSugarG >= 20 {
		out = append(out, "Swap sugary drinks for water or unsweetened tea.")
	}
	if totals.FiberG < 5 {
		out = append(out, "Add veggies or whole grains to increase fiber.")
	}
	if totals.ProteinG < 15 {
		out = append(out, "Add a lean protein for satiety.")
	}
	if totals.SatFatG >= 8 {
		out = append(out, "Consider choosing leaner options to reduce saturated fat.")
	}
	if totals.Calories >= 600 {
		out = append(out, "This is a calorie-dense meal - consider portion control.")
	}

	if len(out) == 0 {
		out = append(out, "Great nutritional balance!")
	}
	return out
}
