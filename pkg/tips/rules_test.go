package tips

import (
	"reflect"
	"testing"

	"github.com/menta2k/food-analyzer/pkg/types"
)

func TestRuleBasedBalancedMeal(t *testing.T) {
	totals := types.MealTotals{
		Calories:    400,
		AddedSugarG: 0,
		FiberG:      6,
		ProteinG:    20,
		SatFatG:     2,
	}
	got := RuleBased(totals)
	want := []string{"Great nutritional balance!"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected affirmation only, got %v", got)
	}
}

func TestRuleBasedIndividualRules(t *testing.T) {
	// A baseline that fires no rule.
	base := types.MealTotals{Calories: 400, FiberG: 6, ProteinG: 20, SatFatG: 2}

	cases := []struct {
		name   string
		mutate func(*types.MealTotals)
		want   string
	}{
		{"sugar", func(m *types.MealTotals) { m.AddedSugarG = 20 }, "Swap sugary drinks for water or unsweetened tea."},
		{"fiber", func(m *types.MealTotals) { m.FiberG = 4.9 }, "Add veggies or whole grains to increase fiber."},
		{"protein", func(m *types.MealTotals) { m.ProteinG = 14.9 }, "Add a lean protein for satiety."},
		{"satfat", func(m *types.MealTotals) { m.SatFatG = 8 }, "Consider choosing leaner options to reduce saturated fat."},
		{"calories", func(m *types.MealTotals) { m.Calories = 600 }, "This is a calorie-dense meal - consider portion control."},
	}
	for _, tc := range cases {
		totals := base
		tc.mutate(&totals)
		got := RuleBased(totals)
		if len(got) != 1 || got[0] != tc.want {
			t.Errorf("%s: expected [%q], got %v", tc.name, tc.want, got)
		}
	}
}

func TestRuleBasedRulesAreNonExclusive(t *testing.T) {
	totals := types.MealTotals{
		Calories:    900,
		AddedSugarG: 45,
		FiberG:      1,
		ProteinG:    3,
		SatFatG:     15,
	}
	got := RuleBased(totals)
	if len(got) != 5 {
		t.Errorf("All five rules should fire, got %d tips: %v", len(got), got)
	}
}

func TestRuleBasedOrderIsStable(t *testing.T) {
	totals := types.MealTotals{AddedSugarG: 25, FiberG: 0, ProteinG: 0, SatFatG: 10, Calories: 700}
	a := RuleBased(totals)
	b := RuleBased(totals)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Rule order must be deterministic: %v vs %v", a, b)
	}
	if a[0] != "Swap sugary drinks for water or unsweetened tea." {
		t.Errorf("Sugar rule must come first, got %v", a)
	}
}
