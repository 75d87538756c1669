package tips

import (
	"fmt"
	"strings"
)

// chatPrompt is the long-form prompt shared by the openai and anthropic
// providers.
func chatPrompt(req Request) string {
	return fmt.Sprintf(`You are a friendly nutritionist providing brief, actionable health tips.

Meal Analysis:
- Detected foods: %s
- Total calories: %d
- Protein: %.1fg
- Carbs: %.1fg
- Fat: %.1fg
- Fiber: %.1fg
- Saturated fat: %.1fg
- Added sugar: %.1fg
- Health score: %d/100

Provide 2-4 brief, actionable health tips (1 sentence each):
1. Focus on practical improvements specific to THIS meal
2. Be encouraging and positive
3. Suggest specific swaps or additions when relevant
4. Keep tips under 15 words each

Return ONLY the tips as a JSON array of strings, no other text.
Example format: ["Tip 1 here", "Tip 2 here", "Tip 3 here"]`,
		strings.Join(req.Foods, ", "),
		int(req.Totals.Calories),
		req.Totals.ProteinG,
		req.Totals.CarbsG,
		req.Totals.FatG,
		req.Totals.FiberG,
		req.Totals.SatFatG,
		req.Totals.AddedSugarG,
		req.HealthScore,
	)
}

// textPrompt is the condensed single-turn prompt used by the huggingface
// text-generation endpoint.
func textPrompt(req Request) string {
	return fmt.Sprintf(`You are a friendly nutritionist. Provide 2-4 brief, actionable health tips for this meal.

Meal: %s
Calories: %d | Protein: %.1fg | Carbs: %.1fg | Fat: %.1fg
Fiber: %.1fg | Sat Fat: %.1fg | Sugar: %.1fg
Health Score: %d/100

Requirements:
- Keep each tip under 15 words
- Be specific to THIS meal
- Focus on actionable swaps or additions
- Be encouraging and positive

Return ONLY a JSON array of tip strings, nothing else.
Example: ["Add a side salad for fiber", "Swap soda for water"]`,
		strings.Join(req.Foods, ", "),
		int(req.Totals.Calories),
		req.Totals.ProteinG,
		req.Totals.CarbsG,
		req.Totals.FatG,
		req.Totals.FiberG,
		req.Totals.SatFatG,
		req.Totals.AddedSugarG,
		req.HealthScore,
	)
}
