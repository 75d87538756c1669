// Package food holds the detection policy applied to classifier output:
// label canonicalization, dynamic-threshold multi-label extraction and the
// deterministic health score.
package food

import "strings"

// labelSynonyms maps surface forms produced by the classifier onto
// canonical food names. Read-only after init; safe for concurrent use.
var labelSynonyms = map[string]string{
	// Fries variations
	"fries":          "french fries",
	"chips":          "french fries",
	"potato fries":   "french fries",
	"fried potatoes": "french fries",

	// Soda variations
	"cola":             "soda",
	"coke":             "soda",
	"pepsi":            "soda",
	"soft drink":       "soda",
	"carbonated drink": "soda",

	// Burger variations
	"hamburger":    "burger",
	"cheeseburger": "burger",
	"beefburger":   "burger",

	// Salad variations
	"salad greens": "salad",
	"green salad":  "salad",
	"mixed salad":  "salad",
	"garden salad": "salad",
	"tossed salad": "salad",

	// Rice variations
	"white rice":   "rice",
	"steamed rice": "rice",
	"fried rice":   "rice",
	"rice bowl":    "rice",

	// Chicken variations
	"grilled chicken": "chicken breast",
	"chicken breast":  "chicken breast",
	"chicken fillet":  "chicken breast",
	"roasted chicken": "chicken breast",

	// Pizza variations
	"pizza slice":     "pizza",
	"cheese pizza":    "pizza",
	"pepperoni pizza": "pizza",

	// Sandwich variations
	"sub":    "sandwich",
	"hoagie": "sandwich",
	"panini": "sandwich",

	// Pasta variations
	"spaghetti": "pasta",
	"noodles":   "pasta",
	"linguine":  "pasta",
	"penne":     "pasta",

	// Fruit variations
	"apples":  "apple",
	"bananas": "banana",
	"oranges": "orange",

	// Beverage variations
	"coffee cup": "coffee",
	"espresso":   "coffee",
	"latte":      "coffee",
}

// Normalize canonicalizes a raw classifier label: lowercase, trim, then a
// synonym lookup. Unmapped labels pass through unchanged. Idempotent.
func Normalize(label string) string {
	cleaned := strings.ToLower(strings.TrimSpace(label))
	if canonical, ok := labelSynonyms[cleaned]; ok {
		return canonical
	}
	return cleaned
}
