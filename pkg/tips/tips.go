// Package tips generates short health tips for an analyzed meal.
//
// Generation is a chain of responsibility: the configured text-generation
// provider is attempted first and any failure — missing credentials,
// network errors, malformed output — falls through to the deterministic
// rule-based generator, which cannot fail. Output is always capped at four
// tips.
package tips

import (
	"context"
	"log"

	"github.com/menta2k/food-analyzer/pkg/types"
)

// maxTips caps the tip list regardless of source.
const maxTips = 4

// Request carries everything a provider needs to write meal-specific tips.
type Request struct {
	Foods       []string
	Totals      types.MealTotals
	HealthScore int
}

// Provider is a single text-generation backend. Generate returns 2-4 short
// tips or an error; errors are recovered by the chain, never surfaced.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) ([]string, error)
}

// Generator orchestrates the provider chain. A nil provider (or disabled
// generator) goes straight to the rule-based tips.
type Generator struct {
	provider Provider
	enabled  bool
}

// NewGenerator creates a tip generator. provider may be nil.
func NewGenerator(provider Provider, enabled bool) *Generator {
	return &Generator{provider: provider, enabled: enabled}
}

// Generate produces the tip list for a meal. This never fails: provider
// errors degrade to the deterministic rules.
func (g *Generator) Generate(ctx context.Context, req Request) []string {
	if g.enabled && g.provider != nil {
		generated, err := g.provider.Generate(ctx, req)
		if err != nil {
			log.Printf("tip provider %s failed: %v, using rule-based tips", g.provider.Name(), err)
		} else if len(generated) > 0 {
			return capTips(generated)
		}
	}
	return capTips(RuleBased(req.Totals))
}

func capTips(tips []string) []string {
	if len(tips) > maxTips {
		return tips[:maxTips]
	}
	return tips
}
