package preprocess

import (
	"math/rand"

	"github.com/menta2k/food-analyzer/pkg/types"
)

var strategies = []types.Strategy{
	types.StrategyMinimal,
	types.StrategyAdaptive,
	types.StrategyAggressive,
}

// Selector picks a preprocessing strategy for an image. Priority order:
// explicit user preference, random A/B choice, quality-tiered selection.
// The random source is injected so callers can pin outcomes in tests.
type Selector struct {
	preference string
	abTesting  bool
	rng        *rand.Rand
}

// NewSelector creates a strategy selector. preference may be empty; rng is
// only consulted when abTesting is enabled.
func NewSelector(preference string, abTesting bool, rng *rand.Rand) *Selector {
	return &Selector{
		preference: preference,
		abTesting:  abTesting,
		rng:        rng,
	}
}

// Select returns the strategy for an image with the given quality score.
// A nil qualityScore means no assessment is available and defaults to
// adaptive.
func (s *Selector) Select(qualityScore *float64) types.Strategy {
	if pref := types.Strategy(s.preference); pref.Valid() {
		return pref
	}

	if s.abTesting && s.rng != nil {
		return strategies[s.rng.Intn(len(strategies))]
	}

	if qualityScore == nil {
		return types.StrategyAdaptive
	}

	switch q := *qualityScore; {
	case q >= 0.7:
		return types.StrategyMinimal
	case q >= 0.4:
		return types.StrategyAdaptive
	default:
		return types.StrategyAggressive
	}
}
