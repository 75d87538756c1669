// Package nutrition resolves canonical food labels to macro-nutrient
// profiles. An external store is consulted first; a built-in table and a
// generic default guarantee resolution never fails.
package nutrition

import (
	"context"
	"log"
	"strings"

	"github.com/menta2k/food-analyzer/pkg/food"
	"github.com/menta2k/food-analyzer/pkg/types"
)

// Store is the external nutrition-facts collaborator.
type Store interface {
	// Lookup returns the profile for a canonical label, or found=false on a
	// miss.
	Lookup(ctx context.Context, canonical string) (types.NutritionProfile, bool, error)
	// CuisineCanonical maps a raw model label to a canonical name for the
	// given cuisine type, or found=false when no mapping exists.
	CuisineCanonical(ctx context.Context, cuisineType, label string) (string, bool, error)
}

// fallbackTable is the fixed in-core nutrition table used when the store
// misses or is unavailable. Read-only after init.
var fallbackTable = map[string]types.NutritionProfile{
	"pizza":          {Calories: 285, ProteinG: 12, CarbsG: 36, FatG: 10, FiberG: 2, SatFatG: 4, AddedSugarG: 2},
	"salad":          {Calories: 150, ProteinG: 4, CarbsG: 10, FatG: 10, FiberG: 3, SatFatG: 2, AddedSugarG: 1},
	"soda":           {Calories: 150, ProteinG: 0, CarbsG: 39, FatG: 0, FiberG: 0, SatFatG: 0, AddedSugarG: 39},
	"french fries":   {Calories: 365, ProteinG: 4, CarbsG: 48, FatG: 17, FiberG: 4, SatFatG: 3, AddedSugarG: 0},
	"burger":         {Calories: 540, ProteinG: 31, CarbsG: 41, FatG: 27, FiberG: 3, SatFatG: 10, AddedSugarG: 5},
	"chicken breast": {Calories: 231, ProteinG: 43.5, CarbsG: 0, FatG: 5.0, FiberG: 0, SatFatG: 1.4, AddedSugarG: 0},
	"rice":           {Calories: 205, ProteinG: 4.3, CarbsG: 45, FatG: 0.4, FiberG: 0.6, SatFatG: 0.1, AddedSugarG: 0},
	"apple":          {Calories: 95, ProteinG: 0.5, CarbsG: 25, FatG: 0.3, FiberG: 4.4, SatFatG: 0.1, AddedSugarG: 19},
	"banana":         {Calories: 105, ProteinG: 1.3, CarbsG: 27, FatG: 0.4, FiberG: 3.1, SatFatG: 0.1, AddedSugarG: 14},
}

// genericProfile covers labels absent from both the store and the table.
var genericProfile = types.NutritionProfile{
	Calories: 250, ProteinG: 6, CarbsG: 30, FatG: 9,
	FiberG: 2, SatFatG: 2, AddedSugarG: 2,
}

// Resolver looks up nutrition profiles. A nil store is valid and skips
// straight to the built-in table.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver over the given store; store may be nil.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns a nutrition profile for a food label. cuisineType is
// optional and consults the store's regional mapping layer before the facts
// lookup. Never fails: store errors are logged and the built-in fallbacks
// take over.
func (r *Resolver) Resolve(ctx context.Context, label, cuisineType string) types.NutritionProfile {
	canonical := food.Normalize(label)

	if r.store != nil {
		if cuisineType != "" {
			// Regional mappings are keyed by the raw model label, so surface
			// forms the synonym table would rewrite still match.
			raw := strings.ToLower(strings.TrimSpace(label))
			mapped, found, err := r.store.CuisineCanonical(ctx, cuisineType, raw)
			if err != nil {
				log.Printf("cuisine mapping lookup failed for %q: %v", raw, err)
			} else if found {
				canonical = mapped
			}
		}

		profile, found, err := r.store.Lookup(ctx, canonical)
		if err != nil {
			log.Printf("nutrition store lookup failed for %q: %v", canonical, err)
		} else if found {
			return profile
		}
	}

	if profile, ok := fallbackTable[canonical]; ok {
		return profile
	}
	return genericProfile
}

// KnownFoods returns the built-in fallback table keyed by canonical label.
// Used when no store is configured.
func KnownFoods() map[string]types.NutritionProfile {
	out := make(map[string]types.NutritionProfile, len(fallbackTable))
	for k, v := range fallbackTable {
		out[k] = v
	}
	return out
}
