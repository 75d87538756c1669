package food

import (
	"errors"

	"github.com/menta2k/food-analyzer/pkg/types"
)

// ErrNoDetection reports that no prediction survived thresholding. The
// top-ranked candidate always satisfies its own relative threshold, so this
// fires only on an empty prediction list or a top score below the absolute
// floor. Fatal to the request.
var ErrNoDetection = errors.New("no food detected in image")

// maxItems caps the number of detected foods per photo.
const maxItems = 3

// thresholdTier holds the dynamic confidence thresholds for a quality band.
type thresholdTier struct {
	name     string
	base     float64
	relative float64
}

// tierFor mirrors the preprocessing quality tiers but is tuned
// independently: high-quality photos earn stricter thresholds, low-quality
// photos more lenient ones.
func tierFor(qualityScore float64) thresholdTier {
	switch {
	case qualityScore >= 0.7:
		return thresholdTier{name: "strict", base: 0.14, relative: 0.60}
	case qualityScore >= 0.4:
		return thresholdTier{name: "balanced", base: 0.12, relative: 0.55}
	default:
		return thresholdTier{name: "lenient", base: 0.10, relative: 0.50}
	}
}

// Extraction is the survivor set plus its uncertainty classification.
type Extraction struct {
	Kept []types.Prediction
	Tier string
	// Uncertainty is set when at least two predictions survive: "low" for
	// a clear winner (spread > 0.3), "high" for a tight field (< 0.15).
	Uncertainty string
	Spread      float64
}

// Extract applies quality-tiered dynamic thresholds to a ranked prediction
// list. Candidates are kept iff score >= max(base, top*relative), rank
// order preserved, capped at three survivors.
func Extract(predictions []types.Prediction, qualityScore float64) (Extraction, error) {
	if len(predictions) == 0 {
		return Extraction{}, ErrNoDetection
	}

	tier := tierFor(qualityScore)
	top := predictions[0].Score
	cutoff := tier.base
	if rel := top * tier.relative; rel > cutoff {
		cutoff = rel
	}

	kept := make([]types.Prediction, 0, maxItems)
	for _, p := range predictions {
		if p.Score >= cutoff {
			kept = append(kept, p)
			if len(kept) == maxItems {
				break
			}
		}
	}
	if len(kept) == 0 {
		return Extraction{}, ErrNoDetection
	}

	out := Extraction{Kept: kept, Tier: tier.name}
	if len(kept) >= 2 {
		minScore, maxScore := kept[0].Score, kept[0].Score
		for _, p := range kept[1:] {
			if p.Score < minScore {
				minScore = p.Score
			}
			if p.Score > maxScore {
				maxScore = p.Score
			}
		}
		out.Spread = maxScore - minScore
		switch {
		case out.Spread > 0.3:
			out.Uncertainty = "low"
		case out.Spread > 0.15:
			out.Uncertainty = "medium"
		default:
			out.Uncertainty = "high"
		}
	}
	return out, nil
}
