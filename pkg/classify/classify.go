// Package classify turns a preprocessed food photo into a ranked label
// list. Backends are opaque: the pipeline only relies on the descending
// score ordering of the returned predictions.
package classify

import (
	"context"
	"image"

	"github.com/menta2k/food-analyzer/pkg/types"
)

// Classifier produces a ranked, descending-by-score prediction list with at
// least one entry.
type Classifier interface {
	Classify(ctx context.Context, img image.Image) ([]types.Prediction, error)
	// Model identifies the model behind this classifier for analytics.
	Model() string
}

// TopK is the number of ranked predictions requested from backends.
const TopK = 10
