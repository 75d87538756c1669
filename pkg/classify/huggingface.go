package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/menta2k/food-analyzer/pkg/types"
)

const (
	// DefaultModel is the food-specific classification model.
	DefaultModel = "nateraw/food"
	// FallbackModel is the general-purpose model tried when the primary
	// fails to load.
	FallbackModel = "google/vit-base-patch16-224"

	defaultInferenceURL = "https://api-inference.huggingface.co"
)

// HuggingFace classifies images through the hosted inference API. The
// primary model is tried first; if it fails to load, the hardcoded fallback
// model is attempted before giving up.
type HuggingFace struct {
	model         string
	fallbackModel string
	apiKey        string
	baseURL       string
	httpClient    *http.Client
}

// HuggingFaceOption customizes the client.
type HuggingFaceOption func(*HuggingFace)

// WithBaseURL overrides the inference API endpoint (used by tests).
func WithBaseURL(url string) HuggingFaceOption {
	return func(c *HuggingFace) { c.baseURL = url }
}

// WithFallbackModel overrides the secondary model identifier.
func WithFallbackModel(model string) HuggingFaceOption {
	return func(c *HuggingFace) { c.fallbackModel = model }
}

// NewHuggingFace creates a hosted-inference classifier. model may be empty
// to use the default food model.
func NewHuggingFace(model, apiKey string, opts ...HuggingFaceOption) *HuggingFace {
	if model == "" {
		model = DefaultModel
	}
	c := &HuggingFace{
		model:         model,
		fallbackModel: FallbackModel,
		apiKey:        apiKey,
		baseURL:       defaultInferenceURL,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the primary model identifier.
func (c *HuggingFace) Model() string { return c.model }

// Classify sends the image to the primary model, falling back to the
// secondary model when the primary cannot be loaded. Both failing is a hard
// service error.
func (c *HuggingFace) Classify(ctx context.Context, img image.Image) ([]types.Prediction, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	payload := buf.Bytes()

	preds, err := c.infer(ctx, c.model, payload)
	if err == nil {
		return preds, nil
	}
	if !isLoadFailure(err) {
		return nil, err
	}

	log.Printf("classifier model %s unavailable (%v), trying fallback %s", c.model, err, c.fallbackModel)
	preds, fbErr := c.infer(ctx, c.fallbackModel, payload)
	if fbErr != nil {
		return nil, fmt.Errorf("primary model failed (%v); fallback model failed: %w", err, fbErr)
	}
	return preds, nil
}

// infer posts the raw image bytes to one model and parses the ranked
// prediction list.
func (c *HuggingFace) infer(ctx context.Context, model string, payload []byte) ([]types.Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/models/"+model, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, body: string(body)}
	}

	var preds []types.Prediction
	if err := json.Unmarshal(body, &preds); err != nil {
		return nil, fmt.Errorf("failed to parse predictions: %w", err)
	}
	if len(preds) == 0 {
		return nil, fmt.Errorf("model returned no predictions")
	}
	if len(preds) > TopK {
		preds = preds[:TopK]
	}
	return preds, nil
}

// statusError carries a non-2xx inference API status.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("inference API returned status %d: %s", e.code, e.body)
}

// isLoadFailure reports whether the error indicates the model itself could
// not be served (loading or missing), which warrants the fallback model.
func isLoadFailure(err error) bool {
	se, ok := err.(*statusError)
	if !ok {
		return false
	}
	return se.code == http.StatusServiceUnavailable || se.code == http.StatusNotFound
}
