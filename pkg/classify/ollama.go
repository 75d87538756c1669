package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/menta2k/food-analyzer/pkg/types"
)

// rankPrompt asks a local vision model to emulate a ranked image
// classifier over food labels.
const rankPrompt = `You are a food image classifier.

Look at the image and return the 10 most likely food labels with
confidence scores.

Return JSON only: a single array ordered by descending score, e.g.
[{"label":"pizza","score":0.82},{"label":"salad","score":0.10}]

HARD RULES
- Scores are in [0,1] and must sum to at most 1.0.
- Labels are lowercase common food names, no punctuation.
- JSON only. No markdown, no code fences, no comments.`

// ollamaTimeout bounds the chat call when the caller's context carries no
// deadline of its own.
const ollamaTimeout = 10 * time.Second

// Ollama classifies images with a local vision model, mirroring the hosted
// classifier contract.
type Ollama struct {
	client  *api.Client
	model   string
	timeout time.Duration
}

// NewOllama creates a classifier backed by a local ollama server.
func NewOllama(serverURL, model string) (*Ollama, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &Ollama{
		client:  api.NewClient(base, http.DefaultClient),
		model:   model,
		timeout: ollamaTimeout,
	}, nil
}

// Model returns the configured vision model name.
func (c *Ollama) Model() string { return c.model }

// Classify sends the image to the vision model and parses the ranked label
// array from its response.
func (c *Ollama) Classify(ctx context.Context, img image.Image) ([]types.Prediction, error) {
	// Add a timeout if the caller's context doesn't carry one.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: rankPrompt,
				Images:  []api.ImageData{api.ImageData(buf.Bytes())},
			},
		},
		Stream: &streamFalse,
	}

	var content string
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content = resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat error: %w", err)
	}
	if content == "" {
		return nil, fmt.Errorf("empty response from ollama")
	}

	return parseRankedLabels(content)
}

// parseRankedLabels extracts the prediction array from a model response,
// tolerating code fences and surrounding prose.
func parseRankedLabels(raw string) ([]types.Prediction, error) {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)

	// Keep only the outermost [...]
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in model response")
	}

	var preds []types.Prediction
	if err := json.Unmarshal([]byte(raw[start:end+1]), &preds); err != nil {
		return nil, fmt.Errorf("failed to parse predictions: %w", err)
	}
	if len(preds) == 0 {
		return nil, fmt.Errorf("model returned no predictions")
	}

	// A local model may not honor the ordering rule; enforce the
	// descending contract here since this backend owns it.
	sort.SliceStable(preds, func(i, j int) bool { return preds[i].Score > preds[j].Score })
	if len(preds) > TopK {
		preds = preds[:TopK]
	}
	return preds, nil
}
