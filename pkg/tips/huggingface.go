package tips

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// hfTipModel is the free instruction model used for tip generation.
	hfTipModel = "meta-llama/Llama-3.2-3B-Instruct"

	defaultHFURL = "https://api-inference.huggingface.co/models/" + hfTipModel
)

// HuggingFace generates tips through the hosted text-generation API. A 503
// response means the model is still loading; that specific case is retried
// exactly once after a fixed delay. Everything else is a plain failure.
type HuggingFace struct {
	apiKey     string
	url        string
	retryDelay time.Duration
	httpClient *http.Client
}

// HFOption customizes the huggingface tip provider.
type HFOption func(*HuggingFace)

// WithHFURL overrides the endpoint (used by tests).
func WithHFURL(url string) HFOption {
	return func(p *HuggingFace) { p.url = url }
}

// WithRetryDelay overrides the model-loading retry delay (used by tests).
func WithRetryDelay(d time.Duration) HFOption {
	return func(p *HuggingFace) { p.retryDelay = d }
}

// NewHuggingFace creates the huggingface tip provider.
func NewHuggingFace(apiKey string, opts ...HFOption) *HuggingFace {
	p := &HuggingFace{
		apiKey:     apiKey,
		url:        defaultHFURL,
		retryDelay: 5 * time.Second,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (p *HuggingFace) Name() string { return "huggingface" }

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// Generate implements Provider.
func (p *HuggingFace) Generate(ctx context.Context, req Request) ([]string, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("HF_API_KEY not set")
	}

	payload, err := json.Marshal(hfRequest{
		Inputs: textPrompt(req),
		Parameters: hfParameters{
			MaxNewTokens:   200,
			Temperature:    0.7,
			TopP:           0.9,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	status, body, err := p.post(ctx, payload)
	if err != nil {
		return nil, err
	}

	if status == http.StatusServiceUnavailable {
		// Model loading: wait once and retry exactly once.
		select {
		case <-time.After(p.retryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		status, body, err = p.post(ctx, payload)
		if err != nil {
			return nil, err
		}
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("huggingface returned status %d: %s", status, body)
	}

	text, err := extractGeneratedText(body)
	if err != nil {
		return nil, err
	}
	return parseTipArray(text)
}

func (p *HuggingFace) post(ctx context.Context, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// extractGeneratedText handles both response shapes the API emits: a list
// of generations or a single object.
func extractGeneratedText(body []byte) (string, error) {
	var list []hfGeneration
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		return list[0].GeneratedText, nil
	}
	var single hfGeneration
	if err := json.Unmarshal(body, &single); err == nil && single.GeneratedText != "" {
		return single.GeneratedText, nil
	}
	return "", fmt.Errorf("no generated text in response")
}
