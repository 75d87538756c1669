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
	anthropicTipModel   = "claude-3-5-haiku-20241022"
	defaultAnthropicURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion    = "2023-06-01"
)

// Anthropic generates tips with the messages API. No retry: any failure
// falls to the rule-based generator.
type Anthropic struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// AnthropicOption customizes the anthropic tip provider.
type AnthropicOption func(*Anthropic)

// WithAnthropicURL overrides the endpoint (used by tests).
func WithAnthropicURL(url string) AnthropicOption {
	return func(p *Anthropic) { p.url = url }
}

// NewAnthropic creates the anthropic tip provider.
func NewAnthropic(apiKey string, opts ...AnthropicOption) *Anthropic {
	p := &Anthropic{
		apiKey:     apiKey,
		url:        defaultAnthropicURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (p *Anthropic) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Generate implements Provider.
func (p *Anthropic) Generate(ctx context.Context, req Request) ([]string, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	payload, err := json.Marshal(anthropicRequest{
		Model:       anthropicTipModel,
		MaxTokens:   300,
		Temperature: 0.7,
		Messages: []chatMessage{
			{Role: "user", Content: chatPrompt(req)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic returned status %d: %s", resp.StatusCode, body)
	}

	var message anthropicResponse
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(message.Content) == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	return parseTipArray(message.Content[0].Text)
}
