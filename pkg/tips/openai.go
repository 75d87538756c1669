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
	openaiTipModel   = "gpt-4o-mini"
	defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"
)

// OpenAI generates tips with the chat completions API. No retry: any
// failure falls to the rule-based generator.
type OpenAI struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// OpenAIOption customizes the openai tip provider.
type OpenAIOption func(*OpenAI)

// WithOpenAIURL overrides the endpoint (used by tests).
func WithOpenAIURL(url string) OpenAIOption {
	return func(p *OpenAI) { p.url = url }
}

// NewOpenAI creates the openai tip provider.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	p := &OpenAI{
		apiKey:     apiKey,
		url:        defaultOpenAIURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (p *OpenAI) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate implements Provider.
func (p *OpenAI) Generate(ctx context.Context, req Request) ([]string, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	payload, err := json.Marshal(chatCompletionRequest{
		Model: openaiTipModel,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful nutritionist. Always respond with valid JSON arrays."},
			{Role: "user", Content: chatPrompt(req)},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

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
		return nil, fmt.Errorf("openai returned status %d: %s", resp.StatusCode, body)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return parseTipArray(completion.Choices[0].Message.Content)
}
