package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAIClient implements Provider against OpenAI-compatible chat APIs.
type OpenAIClient struct {
	endpoint    string
	model       string
	apiKey      string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

var _ Provider = (*OpenAIClient)(nil)

// OpenAIOption applies a configuration option to the OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithOpenAIHTTPClient overrides the HTTP client.
func WithOpenAIHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *OpenAIClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewOpenAIClient builds an OpenAI-backed rewrite provider.
func NewOpenAIClient(apiKey, model, endpoint string, temperature float64, maxTokens int, opts ...OpenAIOption) *OpenAIClient {
	c := &OpenAIClient{
		endpoint:    endpoint,
		model:       model,
		apiKey:      apiKey,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: defaultClientTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) Configured() bool {
	return c.apiKey != "" && c.model != "" && c.endpoint != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Rewrite posts one chat completion request and parses the structured draft.
func (c *OpenAIClient) Rewrite(ctx context.Context, req Request) (Draft, error) {
	if !c.Configured() {
		return Draft{}, ErrNoProvider
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(req)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return Draft{}, fmt.Errorf("marshal openai payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Draft{}, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Draft{}, fmt.Errorf("openai call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Draft{}, fmt.Errorf("openai error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Draft{}, fmt.Errorf("%w: decode openai response: %w", ErrBadResponse, err)
	}
	if len(out.Choices) == 0 {
		return Draft{}, fmt.Errorf("%w: openai returned no choices", ErrBadResponse)
	}

	return parseDraft(out.Choices[0].Message.Content)
}
