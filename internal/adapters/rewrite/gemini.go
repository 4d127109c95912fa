package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	geminiEndpointFmt    = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	defaultClientTimeout = 60 * time.Second
	maxErrorBody         = 1024
)

// GeminiClient implements Provider against the Google Generative Language API.
type GeminiClient struct {
	endpoint    string
	model       string
	apiKey      string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

var _ Provider = (*GeminiClient)(nil)

// GeminiOption applies a configuration option to the GeminiClient.
type GeminiOption func(*GeminiClient)

// WithGeminiEndpoint overrides the API endpoint, used in tests.
func WithGeminiEndpoint(endpoint string) GeminiOption {
	return func(c *GeminiClient) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithGeminiHTTPClient overrides the HTTP client.
func WithGeminiHTTPClient(hc *http.Client) GeminiOption {
	return func(c *GeminiClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewGeminiClient builds a Gemini-backed rewrite provider.
func NewGeminiClient(apiKey, model string, temperature float64, maxTokens int, opts ...GeminiOption) *GeminiClient {
	c := &GeminiClient{
		endpoint:    fmt.Sprintf(geminiEndpointFmt, model),
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

func (c *GeminiClient) Name() string { return "gemini" }

func (c *GeminiClient) Configured() bool { return c.apiKey != "" && c.model != "" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Rewrite posts one generation request and parses the structured draft.
func (c *GeminiClient) Rewrite(ctx context.Context, req Request) (Draft, error) {
	if !c.Configured() {
		return Draft{}, ErrNoProvider
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: systemPrompt + "\n\n" + buildPrompt(req)}},
		}},
		GenerationConfig: geminiGenConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Draft{}, fmt.Errorf("marshal gemini payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Draft{}, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Draft{}, fmt.Errorf("gemini call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Draft{}, fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Draft{}, fmt.Errorf("%w: decode gemini response: %w", ErrBadResponse, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return Draft{}, fmt.Errorf("%w: gemini returned no candidates", ErrBadResponse)
	}

	return parseDraft(out.Candidates[0].Content.Parts[0].Text)
}
