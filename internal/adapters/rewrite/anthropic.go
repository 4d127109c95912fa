package rewrite

import (
	"context"
	"fmt"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
)

// AnthropicClient implements Provider on top of llmkit's Anthropic bindings.
type AnthropicClient struct {
	model       string
	apiKey      string
	temperature float64
	maxTokens   int
}

var _ Provider = (*AnthropicClient)(nil)

// NewAnthropicClient builds an Anthropic-backed rewrite provider.
func NewAnthropicClient(apiKey, model string, temperature float64, maxTokens int) *AnthropicClient {
	return &AnthropicClient{
		model:       model,
		apiKey:      apiKey,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (c *AnthropicClient) Name() string { return "anthropic" }

func (c *AnthropicClient) Configured() bool {
	return c.apiKey != "" && c.model != ""
}

// Rewrite prompts the model once and parses the structured draft.
func (c *AnthropicClient) Rewrite(ctx context.Context, req Request) (Draft, error) {
	if !c.Configured() {
		return Draft{}, ErrNoProvider
	}
	if err := ctx.Err(); err != nil {
		return Draft{}, err
	}

	settings := types.RequestSettings{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	response, err := anthropic.PromptWithSettings(systemPrompt, buildPrompt(req), "", c.apiKey, settings)
	if err != nil {
		return Draft{}, fmt.Errorf("anthropic call: %w", err)
	}
	if len(response.Content) == 0 {
		return Draft{}, fmt.Errorf("%w: anthropic returned no content", ErrBadResponse)
	}

	return parseDraft(response.Content[0].Text)
}
