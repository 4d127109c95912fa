// Package rewrite produces original-wording article text through a chain of
// generative-text providers with failover and an originality gate.
package rewrite

import (
	"context"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
)

// Request carries one item into a provider call.
type Request struct {
	Title    string
	Body     string
	Category string
	Persona  model.Persona
}

// Draft is the structured output a provider must return.
type Draft struct {
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Summary         string   `json:"summary"`
	Keywords        []string `json:"keywords"`
	MetaDescription string   `json:"meta_description"`
}

// Provider is a text-rewrite capability. Implementations are interchangeable;
// the pipeline selects them by chain order, never by name.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Configured reports whether the provider has credentials to operate.
	Configured() bool

	// Rewrite performs one generation call, honoring ctx for cancellation.
	Rewrite(ctx context.Context, req Request) (Draft, error)
}
