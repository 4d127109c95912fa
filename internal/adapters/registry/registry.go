// Package registry holds the read-only source catalog for the duration of
// the process, plus the per-source rate limiter each fetch must go through.
// It is the only cross-request state besides metrics, and it is never
// mutated by the pipeline.
package registry

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
)

const defaultBurst = 3

// Registry exposes the active source set and per-source limiters.
type Registry struct {
	sources  []*model.Source
	limiters map[string]*rate.Limiter
	burst    int
}

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithBurst sets the token-bucket burst allowance per source.
func WithBurst(burst int) Option {
	return func(r *Registry) {
		if burst > 0 {
			r.burst = burst
		}
	}
}

// New creates a Registry from the configured sources. Registration order is
// recorded on each source and used as the final ranking tiebreaker. Context
// is accepted first per project convention.
func New(_ context.Context, sources []model.Source, opts ...Option) *Registry {
	r := &Registry{
		limiters: make(map[string]*rate.Limiter, len(sources)),
		burst:    defaultBurst,
	}
	for _, opt := range opts {
		opt(r)
	}

	for i := range sources {
		src := sources[i]
		src.Order = i
		r.sources = append(r.sources, &src)

		rpm := src.RequestsPerMinute
		if rpm <= 0 {
			rpm = 60
		}
		r.limiters[src.Name] = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), r.burst)
	}
	return r
}

// ActiveForCategory returns active sources whose affinity covers category.
// An empty category returns the full active set.
func (r *Registry) ActiveForCategory(category string) []*model.Source {
	var out []*model.Source
	for _, src := range r.sources {
		if !src.Active {
			continue
		}
		if category == "" || src.Supplies(category) {
			out = append(out, src)
		}
	}
	return out
}

// AllActive returns every active source in registration order.
func (r *Registry) AllActive() []*model.Source {
	return r.ActiveForCategory("")
}

// Limiter returns the token-bucket limiter owned by the named source.
// Access to a source's budget goes only through this limiter.
func (r *Registry) Limiter(name string) *rate.Limiter {
	return r.limiters[name]
}

// Count returns the number of active sources.
func (r *Registry) Count() int {
	return len(r.AllActive())
}

// Catalog groups the configured sources by category for inspection
// endpoints. Sources with multiple affinities appear once per category.
func (r *Registry) Catalog() map[string][]model.Source {
	out := make(map[string][]model.Source)
	for _, src := range r.sources {
		for _, cat := range src.Categories {
			out[cat] = append(out[cat], *src)
		}
	}
	return out
}
