// Package fetch retrieves raw candidate items from content sources under a
// global concurrency ceiling and per-source rate limits. A failing source
// contributes zero items and is reported as degraded; it never aborts the
// batch.
package fetch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
	"github.com/Diego-de-Souza/service-generate-content/pkg/logger"
	"github.com/Diego-de-Souza/service-generate-content/pkg/metrics"
)

const (
	defaultMaxConcurrent = 10
	defaultRetryBackoff  = 500 * time.Millisecond
)

// Client retrieves items from one source using its fetch mechanism.
type Client interface {
	Fetch(ctx context.Context, src *model.Source, limit int) ([]model.RawItem, error)
}

// Waiter is the acquire side of a source's rate limiter. *rate.Limiter
// satisfies it.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Fetcher runs bounded concurrent fetches across sources.
type Fetcher struct {
	clients       map[model.Mechanism]Client
	limiterFor    func(name string) Waiter
	maxConcurrent int
	retryBackoff  time.Duration
	log           logger.Logger
}

// Option applies a configuration option to the Fetcher.
type Option func(*Fetcher)

// WithClient registers the fetch client for a mechanism.
func WithClient(m model.Mechanism, c Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.clients[m] = c
		}
	}
}

// WithLimiters wires the per-source limiter lookup.
func WithLimiters(fn func(name string) Waiter) Option {
	return func(f *Fetcher) {
		if fn != nil {
			f.limiterFor = fn
		}
	}
}

// WithMaxConcurrent caps simultaneous source fetches.
func WithMaxConcurrent(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxConcurrent = n
		}
	}
}

// WithRetryBackoff sets the pause before the single transient retry.
func WithRetryBackoff(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.retryBackoff = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(f *Fetcher) {
		if log != nil {
			f.log = log
		}
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		clients:       make(map[model.Mechanism]Client),
		maxConcurrent: defaultMaxConcurrent,
		retryBackoff:  defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logger.Get().Named("fetcher")
	}
	return f
}

// Fetch pulls up to perSourceLimit items from each source concurrently.
// The returned items carry a deterministic FetchOrder: sources in
// registration order, items in the order each source produced them,
// regardless of completion order. Degraded source names are returned
// alongside; they are never an error.
func (f *Fetcher) Fetch(ctx context.Context, sources []*model.Source, perSourceLimit int) ([]model.RawItem, []string) {
	results := make([][]model.RawItem, len(sources))
	failed := make([]bool, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.maxConcurrent)

	for i, src := range sources {
		g.Go(func() error {
			items, err := f.fetchSource(gctx, src, perSourceLimit)
			if err != nil {
				failed[i] = true
				metrics.RecordSourceDegraded(src.Name)
				f.log.Warn(gctx, "source degraded",
					logger.String("source", src.Name),
					logger.Error(err),
				)
				return nil // isolated failure, keep the batch going
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait() // goroutines only report nil

	var items []model.RawItem
	var degraded []string
	for i, src := range sources {
		if failed[i] {
			degraded = append(degraded, src.Name)
			continue
		}
		items = append(items, results[i]...)
	}
	for i := range items {
		items[i].FetchOrder = i
	}
	sort.Strings(degraded)

	metrics.RecordItemsFetched(len(items))
	return items, degraded
}

// fetchSource acquires the source's rate budget, fetches, and retries once
// with backoff on a transient failure.
func (f *Fetcher) fetchSource(ctx context.Context, src *model.Source, limit int) ([]model.RawItem, error) {
	client, ok := f.clients[src.Mechanism]
	if !ok {
		return nil, fmt.Errorf("%w: no client for mechanism %q", ErrPermanent, src.Mechanism)
	}

	if f.limiterFor != nil {
		if lim := f.limiterFor(src.Name); lim != nil {
			// Exceeding the budget defers the fetch instead of dropping
			// it; the batch deadline bounds the wait.
			if err := lim.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%w: rate limit wait: %w", ErrTransient, err)
			}
		}
	}

	items, err := client.Fetch(ctx, src, limit)
	if err == nil {
		return items, nil
	}
	if !transient(err) {
		return nil, err
	}

	f.log.Debug(ctx, "retrying source after transient failure",
		logger.String("source", src.Name),
		logger.Error(err),
	)
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrTransient, ctx.Err())
	case <-time.After(f.retryBackoff):
	}
	return client.Fetch(ctx, src, limit)
}
