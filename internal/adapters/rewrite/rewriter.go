package rewrite

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
	"github.com/Diego-de-Souza/service-generate-content/internal/domain/similarity"
	"github.com/Diego-de-Souza/service-generate-content/pkg/logger"
	"github.com/Diego-de-Souza/service-generate-content/pkg/metrics"
)

const (
	defaultSimilarityThreshold = 0.75
	defaultOriginalityRetries  = 2
	defaultConcurrency         = 4
	defaultProviderBackoff     = 500 * time.Millisecond
	maxKeywords                = 8
)

// Rewriter runs normalized items through a provider chain and keeps only
// drafts that pass the originality gate.
type Rewriter struct {
	providers           []Provider
	similarityThreshold float64
	originalityRetries  int
	concurrency         int
	providerBackoff     time.Duration
	log                 logger.Logger
}

// Option applies a configuration option to the Rewriter.
type Option func(*Rewriter)

// WithSimilarityThreshold sets the maximum allowed similarity between a draft
// and its source text.
func WithSimilarityThreshold(t float64) Option {
	return func(r *Rewriter) {
		if t > 0 && t <= 1 {
			r.similarityThreshold = t
		}
	}
}

// WithOriginalityRetries sets how many extra generation attempts an
// insufficiently original draft gets before the item is dropped.
func WithOriginalityRetries(n int) Option {
	return func(r *Rewriter) {
		if n >= 0 {
			r.originalityRetries = n
		}
	}
}

// WithConcurrency bounds the number of items rewritten in parallel.
func WithConcurrency(n int) Option {
	return func(r *Rewriter) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithProviderBackoff sets the pause before a provider's single retry.
func WithProviderBackoff(d time.Duration) Option {
	return func(r *Rewriter) {
		if d >= 0 {
			r.providerBackoff = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Rewriter) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRewriter builds a Rewriter over the given provider chain. Providers are
// tried in slice order; unconfigured ones are skipped.
func NewRewriter(providers []Provider, opts ...Option) *Rewriter {
	r := &Rewriter{
		providers:           providers,
		similarityThreshold: defaultSimilarityThreshold,
		originalityRetries:  defaultOriginalityRetries,
		concurrency:         defaultConcurrency,
		providerBackoff:     defaultProviderBackoff,
		log:                 logger.Named("rewrite"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Configured reports whether at least one provider in the chain can operate.
func (r *Rewriter) Configured() bool {
	for _, p := range r.providers {
		if p.Configured() {
			return true
		}
	}
	return false
}

// Providers returns the readiness of every provider in chain order.
func (r *Rewriter) Providers() map[string]bool {
	out := make(map[string]bool, len(r.providers))
	for _, p := range r.providers {
		out[p.Name()] = p.Configured()
	}
	return out
}

// RewriteAll rewrites items concurrently, preserving input order in the
// result. Items whose rewrite fails or never passes the originality gate are
// dropped and counted in rejected; only a wholly unconfigured chain is an
// error.
func (r *Rewriter) RewriteAll(ctx context.Context, items []model.NormalizedItem, category string, persona model.Persona) ([]model.RewrittenItem, int, error) {
	if !r.Configured() {
		return nil, 0, ErrNoProvider
	}
	if len(items) == 0 {
		return nil, 0, nil
	}

	results := make([]*model.RewrittenItem, len(items))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := r.concurrency
	if workers > len(items) {
		workers = len(items)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				item, err := r.rewriteOne(ctx, items[i], category, persona)
				if err != nil {
					r.log.Warn(ctx, "item dropped at rewrite",
						logger.String("url", items[i].URL),
						logger.Error(err))
					continue
				}
				results[i] = &item
			}
		}()
	}

	for i := range items {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	out := make([]model.RewrittenItem, 0, len(items))
	for _, res := range results {
		if res != nil {
			out = append(out, *res)
		}
	}
	rejected := len(items) - len(out)
	if rejected > 0 {
		metrics.RecordStageRejections("rewrite", rejected)
	}
	return out, rejected, nil
}

// rewriteOne generates a draft for one item, retrying generation while the
// output stays too close to the source text.
func (r *Rewriter) rewriteOne(ctx context.Context, item model.NormalizedItem, category string, persona model.Persona) (model.RewrittenItem, error) {
	req := Request{
		Title:    item.Title,
		Body:     item.Body,
		Category: category,
		Persona:  persona,
	}

	var lastErr error
	for attempt := 0; attempt <= r.originalityRetries; attempt++ {
		draft, err := r.generate(ctx, req)
		if err != nil {
			return model.RewrittenItem{}, err
		}

		ratio := similarity.Ratio(draft.Content, item.Body)
		if ratio < r.similarityThreshold {
			return r.assemble(item, draft, persona), nil
		}
		lastErr = ErrNotOriginal
		r.log.Debug(ctx, "draft failed originality gate",
			logger.String("url", item.URL),
			logger.Float64("similarity", ratio),
			logger.Int("attempt", attempt+1))
	}
	return model.RewrittenItem{}, lastErr
}

// generate walks the provider chain. Each configured provider gets one retry
// after a short backoff before the chain moves on.
func (r *Rewriter) generate(ctx context.Context, req Request) (Draft, error) {
	var lastErr error
	for _, p := range r.providers {
		if !p.Configured() {
			continue
		}
		for attempt := 0; attempt < 2; attempt++ {
			if attempt > 0 {
				select {
				case <-time.After(r.providerBackoff):
				case <-ctx.Done():
					return Draft{}, ctx.Err()
				}
			}

			start := time.Now()
			draft, err := p.Rewrite(ctx, req)
			metrics.ObserveProviderLatency(time.Since(start).Seconds())
			if err == nil {
				metrics.RecordProviderRequest(p.Name(), "success")
				return draft, nil
			}
			metrics.RecordProviderRequest(p.Name(), "error")
			lastErr = err
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return Draft{}, err
			}
			r.log.Warn(ctx, "provider call failed",
				logger.String("provider", p.Name()),
				logger.Int("attempt", attempt+1),
				logger.Error(err))
		}
	}
	if lastErr == nil {
		return Draft{}, ErrNoProvider
	}
	return Draft{}, errors.Join(ErrAllProvidersFailed, lastErr)
}

// assemble fills the derived fields a finished item carries.
func (r *Rewriter) assemble(item model.NormalizedItem, draft Draft, persona model.Persona) model.RewrittenItem {
	out := model.RewrittenItem{
		NormalizedItem:  item,
		Text:            draft.Content,
		Summary:         draft.Summary,
		Keywords:        draft.Keywords,
		MetaDescription: draft.MetaDescription,
		Persona:         persona.Name,
	}
	if draft.Title != "" {
		out.Title = draft.Title
	}
	out.Slug = Slugify(out.Title)
	if len(out.Keywords) == 0 {
		out.Keywords = ExtractKeywords(draft.Content, maxKeywords)
	}
	if out.MetaDescription == "" {
		out.MetaDescription = truncate(draft.Summary, maxMetaLen)
	}
	out.Description = out.MetaDescription
	return out
}

// truncate cuts s to at most n bytes without splitting a UTF-8 rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
