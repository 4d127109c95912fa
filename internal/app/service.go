// Package service provides the core batch pipeline service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Diego-de-Souza/service-generate-content/internal/adapters/fetch"
	"github.com/Diego-de-Souza/service-generate-content/internal/adapters/registry"
	"github.com/Diego-de-Souza/service-generate-content/internal/adapters/rewrite"
	"github.com/Diego-de-Souza/service-generate-content/internal/config"
	"github.com/Diego-de-Souza/service-generate-content/internal/domain/dedupe"
	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
	"github.com/Diego-de-Souza/service-generate-content/internal/domain/normalize"
	"github.com/Diego-de-Souza/service-generate-content/internal/domain/scoring"
	"github.com/Diego-de-Souza/service-generate-content/internal/domain/types"
	"github.com/Diego-de-Souza/service-generate-content/pkg/logger"
	"github.com/Diego-de-Souza/service-generate-content/pkg/metrics"
)

const eventDescriptionLen = 300

// Service runs the stateless fetch-process-return pipeline behind the batch
// endpoints. Every batch is independent; the only state held between runs is
// the wired components themselves.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Core components, built on Start.
	registry *registry.Registry
	fetcher  *fetch.Fetcher
	rewriter *rewrite.Rewriter
	deduper  *dedupe.Deduper
	scorer   *scoring.Scorer
	personas map[string]model.Persona

	started bool

	now    func() time.Time
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithFetcher replaces the fetcher, mainly for tests.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithRewriter replaces the rewriter, mainly for tests.
func WithRewriter(r *rewrite.Rewriter) Option {
	return func(s *Service) {
		if r != nil {
			s.rewriter = r
		}
	}
}

// WithClock overrides the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service over the given configuration.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start wires the pipeline components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting batch pipeline service...")

	s.registry = registry.New(ctx, s.sources())
	metrics.UpdateSourcesConfigured(s.registry.Count())

	if s.fetcher == nil {
		s.fetcher = fetch.New(
			fetch.WithClient(model.MechanismFeed, fetch.NewFeedClient()),
			fetch.WithClient(model.MechanismPage, fetch.NewPageClient()),
			fetch.WithLimiters(s.limiterFor),
			fetch.WithMaxConcurrent(s.cfg.MaxConcurrentFetches),
			fetch.WithRetryBackoff(time.Duration(s.cfg.FetchRetryBackoffMS)*time.Millisecond),
			fetch.WithLogger(s.logger.Named("fetch")),
		)
	}
	if s.rewriter == nil {
		s.rewriter = rewrite.NewRewriter(s.providers(),
			rewrite.WithSimilarityThreshold(s.cfg.RewriteSimilarityThreshold),
			rewrite.WithOriginalityRetries(s.cfg.OriginalityRetryCap),
			rewrite.WithConcurrency(s.cfg.RewriteConcurrency),
			rewrite.WithLogger(s.logger.Named("rewrite")),
		)
	}
	s.deduper = dedupe.New(
		dedupe.WithThreshold(s.cfg.TitleSimilarityThreshold),
	)
	s.scorer = scoring.New(
		scoring.WithWeights(s.cfg.ScoreWeights),
		scoring.WithFreshnessHalfLife(time.Duration(s.cfg.FreshnessHalfLifeHours)*time.Hour),
		scoring.WithLengthBand(s.cfg.MinBodyLength, s.cfg.MaxBodyLength),
		scoring.WithNow(s.now),
	)

	s.personas = make(map[string]model.Persona, len(s.cfg.Personas))
	for name, p := range s.cfg.Personas {
		s.personas[name] = model.Persona{Name: name, Tone: p.Tone, Style: p.Style, Focus: p.Focus}
	}

	s.started = true
	s.logger.Info(ctx, "batch pipeline service started",
		logger.Int("sources", s.registry.Count()),
		logger.Int("personas", len(s.personas)),
	)
	return nil
}

// Stop shuts the service down. The pipeline holds no background workers
// between batches, so stopping only flips readiness.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "batch pipeline service stopped")
}

// Ready reports whether the service can accept batch requests.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// AIServices reports the readiness of each configured rewrite provider.
func (s *Service) AIServices() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rewriter == nil {
		return map[string]bool{}
	}
	return s.rewriter.Providers()
}

// SourceCount returns the number of active configured sources.
func (s *Service) SourceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.registry == nil {
		return 0
	}
	return s.registry.Count()
}

// Catalog returns the configured source catalog grouped by category.
func (s *Service) Catalog() map[string][]model.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.registry == nil {
		return map[string][]model.Source{}
	}
	return s.registry.Catalog()
}

// Defaults returns the configured default limit and minimum score for a
// batch kind, applied when the request omits them.
func (s *Service) Defaults(kind types.Kind) (int, float64) {
	switch kind {
	case types.KindNews:
		return s.cfg.DefaultNewsLimit, s.cfg.DefaultNewsMinScore
	case types.KindEvents:
		return s.cfg.DefaultEventLimit, 0
	default:
		return s.cfg.DefaultArticleLimit, s.cfg.DefaultMinScore
	}
}

// MaxLimit returns the per-request item cap.
func (s *Service) MaxLimit() int { return s.cfg.MaxLimit }

// ProcessBatch runs one complete pipeline pass for a validated request.
// Degraded sources and per-item drops never fail the batch; the only hard
// failures are an unstarted service and a missing provider chain for kinds
// that rewrite.
func (s *Service) ProcessBatch(ctx context.Context, req types.BatchRequest) (types.Result, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return types.Result{}, ErrNotStarted
	}
	if req.Kind != types.KindEvents && !s.rewriter.Configured() {
		metrics.RecordBatch(string(req.Kind), "unavailable")
		return types.Result{}, ErrAIUnavailable
	}

	start := s.now()
	meta := types.Metadata{
		BatchID:         uuid.NewString(),
		DegradedSources: []string{},
		ProcessingDate:  start.UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.BatchTimeoutSeconds)*time.Second)
	defer cancel()

	log := s.logger.Named("batch")
	log.Info(ctx, "batch started",
		logger.String("batch_id", meta.BatchID),
		logger.String("kind", string(req.Kind)),
		logger.String("category", req.Category),
		logger.Int("limit", req.Limit),
	)

	// Limit zero is a valid request for an empty batch.
	if req.Limit == 0 {
		if req.Kind != types.KindEvents {
			meta.PersonaApplied = s.personaFor(ctx, req).Name
		}
		metrics.RecordBatch(string(req.Kind), "success")
		return types.Result{Items: []model.ScoredItem{}, Metadata: meta, Elapsed: s.now().Sub(start)}, nil
	}

	sources := s.sourcesFor(req)
	raws, degraded := s.fetcher.Fetch(ctx, sources, s.perSourceLimit(req.Kind))
	meta.DegradedSources = degraded
	meta.SourcesUsed = len(sources) - len(degraded)
	meta.Rejected.Fetch = len(degraded)

	normalized, normRejected := s.normalizeAll(ctx, req, raws)
	meta.Rejected.Normalize = normRejected

	unique, dupes := s.deduper.Dedupe(normalized)
	meta.Rejected.Duplicate = dupes
	if dupes > 0 {
		metrics.RecordStageRejections("duplicate", dupes)
	}

	var (
		rewritten []model.RewrittenItem
		persona   model.Persona
	)
	if req.Kind == types.KindEvents {
		// Event listings are returned factual, not rewritten.
		rewritten = passthrough(unique)
	} else {
		persona = s.personaFor(ctx, req)
		meta.PersonaApplied = persona.Name

		var rewriteRejected int
		var err error
		rewritten, rewriteRejected, err = s.rewriter.RewriteAll(ctx, unique, req.Category, persona)
		if err != nil {
			metrics.RecordBatch(string(req.Kind), "unavailable")
			return types.Result{}, err
		}
		meta.Rejected.Rewrite = rewriteRejected
	}

	if req.Kind == types.KindEvents && req.LocationFilter != "" {
		rewritten = filterLocation(rewritten, req.LocationFilter)
	}

	items, belowMin := s.scorer.Rank(rewritten, req.Category, req.MinScore, req.Limit, s.boostFor(req))
	meta.Rejected.BelowMinScore = belowMin
	if belowMin > 0 {
		metrics.RecordStageRejections("below_min_score", belowMin)
	}

	elapsed := s.now().Sub(start)
	metrics.RecordBatch(string(req.Kind), "success")
	metrics.ObserveBatchDuration(string(req.Kind), elapsed.Seconds())
	metrics.ObserveItemsReturned(string(req.Kind), len(items))

	log.Info(ctx, "batch finished",
		logger.String("batch_id", meta.BatchID),
		logger.Int("returned", len(items)),
		logger.Int("fetched", len(raws)),
		logger.Int("degraded_sources", len(degraded)),
		logger.Any("elapsed", elapsed),
	)

	return types.Result{Items: items, Metadata: meta, Elapsed: elapsed}, nil
}

// normalizeAll builds the per-request normalizer and runs every raw item
// through it, counting drops.
func (s *Service) normalizeAll(ctx context.Context, req types.BatchRequest, raws []model.RawItem) ([]model.NormalizedItem, int) {
	opts := []normalize.Option{
		normalize.WithExcludedURLs(req.ExcludeURLs),
	}
	switch req.Kind {
	case types.KindNews:
		opts = append(opts, normalize.WithWindow(normalize.Window{
			NotBefore: s.now().Add(-time.Duration(req.HoursAgo) * time.Hour),
		}))
	case types.KindEvents:
		opts = append(opts,
			normalize.WithEventMode(),
			normalize.WithWindow(normalize.Window{
				NotBefore: s.now(),
				NotAfter:  s.now().AddDate(0, 0, req.DaysAhead),
			}),
		)
	}
	normalizer := normalize.New(opts...)

	out := make([]model.NormalizedItem, 0, len(raws))
	rejected := 0
	for _, raw := range raws {
		item, err := normalizer.Normalize(raw)
		if err != nil {
			rejected++
			s.logger.Debug(ctx, "item dropped at normalize",
				logger.String("url", raw.URL),
				logger.Error(err),
			)
			continue
		}
		out = append(out, item)
	}
	if rejected > 0 {
		metrics.RecordStageRejections("normalize", rejected)
	}
	return out, rejected
}

// sourcesFor selects the sources a request draws from. Event sources only
// serve event batches and never leak into the other kinds.
func (s *Service) sourcesFor(req types.BatchRequest) []*model.Source {
	if req.Kind == types.KindEvents {
		return s.registry.ActiveForCategory("events")
	}
	if req.Category != "" {
		return s.registry.ActiveForCategory(req.Category)
	}
	var out []*model.Source
	for _, src := range s.registry.AllActive() {
		if !src.Supplies("events") {
			out = append(out, src)
		}
	}
	return out
}

func (s *Service) perSourceLimit(kind types.Kind) int {
	if kind == types.KindNews {
		return s.cfg.PerSourceNewsLimit
	}
	return s.cfg.PerSourceArticleLimit
}

// personaFor resolves the request persona, falling back to the configured
// default when the name is unknown or empty.
func (s *Service) personaFor(ctx context.Context, req types.BatchRequest) model.Persona {
	name := req.Persona
	if name == "" {
		name = s.cfg.DefaultPersona
	}
	if p, ok := s.personas[name]; ok {
		return p
	}
	if name != s.cfg.DefaultPersona {
		s.logger.Warn(ctx, "unknown persona, using default",
			logger.String("persona", name),
		)
	}
	return s.personas[s.cfg.DefaultPersona]
}

// boostFor returns the per-item score boost. News batches reward items
// published close to now inside the requested window; other kinds get none.
func (s *Service) boostFor(req types.BatchRequest) func(model.RewrittenItem) float64 {
	if req.Kind != types.KindNews || req.HoursAgo <= 0 {
		return nil
	}
	window := time.Duration(req.HoursAgo) * time.Hour
	boost := s.cfg.NewsRecencyBoost
	now := s.now()
	return func(item model.RewrittenItem) float64 {
		age := now.Sub(item.PublishedAt)
		if age < 0 {
			age = 0
		}
		if age >= window {
			return 0
		}
		return boost * (1 - age.Seconds()/window.Seconds())
	}
}

// limiterFor adapts the registry's per-source limiter to the fetcher.
func (s *Service) limiterFor(name string) fetch.Waiter {
	if lim := s.registry.Limiter(name); lim != nil {
		return lim
	}
	return nil
}

// sources converts config entries to domain sources.
func (s *Service) sources() []model.Source {
	out := make([]model.Source, 0, len(s.cfg.Sources))
	for _, sc := range s.cfg.Sources {
		out = append(out, model.Source{
			Name:              sc.Name,
			Domain:            sc.Domain,
			URL:               sc.URL,
			Mechanism:         model.Mechanism(sc.Mechanism),
			Categories:        sc.Categories,
			RequestsPerMinute: sc.RequestsPerMinute,
			TrustWeight:       sc.TrustWeight,
			Priority:          sc.Priority,
			Active:            sc.Active,
		})
	}
	return out
}

// providers builds the rewrite chain in configured order.
func (s *Service) providers() []rewrite.Provider {
	byName := map[string]rewrite.Provider{
		"gemini": rewrite.NewGeminiClient(
			s.cfg.GeminiAPIKey, s.cfg.GeminiModel,
			s.cfg.RewriteTemperature, s.cfg.RewriteMaxTokens,
		),
		"openai": rewrite.NewOpenAIClient(
			s.cfg.OpenAIAPIKey, s.cfg.OpenAIModel, s.cfg.OpenAIEndpoint,
			s.cfg.RewriteTemperature, s.cfg.RewriteMaxTokens,
		),
		"anthropic": rewrite.NewAnthropicClient(
			s.cfg.AnthropicAPIKey, s.cfg.AnthropicModel,
			s.cfg.RewriteTemperature, s.cfg.RewriteMaxTokens,
		),
	}
	var chain []rewrite.Provider
	for _, name := range s.cfg.ProviderOrder {
		if p, ok := byName[name]; ok {
			chain = append(chain, p)
		}
	}
	return chain
}

// passthrough lifts normalized items into the rewritten shape without
// generation, used for event batches.
func passthrough(items []model.NormalizedItem) []model.RewrittenItem {
	out := make([]model.RewrittenItem, 0, len(items))
	for _, item := range items {
		desc := excerpt(item.Body, eventDescriptionLen)
		out = append(out, model.RewrittenItem{
			NormalizedItem: item,
			Text:           item.Body,
			Description:    desc,
			Summary:        desc,
		})
	}
	return out
}

// excerpt cuts s to at most n bytes without splitting a UTF-8 rune.
func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// filterLocation keeps items whose extracted location contains filter,
// case-insensitively.
func filterLocation(items []model.RewrittenItem, filter string) []model.RewrittenItem {
	needle := strings.ToLower(filter)
	out := make([]model.RewrittenItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Location), needle) {
			out = append(out, item)
		}
	}
	return out
}
