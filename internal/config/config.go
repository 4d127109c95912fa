// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields plain and tagged with koanf keys.
// - Provide New(ctx) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// SourceConfig describes one external content source.
type SourceConfig struct {
	Name              string   `koanf:"name"`
	Domain            string   `koanf:"domain"`
	URL               string   `koanf:"url"`
	Mechanism         string   `koanf:"mechanism"` // "feed" or "page"
	Categories        []string `koanf:"categories"`
	RequestsPerMinute int      `koanf:"requests_per_minute"`
	TrustWeight       float64  `koanf:"trust_weight"`
	Priority          int      `koanf:"priority"`
	Active            bool     `koanf:"active"`
}

// PersonaConfig describes an editorial persona used to steer rewriting.
type PersonaConfig struct {
	Tone  string `koanf:"tone"`
	Style string `koanf:"style"`
	Focus string `koanf:"focus"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// BatchTimeoutSeconds bounds one whole batch run. Fetches and rewrites
	// still outstanding at the deadline are cancelled per item/source, not
	// the batch.
	BatchTimeoutSeconds int `koanf:"batch_timeout_seconds"`

	// MaxConcurrentFetches caps simultaneous source fetches globally.
	MaxConcurrentFetches int `koanf:"max_concurrent_fetches"`

	// PerSourceArticleLimit and PerSourceNewsLimit cap items taken from a
	// single source per run.
	PerSourceArticleLimit int `koanf:"per_source_article_limit"`
	PerSourceNewsLimit    int `koanf:"per_source_news_limit"`

	// FetchRetryBackoffMS is the pause before the single transient-error retry.
	FetchRetryBackoffMS int `koanf:"fetch_retry_backoff_ms"`

	// Request defaults and caps.
	DefaultArticleLimit int     `koanf:"default_article_limit"`
	DefaultNewsLimit    int     `koanf:"default_news_limit"`
	DefaultEventLimit   int     `koanf:"default_event_limit"`
	MaxLimit            int     `koanf:"max_limit"`
	DefaultMinScore     float64 `koanf:"default_min_score"`
	DefaultNewsMinScore float64 `koanf:"default_news_min_score"`

	// TitleSimilarityThreshold is the near-duplicate ratio for dedup.
	TitleSimilarityThreshold float64 `koanf:"title_similarity_threshold"`

	// RewriteSimilarityThreshold is the maximum allowed similarity between
	// a rewrite and its source text. OriginalityRetryCap bounds retries of
	// rewrites that come back too close to the source.
	RewriteSimilarityThreshold float64 `koanf:"rewrite_similarity_threshold"`
	OriginalityRetryCap        int     `koanf:"originality_retry_cap"`

	// Scoring configuration. Weights are tunable; the combination function
	// (weighted sum with clamping) is fixed.
	ScoreWeights           map[string]float64 `koanf:"score_weights"`
	FreshnessHalfLifeHours int                `koanf:"freshness_half_life_hours"`
	MinBodyLength          int                `koanf:"min_body_length"`
	MaxBodyLength          int                `koanf:"max_body_length"`
	NewsRecencyBoost       float64            `koanf:"news_recency_boost"`

	// Rewrite provider chain, tried in order until one succeeds.
	ProviderOrder      []string `koanf:"provider_order"`
	GeminiAPIKey       string   `koanf:"gemini_api_key"`
	GeminiModel        string   `koanf:"gemini_model"`
	OpenAIAPIKey       string   `koanf:"openai_api_key"`
	OpenAIModel        string   `koanf:"openai_model"`
	OpenAIEndpoint     string   `koanf:"openai_endpoint"`
	AnthropicAPIKey    string   `koanf:"anthropic_api_key"`
	AnthropicModel     string   `koanf:"anthropic_model"`
	RewriteConcurrency int      `koanf:"rewrite_concurrency"`
	RewriteMaxTokens   int      `koanf:"rewrite_max_tokens"`
	RewriteTemperature float64  `koanf:"rewrite_temperature"`

	// Sources is the content source catalog.
	Sources []SourceConfig `koanf:"sources"`

	// Personas maps persona names to editorial profiles.
	Personas map[string]PersonaConfig `koanf:"personas"`

	// DefaultPersona is applied when a request names none.
	DefaultPersona string `koanf:"default_persona"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                   "info",
		Addr:                       ":8000",
		BatchTimeoutSeconds:        300,
		MaxConcurrentFetches:       10,
		PerSourceArticleLimit:      10,
		PerSourceNewsLimit:         5,
		FetchRetryBackoffMS:        500,
		DefaultArticleLimit:        20,
		DefaultNewsLimit:           15,
		DefaultEventLimit:          10,
		MaxLimit:                   50,
		DefaultMinScore:            0.7,
		DefaultNewsMinScore:        0.6,
		TitleSimilarityThreshold:   0.9,
		RewriteSimilarityThreshold: 0.75,
		OriginalityRetryCap:        2,
		ScoreWeights: map[string]float64{
			"source_trust":    0.25,
			"freshness":       0.25,
			"length":          0.15,
			"keyword_density": 0.15,
			"category_match":  0.20,
		},
		FreshnessHalfLifeHours: 48,
		MinBodyLength:          200,
		MaxBodyLength:          20_000,
		NewsRecencyBoost:       0.15,
		ProviderOrder:          []string{"gemini", "openai", "anthropic"},
		GeminiModel:            "gemini-flash-latest",
		OpenAIModel:            "gpt-4o-mini",
		OpenAIEndpoint:         "https://api.openai.com/v1/chat/completions",
		AnthropicModel:         "claude-3-5-haiku-latest",
		RewriteConcurrency:     runtime.NumCPU(),
		RewriteMaxTokens:       4096,
		RewriteTemperature:     0.7,
		Sources:                defaultSources(),
		Personas:               defaultPersonas(),
		DefaultPersona:         "games",
	}
}

// defaultPersonas returns the editorial profiles the service ships with.
func defaultPersonas() map[string]PersonaConfig {
	return map[string]PersonaConfig{
		"games": {
			Tone:  "casual and enthusiastic",
			Style: "gamer language, technical references",
			Focus: "gameplay, reviews, news",
		},
		"cinema": {
			Tone:  "analytical and cinematographic",
			Style: "specialized critic, artistic references",
			Focus: "analysis, behind the scenes, trends",
		},
		"tech": {
			Tone:  "informative and precise",
			Style: "technical but accessible, innovation focused",
			Focus: "gadgets, trends, technical analysis",
		},
	}
}

// defaultSources is the built-in source catalog, overridable via file/env.
func defaultSources() []SourceConfig {
	return []SourceConfig{
		{Name: "Anime News Network", Domain: "animenewsnetwork.com", URL: "https://www.animenewsnetwork.com/all/rss.xml", Mechanism: "feed", Categories: []string{"animes"}, RequestsPerMinute: 30, TrustWeight: 0.9, Priority: 2, Active: true},
		{Name: "Crunchyroll News", Domain: "crunchyroll.com", URL: "https://www.crunchyroll.com/news/rss", Mechanism: "feed", Categories: []string{"animes"}, RequestsPerMinute: 30, TrustWeight: 0.85, Priority: 1, Active: true},
		{Name: "Manga Updates", Domain: "mangaupdates.com", URL: "https://www.mangaupdates.com/rss.php", Mechanism: "feed", Categories: []string{"manga"}, RequestsPerMinute: 30, TrustWeight: 0.8, Priority: 1, Active: true},
		{Name: "The Verge Entertainment", Domain: "theverge.com", URL: "https://www.theverge.com/entertainment/rss/index.xml", Mechanism: "feed", Categories: []string{"filmes"}, RequestsPerMinute: 30, TrustWeight: 0.9, Priority: 2, Active: true},
		{Name: "Screen Rant", Domain: "screenrant.com", URL: "https://screenrant.com/feed/", Mechanism: "feed", Categories: []string{"filmes"}, RequestsPerMinute: 30, TrustWeight: 0.8, Priority: 1, Active: true},
		{Name: "GameSpot", Domain: "gamespot.com", URL: "https://www.gamespot.com/feeds/news/", Mechanism: "feed", Categories: []string{"games"}, RequestsPerMinute: 30, TrustWeight: 0.9, Priority: 3, Active: true},
		{Name: "IGN Games", Domain: "ign.com", URL: "https://feeds.ign.com/ign/games-all", Mechanism: "feed", Categories: []string{"games"}, RequestsPerMinute: 30, TrustWeight: 0.9, Priority: 2, Active: true},
		{Name: "Polygon", Domain: "polygon.com", URL: "https://www.polygon.com/rss/index.xml", Mechanism: "feed", Categories: []string{"games"}, RequestsPerMinute: 30, TrustWeight: 0.85, Priority: 1, Active: true},
		{Name: "TechCrunch", Domain: "techcrunch.com", URL: "https://techcrunch.com/feed/", Mechanism: "feed", Categories: []string{"tech"}, RequestsPerMinute: 30, TrustWeight: 0.9, Priority: 2, Active: true},
		{Name: "Ars Technica", Domain: "arstechnica.com", URL: "https://feeds.arstechnica.com/arstechnica/index", Mechanism: "feed", Categories: []string{"tech"}, RequestsPerMinute: 30, TrustWeight: 0.9, Priority: 1, Active: true},
		{Name: "Eventbrite Geek", Domain: "eventbrite.com", URL: "https://www.eventbrite.com/rss/organizer_list_events/123456789", Mechanism: "feed", Categories: []string{"events"}, RequestsPerMinute: 20, TrustWeight: 0.7, Priority: 1, Active: true},
		{Name: "Comic Con Events", Domain: "comic-con.org", URL: "https://www.comic-con.org/events.rss", Mechanism: "feed", Categories: []string{"events"}, RequestsPerMinute: 20, TrustWeight: 0.8, Priority: 2, Active: true},
	}
}
