package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if SGC_CONFIG is set
//  3. env (prefix SGC_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("SGC_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SGC_ADDR, SGC_GEMINI_API_KEY, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("SGC_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "sgc_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.BatchTimeoutSeconds <= 0:
		return fmt.Errorf("%w: batch_timeout_seconds must be positive", ErrInvalidConfig)
	case cfg.MaxConcurrentFetches <= 0:
		return fmt.Errorf("%w: max_concurrent_fetches must be positive", ErrInvalidConfig)
	case cfg.TitleSimilarityThreshold <= 0 || cfg.TitleSimilarityThreshold > 1:
		return fmt.Errorf("%w: title_similarity_threshold must be within (0,1]", ErrInvalidConfig)
	case cfg.RewriteSimilarityThreshold <= 0 || cfg.RewriteSimilarityThreshold > 1:
		return fmt.Errorf("%w: rewrite_similarity_threshold must be within (0,1]", ErrInvalidConfig)
	case cfg.MaxLimit <= 0:
		return fmt.Errorf("%w: max_limit must be positive", ErrInvalidConfig)
	}
	for _, s := range cfg.Sources {
		if s.Name == "" || s.URL == "" {
			return fmt.Errorf("%w: source entries need name and url", ErrInvalidConfig)
		}
		if s.Mechanism != "feed" && s.Mechanism != "page" {
			return fmt.Errorf("%w: source %s: unknown mechanism %q", ErrInvalidConfig, s.Name, s.Mechanism)
		}
	}
	return nil
}
