// Package scoring computes the multi-factor relevance/quality score that
// decides inclusion and ranking of batch items.
package scoring

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
)

// Factor names as they appear in the weight configuration.
const (
	FactorSourceTrust    = "source_trust"
	FactorFreshness      = "freshness"
	FactorLength         = "length"
	FactorKeywordDensity = "keyword_density"
	FactorCategoryMatch  = "category_match"
)

// Default tuning. All of it is overridable through options; the weighted-sum
// combination itself is part of the contract.
const (
	defaultHalfLife      = 48 * time.Hour
	defaultMinBodyLength = 200
	defaultMaxBodyLength = 20_000
	keywordDensityTarget = 0.02
)

func defaultWeights() map[string]float64 {
	return map[string]float64{
		FactorSourceTrust:    0.25,
		FactorFreshness:      0.25,
		FactorLength:         0.15,
		FactorKeywordDensity: 0.15,
		FactorCategoryMatch:  0.20,
	}
}

// Scorer computes scores and produces the final ordered batch.
type Scorer struct {
	weights       map[string]float64
	halfLife      time.Duration
	minBodyLength int
	maxBodyLength int
	now           func() time.Time
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights sets factor weights from configuration. Non-positive weights
// are ignored.
func WithWeights(weights map[string]float64) Option {
	return func(s *Scorer) {
		if len(weights) == 0 {
			return
		}
		s.weights = make(map[string]float64, len(weights))
		for factor, w := range weights {
			if w > 0 {
				s.weights[factor] = w
			}
		}
	}
}

// WithFreshnessHalfLife sets the age at which the freshness factor halves.
func WithFreshnessHalfLife(d time.Duration) Option {
	return func(s *Scorer) {
		if d > 0 {
			s.halfLife = d
		}
	}
}

// WithLengthBand sets the acceptable body-length band in characters.
func WithLengthBand(minLen, maxLen int) Option {
	return func(s *Scorer) {
		if minLen > 0 && maxLen > minLen {
			s.minBodyLength = minLen
			s.maxBodyLength = maxLen
		}
	}
}

// WithNow injects the clock, for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Scorer.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		weights:       defaultWeights(),
		halfLife:      defaultHalfLife,
		minBodyLength: defaultMinBodyLength,
		maxBodyLength: defaultMaxBodyLength,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the final score in [0,1] for one item under a category.
// Deterministic and reproducible given identical inputs and weights.
func (s *Scorer) Score(item model.RewrittenItem, category string) float64 {
	factors := map[string]float64{
		FactorSourceTrust:    s.sourceTrust(item),
		FactorFreshness:      s.freshness(item.PublishedAt),
		FactorLength:         s.lengthScore(item.Text),
		FactorKeywordDensity: s.keywordDensity(item),
		FactorCategoryMatch:  s.categoryMatch(item, category),
	}

	var sum, totalWeight float64
	for factor, weight := range s.weights {
		sum += factors[factor] * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return clamp01(sum / totalWeight)
}

// Rank scores items, applies a per-item boost, drops those below minScore,
// orders the survivors and truncates to limit. Ordering is score descending,
// ties broken by newer timestamp, then by source registration order so the
// result is fully deterministic. Returns the ranked batch and the count of
// items rejected for scoring below minScore.
func (s *Scorer) Rank(items []model.RewrittenItem, category string, minScore float64, limit int, boost func(model.RewrittenItem) float64) ([]model.ScoredItem, int) {
	scored := make([]model.ScoredItem, 0, len(items))
	rejected := 0

	for _, item := range items {
		score := s.Score(item, category)
		if boost != nil {
			score = clamp01(score + boost(item))
		}
		if score < minScore {
			rejected++
			continue
		}
		scored = append(scored, model.ScoredItem{
			RewrittenItem: item,
			Score:         score,
			Category:      category,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if !scored[i].PublishedAt.Equal(scored[j].PublishedAt) {
			return scored[i].PublishedAt.After(scored[j].PublishedAt)
		}
		return sourceOrder(scored[i].RewrittenItem) < sourceOrder(scored[j].RewrittenItem)
	})

	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, rejected
}

func (s *Scorer) sourceTrust(item model.RewrittenItem) float64 {
	if item.Source == nil {
		return 0
	}
	return clamp01(item.Source.TrustWeight)
}

// freshness decays with age against the configured half-life. Future
// timestamps (upcoming events) count as fully fresh.
func (s *Scorer) freshness(ts time.Time) float64 {
	if ts.IsZero() {
		return 0
	}
	age := s.now().Sub(ts)
	if age <= 0 {
		return 1
	}
	return math.Pow(0.5, age.Hours()/s.halfLife.Hours())
}

// lengthScore is 1 inside the acceptable band and falls off linearly
// outside it.
func (s *Scorer) lengthScore(text string) float64 {
	n := len(text)
	switch {
	case n == 0:
		return 0
	case n < s.minBodyLength:
		return float64(n) / float64(s.minBodyLength)
	case n > s.maxBodyLength:
		return float64(s.maxBodyLength) / float64(n)
	default:
		return 1
	}
}

// keywordDensity measures how often the extracted keywords occur in the
// rewritten text, scaled against a target density.
func (s *Scorer) keywordDensity(item model.RewrittenItem) float64 {
	if len(item.Keywords) == 0 {
		return 0
	}
	text := strings.ToLower(item.Text)
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	occurrences := 0
	for _, kw := range item.Keywords {
		occurrences += strings.Count(text, strings.ToLower(kw))
	}
	density := float64(occurrences) / float64(words)
	return clamp01(density / keywordDensityTarget)
}

// categoryMatch measures how strongly the item belongs to the requested
// category: full marks when the source's affinity covers it, partial when
// the category appears in the item's own keywords or text.
func (s *Scorer) categoryMatch(item model.RewrittenItem, category string) float64 {
	if category == "" {
		return 1
	}
	if item.Source != nil && item.Source.Supplies(category) {
		return 1
	}
	lower := strings.ToLower(category)
	for _, kw := range item.Keywords {
		if strings.ToLower(kw) == lower {
			return 0.6
		}
	}
	if strings.Contains(strings.ToLower(item.Text), lower) {
		return 0.6
	}
	return 0.2
}

func sourceOrder(item model.RewrittenItem) int {
	if item.Source == nil {
		return math.MaxInt
	}
	return item.Source.Order
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
