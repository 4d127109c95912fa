// Package types contains batch request and result types shared across the
// application.
package types

import (
	"fmt"
	"time"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
)

// Kind selects one of the three batch contracts.
type Kind string

// Batch kinds.
const (
	KindArticles Kind = "articles"
	KindNews     Kind = "news"
	KindEvents   Kind = "events"
)

// BatchRequest is the validated, immutable input of one batch run.
type BatchRequest struct {
	Kind           Kind
	Category       string
	Persona        string
	Limit          int
	MinScore       float64
	HoursAgo       int      // news recency window
	DaysAhead      int      // events horizon
	LocationFilter string   // events only
	ExcludeURLs    []string // caller-supplied exclusion hints
}

// FieldError reports a request validation failure with a field-level reason.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks field-level constraints. Limit zero is valid and yields an
// empty batch; negative values and out-of-range scores are rejected rather
// than clamped.
func (r *BatchRequest) Validate() error {
	if r.Limit < 0 {
		return &FieldError{Field: "limit", Reason: "must not be negative"}
	}
	if r.MinScore < 0 || r.MinScore > 1 {
		return &FieldError{Field: "min_score", Reason: "must be within [0,1]"}
	}
	switch r.Kind {
	case KindNews:
		if r.HoursAgo <= 0 {
			return &FieldError{Field: "hours_ago", Reason: "must be positive"}
		}
	case KindEvents:
		if r.DaysAhead <= 0 {
			return &FieldError{Field: "days_ahead", Reason: "must be positive"}
		}
	}
	return nil
}

// StageRejections counts items dropped at each pipeline stage.
type StageRejections struct {
	Fetch         int `json:"fetch"`
	Normalize     int `json:"normalize"`
	Duplicate     int `json:"duplicate"`
	Rewrite       int `json:"rewrite"`
	BelowMinScore int `json:"below_min_score"`
}

// Metadata describes how a batch run went, independent of its items. Partial
// success must always be distinguishable here from total failure.
type Metadata struct {
	BatchID         string          `json:"batch_id"`
	SourcesUsed     int             `json:"sources_used"`
	DegradedSources []string        `json:"degraded_sources"`
	Rejected        StageRejections `json:"rejected"`
	PersonaApplied  string          `json:"persona_applied,omitempty"`
	ProcessingDate  time.Time       `json:"processing_date"`
}

// Result is the outcome of one batch run.
type Result struct {
	Items    []model.ScoredItem
	Metadata Metadata
	Elapsed  time.Duration
}
