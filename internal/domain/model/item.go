// Package model contains domain models passed between pipeline stages.
package model

import "time"

// Mechanism describes how a source's content is retrieved.
type Mechanism string

// Supported fetch mechanisms.
const (
	// MechanismFeed pulls items from an RSS/Atom feed.
	MechanismFeed Mechanism = "feed"
	// MechanismPage scrapes article links from an HTML index page.
	MechanismPage Mechanism = "page"
)

// Source is a configured external content origin. It is immutable for the
// duration of a batch run; only out-of-scope administrative operations may
// change it between runs.
type Source struct {
	Name              string
	Domain            string
	URL               string
	Mechanism         Mechanism
	Categories        []string // category affinity
	RequestsPerMinute int      // per-source rate-limit budget
	TrustWeight       float64  // scoring factor, [0,1]
	Priority          int      // higher wins near-duplicate conflicts
	Order             int      // registration order, assigned by the registry
	Active            bool
}

// Supplies reports whether the source's category affinity covers category.
func (s *Source) Supplies(category string) bool {
	for _, c := range s.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// RawItem is a source's unprocessed offering. Created by the fetcher,
// consumed and discarded by the normalizer.
type RawItem struct {
	Title       string
	Body        string
	URL         string
	PublishedAt time.Time

	// Source is a non-owning back-reference used for attribution and
	// scoring only.
	Source *Source

	// FetchOrder is a deterministic position assigned after all source
	// fetches complete: sources in registration order, items in the order
	// the source returned them.
	FetchOrder int
}

// NormalizedItem is a RawItem with canonical fields and dedup fingerprints.
type NormalizedItem struct {
	Title       string
	Body        string
	URL         string    // canonical form
	PublishedAt time.Time // UTC

	// TitleFingerprint is the case-folded, punctuation-stripped,
	// whitespace-collapsed title. ContentFingerprint is a stable hash of
	// the normalized body. Both are deterministic functions of content.
	TitleFingerprint   string
	ContentFingerprint string

	// Event fields, populated only for event batches.
	Location string
	EventAt  time.Time

	Source     *Source
	FetchOrder int
}

// RewrittenItem carries the AI-generated fields produced once per surviving
// NormalizedItem. Immutable after creation.
type RewrittenItem struct {
	NormalizedItem

	Text            string
	Description     string
	Summary         string
	Keywords        []string
	MetaDescription string
	Slug            string
	Persona         string // persona that drove the rewrite tone
}

// ScoredItem is the terminal entity emitted in a batch response.
type ScoredItem struct {
	RewrittenItem

	Score    float64 // final score in [0,1]
	Category string  // category tag under which the item is returned
}
