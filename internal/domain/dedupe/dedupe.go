// Package dedupe removes near-duplicate candidates within a single batch run.
// It has no memory across batches; cross-batch suppression belongs to the
// caller's own store.
package dedupe

import (
	"strings"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
	"github.com/Diego-de-Souza/service-generate-content/internal/domain/similarity"
)

const defaultThreshold = 0.9

// Deduper removes items that duplicate an earlier surviving item: same
// canonical URL, same content hash, or near-duplicate titles (identical
// fingerprints, one title extending the other with trailing words, or
// within the similarity threshold).
type Deduper struct {
	threshold float64
}

// Option applies a configuration option to the Deduper.
type Option func(*Deduper)

// WithThreshold sets the near-duplicate title similarity threshold (0,1].
func WithThreshold(t float64) Option {
	return func(d *Deduper) {
		if t > 0 && t <= 1 {
			d.threshold = t
		}
	}
}

// New creates a Deduper.
func New(opts ...Option) *Deduper {
	d := &Deduper{threshold: defaultThreshold}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dedupe filters items in fetch order. On a conflict the first-seen item
// survives unless the newcomer's source has strictly higher priority, in
// which case the newcomer replaces it in place, keeping the earlier slot so
// fetch order is preserved. Returns survivors and the number removed.
func (d *Deduper) Dedupe(items []model.NormalizedItem) ([]model.NormalizedItem, int) {
	kept := make([]model.NormalizedItem, 0, len(items))

	for _, item := range items {
		idx := d.conflictIndex(kept, item)
		if idx < 0 {
			kept = append(kept, item)
			continue
		}
		if sourcePriority(item) > sourcePriority(kept[idx]) {
			kept[idx] = item
		}
	}

	return kept, len(items) - len(kept)
}

// conflictIndex returns the position of a surviving duplicate of item, or -1.
func (d *Deduper) conflictIndex(kept []model.NormalizedItem, item model.NormalizedItem) int {
	for i := range kept {
		if item.URL != "" && kept[i].URL == item.URL {
			return i
		}
		if item.ContentFingerprint != "" && kept[i].ContentFingerprint == item.ContentFingerprint {
			return i
		}
		if d.sameStory(kept[i].TitleFingerprint, item.TitleFingerprint) {
			return i
		}
	}
	return -1
}

// sameStory reports whether two title fingerprints identify the same story.
// Headline variants often differ only by trailing words, which edit distance
// alone under-scores, so one fingerprint extending the other counts as a match.
func (d *Deduper) sameStory(a, b string) bool {
	if a == b {
		return true
	}
	if extendsTitle(a, b) || extendsTitle(b, a) {
		return true
	}
	return similarity.SequenceRatio(a, b) >= d.threshold
}

// extendsTitle reports whether longer is shorter plus trailing words.
func extendsTitle(longer, shorter string) bool {
	if shorter == "" || len(longer) <= len(shorter) {
		return false
	}
	return strings.HasPrefix(longer, shorter) && longer[len(shorter)] == ' '
}

func sourcePriority(item model.NormalizedItem) int {
	if item.Source == nil {
		return 0
	}
	return item.Source.Priority
}
