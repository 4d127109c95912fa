// Package normalize canonicalizes raw items into a uniform shape. The
// transformation is pure and deterministic: identical input always yields
// identical output, fingerprints included.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
)

var (
	rePunct      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	reWhitespace = regexp.MustCompile(`\s+`)
	reTags       = regexp.MustCompile(`<[^>]*>`)
)

// Window restricts the item timestamp. Zero bounds are open.
type Window struct {
	NotBefore time.Time
	NotAfter  time.Time
}

// Contains reports whether ts falls inside the window.
func (w Window) Contains(ts time.Time) bool {
	if !w.NotBefore.IsZero() && ts.Before(w.NotBefore) {
		return false
	}
	if !w.NotAfter.IsZero() && ts.After(w.NotAfter) {
		return false
	}
	return true
}

// Normalizer turns RawItems into NormalizedItems.
type Normalizer struct {
	window    Window
	eventMode bool // window applies to the event date instead of publication
	exclude   map[string]bool
}

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithWindow sets the allowed timestamp window.
func WithWindow(w Window) Option {
	return func(n *Normalizer) { n.window = w }
}

// WithEventMode makes the window apply to the extracted event date.
func WithEventMode() Option {
	return func(n *Normalizer) { n.eventMode = true }
}

// WithExcludedURLs registers caller-supplied exclusion hints. URLs are
// compared in canonical form.
func WithExcludedURLs(urls []string) Option {
	return func(n *Normalizer) {
		if len(urls) == 0 {
			return
		}
		n.exclude = make(map[string]bool, len(urls))
		for _, u := range urls {
			n.exclude[CanonicalURL(u)] = true
		}
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize canonicalizes one raw item or rejects it with a sentinel error.
func (n *Normalizer) Normalize(raw model.RawItem) (model.NormalizedItem, error) {
	title := CleanText(raw.Title)
	body := CleanText(raw.Body)

	if title == "" {
		return model.NormalizedItem{}, ErrMissingTitle
	}
	if body == "" {
		return model.NormalizedItem{}, ErrMissingBody
	}

	canonical := CanonicalURL(raw.URL)
	if n.exclude != nil && n.exclude[canonical] {
		return model.NormalizedItem{}, ErrExcludedURL
	}

	item := model.NormalizedItem{
		Title:              title,
		Body:               body,
		URL:                canonical,
		PublishedAt:        raw.PublishedAt.UTC(),
		TitleFingerprint:   TitleFingerprint(title),
		ContentFingerprint: ContentFingerprint(body),
		Source:             raw.Source,
		FetchOrder:         raw.FetchOrder,
	}

	windowTS := item.PublishedAt
	if n.eventMode {
		item.Location = ExtractLocation(body)
		item.EventAt = ExtractEventDate(title, body, raw.PublishedAt)
		windowTS = item.EventAt
	}
	if !n.window.Contains(windowTS) {
		return model.NormalizedItem{}, ErrOutsideWindow
	}

	return item, nil
}

// CleanText strips markup tags, trims and collapses internal whitespace runs
// into single spaces while preserving line structure loosely.
func CleanText(s string) string {
	s = reTags.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// TitleFingerprint returns the case-folded, punctuation-stripped,
// whitespace-collapsed form of a title.
func TitleFingerprint(title string) string {
	t := strings.ToLower(title)
	t = rePunct.ReplaceAllString(t, " ")
	return strings.TrimSpace(reWhitespace.ReplaceAllString(t, " "))
}

// ContentFingerprint returns a stable hex hash of the normalized body.
func ContentFingerprint(body string) string {
	sum := sha256.Sum256([]byte(TitleFingerprint(body)))
	return hex.EncodeToString(sum[:])
}

// CanonicalURL lowercases the host, drops fragments and strips tracking
// query parameters. Unparseable URLs are returned trimmed as-is.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	q := u.Query()
	for key := range q {
		if strings.HasPrefix(key, "utm_") || key == "ref" || key == "fbclid" {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()
	return strings.TrimSuffix(u.String(), "/")
}
