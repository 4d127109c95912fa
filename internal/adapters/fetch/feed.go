package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
)

const defaultFeedTimeout = 20 * time.Second

// FeedClient retrieves items from RSS/Atom sources.
type FeedClient struct {
	parser *gofeed.Parser
}

// FeedOption applies a configuration option to the FeedClient.
type FeedOption func(*FeedClient)

// WithFeedHTTPClient overrides the HTTP client used for feed requests.
func WithFeedHTTPClient(c *http.Client) FeedOption {
	return func(f *FeedClient) {
		if c != nil {
			f.parser.Client = c
		}
	}
}

// NewFeedClient creates a feed fetch client.
func NewFeedClient(opts ...FeedOption) *FeedClient {
	f := &FeedClient{parser: gofeed.NewParser()}
	f.parser.Client = &http.Client{Timeout: defaultFeedTimeout}
	f.parser.UserAgent = userAgent
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch parses the source's feed and returns up to limit raw items.
func (f *FeedClient) Fetch(ctx context.Context, src *model.Source, limit int) ([]model.RawItem, error) {
	feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		// 5xx and 429 are worth retrying; other HTTP failures and
		// malformed feeds are permanent for this run.
		var httpErr gofeed.HTTPError
		ok := asHTTPError(err, &httpErr)
		if ok &&
			httpErr.StatusCode < 500 && httpErr.StatusCode != http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: feed %s: %w", ErrPermanent, src.URL, err)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: feed %s: %w", ErrTransient, src.URL, err)
		}
		if ok {
			return nil, fmt.Errorf("%w: feed %s: %w", ErrTransient, src.URL, err)
		}
		return nil, fmt.Errorf("%w: feed %s: %w", ErrPermanent, src.URL, err)
	}

	items := make([]model.RawItem, 0, limit)
	for _, entry := range feed.Items {
		if len(items) >= limit {
			break
		}
		body := entry.Content
		if body == "" {
			body = entry.Description
		}
		items = append(items, model.RawItem{
			Title:       entry.Title,
			Body:        body,
			URL:         entry.Link,
			PublishedAt: entryTime(entry),
			Source:      src,
		})
	}
	return items, nil
}

// entryTime resolves an entry timestamp, preferring parsed feed fields and
// falling back to lenient parsing of the raw string.
func entryTime(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC()
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC()
	}
	if entry.Published != "" {
		if ts, err := dateparse.ParseAny(entry.Published); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

func asHTTPError(err error, target *gofeed.HTTPError) bool {
	he, ok := err.(gofeed.HTTPError) //nolint:errorlint // gofeed returns the value directly
	if ok {
		*target = he
	}
	return ok
}
