package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/temoto/robotstxt"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
)

const (
	userAgent          = "Mozilla/5.0 (compatible; sgc-batch/1.0)"
	defaultPageTimeout = 20 * time.Second
	maxBodyBytes       = 4 << 20
)

// PageClient scrapes article links from a source's HTML index page, extracts
// each linked article with readability and converts the content to markdown.
// It honors the source domain's robots.txt.
type PageClient struct {
	client    *http.Client
	converter *md.Converter

	mu     sync.Mutex
	robots map[string]*robotstxt.RobotsData
}

// PageOption applies a configuration option to the PageClient.
type PageOption func(*PageClient)

// WithPageHTTPClient overrides the HTTP client used for page requests.
func WithPageHTTPClient(c *http.Client) PageOption {
	return func(p *PageClient) {
		if c != nil {
			p.client = c
		}
	}
}

// NewPageClient creates a page-scrape fetch client.
func NewPageClient(opts ...PageOption) *PageClient {
	p := &PageClient{
		client:    &http.Client{Timeout: defaultPageTimeout},
		converter: md.NewConverter("", true, nil),
		robots:    make(map[string]*robotstxt.RobotsData),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fetch scrapes up to limit articles linked from the source's index page.
// Individual article failures are skipped; the source fails only when the
// index page itself cannot be retrieved.
func (p *PageClient) Fetch(ctx context.Context, src *model.Source, limit int) ([]model.RawItem, error) {
	index, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad source url %q: %w", ErrPermanent, src.URL, err)
	}

	body, err := p.get(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse index %s: %w", ErrPermanent, src.URL, err)
	}

	links := articleLinks(doc, index, limit)
	items := make([]model.RawItem, 0, len(links))
	for _, link := range links {
		item, err := p.fetchArticle(ctx, src, link)
		if err != nil {
			if ctx.Err() != nil {
				return items, fmt.Errorf("%w: %w", ErrTransient, ctx.Err())
			}
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// fetchArticle retrieves one article page and extracts its readable content.
func (p *PageClient) fetchArticle(ctx context.Context, src *model.Source, link *url.URL) (model.RawItem, error) {
	raw, err := p.get(ctx, link.String())
	if err != nil {
		return model.RawItem{}, err
	}

	article, err := readability.FromReader(strings.NewReader(raw), link)
	if err != nil {
		return model.RawItem{}, fmt.Errorf("%w: extract %s: %w", ErrPermanent, link, err)
	}

	body, err := p.converter.ConvertString(article.Content)
	if err != nil || strings.TrimSpace(body) == "" {
		body = article.TextContent
	}

	return model.RawItem{
		Title:       article.Title,
		Body:        body,
		URL:         link.String(),
		PublishedAt: time.Now().UTC(),
		Source:      src,
	}, nil
}

// get performs a robots-checked GET and returns the response body.
func (p *PageClient) get(ctx context.Context, target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%w: bad url %q: %w", ErrPermanent, target, err)
	}
	if !p.allowed(ctx, u) {
		return "", fmt.Errorf("%w: %s", ErrRobots, target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("%w: new request: %w", ErrPermanent, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: get %s: %w", ErrTransient, target, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError,
		resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: get %s: status %d", ErrTransient, target, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return "", fmt.Errorf("%w: get %s: status %d", ErrPermanent, target, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrTransient, target, err)
	}
	return string(data), nil
}

// allowed consults the domain's robots.txt, fetching and caching it on first
// use. Unreachable robots files allow everything.
func (p *PageClient) allowed(ctx context.Context, u *url.URL) bool {
	p.mu.Lock()
	data, ok := p.robots[u.Host]
	p.mu.Unlock()

	if !ok {
		data = p.loadRobots(ctx, u)
		p.mu.Lock()
		p.robots[u.Host] = data
		p.mu.Unlock()
	}
	if data == nil {
		return true
	}
	return data.FindGroup(userAgent).Test(u.Path)
}

func (p *PageClient) loadRobots(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data
}

// articleLinks collects same-host links from the index page, skipping
// navigation targets, deduplicating and preserving document order.
func articleLinks(doc *goquery.Document, index *url.URL, limit int) []*url.URL {
	seen := make(map[string]bool)
	var out []*url.URL

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		link, err := index.Parse(href)
		if err != nil {
			return true
		}
		link.Fragment = ""
		if link.Host != index.Host || link.Path == "" || link.Path == "/" || link.String() == index.String() {
			return true
		}
		if seen[link.String()] {
			return true
		}
		seen[link.String()] = true
		out = append(out, link)
		return len(out) < limit
	})
	return out
}
