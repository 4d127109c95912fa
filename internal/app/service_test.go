package service_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Diego-de-Souza/service-generate-content/internal/adapters/fetch"
	"github.com/Diego-de-Souza/service-generate-content/internal/adapters/rewrite"
	service "github.com/Diego-de-Souza/service-generate-content/internal/app"
	"github.com/Diego-de-Souza/service-generate-content/internal/config"
	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
	"github.com/Diego-de-Souza/service-generate-content/internal/domain/types"
	"github.com/Diego-de-Souza/service-generate-content/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	os.Exit(m.Run())
}

var now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

// stubClient feeds canned raw items per source name.
type stubClient struct {
	items map[string][]model.RawItem
	fail  map[string]error
}

func (s *stubClient) Fetch(_ context.Context, src *model.Source, limit int) ([]model.RawItem, error) {
	if err := s.fail[src.Name]; err != nil {
		return nil, err
	}
	items := s.items[src.Name]
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]model.RawItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].Source = src
	}
	return out, nil
}

// stubProvider rewrites deterministically with original wording.
type stubProvider struct {
	configured bool
}

func (p *stubProvider) Name() string     { return "stub" }
func (p *stubProvider) Configured() bool { return p.configured }

func (p *stubProvider) Rewrite(_ context.Context, req rewrite.Request) (rewrite.Draft, error) {
	return rewrite.Draft{
		Title:   "Take: " + req.Title,
		Content: "A wholly reauthored account of the subject, different wording throughout, covering every fact reported upstream in fresh language for the " + req.Persona.Name + " audience.",
		Summary: "A reauthored account.",
	}, nil
}

func testConfig() *config.Config {
	cfg := config.New(context.Background())
	cfg.Sources = []config.SourceConfig{
		{Name: "alpha", Domain: "alpha.test", URL: "https://alpha.test/rss", Mechanism: "feed", Categories: []string{"games"}, RequestsPerMinute: 60, TrustWeight: 0.9, Priority: 2, Active: true},
		{Name: "beta", Domain: "beta.test", URL: "https://beta.test/rss", Mechanism: "feed", Categories: []string{"games"}, RequestsPerMinute: 60, TrustWeight: 0.6, Priority: 1, Active: true},
		{Name: "expo", Domain: "expo.test", URL: "https://expo.test/rss", Mechanism: "feed", Categories: []string{"events"}, RequestsPerMinute: 60, TrustWeight: 0.8, Priority: 1, Active: true},
	}
	cfg.MinBodyLength = 40
	return cfg
}

// storyAngles keeps fixture titles far enough apart that only intentional
// duplicates collide in dedup.
var storyAngles = map[string][]string{
	"alpha": {"studio acquisition rumors swirl", "engine benchmark results land", "festival lineup finally revealed"},
	"beta":  {"patch rollout hits turbulence", "console supply chain recovers"},
}

func articleItems(source string, n int) []model.RawItem {
	items := make([]model.RawItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, model.RawItem{
			Title:       fmt.Sprintf("%s desk: %s", source, storyAngles[source][i]),
			Body:        fmt.Sprintf("Original report %d from %s with enough body text to clear the minimum length gate comfortably.", i, source),
			URL:         fmt.Sprintf("https://%s.test/story/%d", source, i),
			PublishedAt: now.Add(-time.Duration(i+1) * time.Hour),
		})
	}
	return items
}

func newService(client fetch.Client, provider rewrite.Provider, cfg *config.Config) *service.Service {
	return service.New(cfg,
		service.WithClock(func() time.Time { return now }),
		service.WithFetcher(fetch.New(
			fetch.WithClient(model.MechanismFeed, client),
			fetch.WithRetryBackoff(0),
		)),
		service.WithRewriter(rewrite.NewRewriter(
			[]rewrite.Provider{provider},
			rewrite.WithConcurrency(1),
			rewrite.WithProviderBackoff(0),
		)),
	)
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := newService(&stubClient{}, &stubProvider{configured: true}, testConfig())

		Convey("It is not ready before Start", func() {
			So(svc.Ready(), ShouldBeFalse)

			_, err := svc.ProcessBatch(context.Background(), types.BatchRequest{Kind: types.KindArticles, Limit: 5})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("Start makes it ready, Stop reverses that", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Ready(), ShouldBeTrue)
			So(svc.SourceCount(), ShouldEqual, 3)
			So(svc.AIServices(), ShouldResemble, map[string]bool{"stub": true})

			svc.Stop()
			So(svc.Ready(), ShouldBeFalse)
		})
	})
}

func TestProcessBatchArticles(t *testing.T) {
	Convey("Given a started service over two healthy article sources", t, func() {
		client := &stubClient{items: map[string][]model.RawItem{
			"alpha": articleItems("alpha", 3),
			"beta":  articleItems("beta", 2),
		}}
		svc := newService(client, &stubProvider{configured: true}, testConfig())
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("When processing an articles batch", func() {
			result, err := svc.ProcessBatch(context.Background(), types.BatchRequest{
				Kind:     types.KindArticles,
				Category: "games",
				Limit:    10,
			})

			So(err, ShouldBeNil)
			So(result.Items, ShouldHaveLength, 5)

			Convey("Then items are rewritten and scored", func() {
				So(result.Items[0].Title, ShouldStartWith, "Take:")
				So(result.Items[0].Slug, ShouldNotBeEmpty)
				So(result.Items[0].Score, ShouldBeGreaterThan, 0)
				So(result.Items[0].Persona, ShouldEqual, "games")
			})

			Convey("And ordering is score-descending", func() {
				for i := 1; i < len(result.Items); i++ {
					So(result.Items[i-1].Score, ShouldBeGreaterThanOrEqualTo, result.Items[i].Score)
				}
			})

			Convey("And metadata accounts for the run", func() {
				So(result.Metadata.BatchID, ShouldNotBeEmpty)
				So(result.Metadata.SourcesUsed, ShouldEqual, 2)
				So(result.Metadata.DegradedSources, ShouldBeEmpty)
				So(result.Metadata.PersonaApplied, ShouldEqual, "games")
			})
		})

		Convey("When the limit truncates the batch", func() {
			result, err := svc.ProcessBatch(context.Background(), types.BatchRequest{
				Kind: types.KindArticles, Category: "games", Limit: 2,
			})
			So(err, ShouldBeNil)
			So(result.Items, ShouldHaveLength, 2)
		})

		Convey("When limit is zero the batch is empty but valid", func() {
			result, err := svc.ProcessBatch(context.Background(), types.BatchRequest{
				Kind: types.KindArticles, Limit: 0,
			})
			So(err, ShouldBeNil)
			So(result.Items, ShouldBeEmpty)
			So(result.Metadata.BatchID, ShouldNotBeEmpty)
		})

		Convey("When excluded URLs are provided they are dropped", func() {
			result, err := svc.ProcessBatch(context.Background(), types.BatchRequest{
				Kind:        types.KindArticles,
				Category:    "games",
				Limit:       10,
				ExcludeURLs: []string{"https://alpha.test/story/0"},
			})
			So(err, ShouldBeNil)
			So(result.Items, ShouldHaveLength, 4)
			So(result.Metadata.Rejected.Normalize, ShouldEqual, 1)
		})

		Convey("An unknown persona falls back to the default", func() {
			result, err := svc.ProcessBatch(context.Background(), types.BatchRequest{
				Kind: types.KindArticles, Category: "games", Limit: 5, Persona: "astronaut",
			})
			So(err, ShouldBeNil)
			So(result.Metadata.PersonaApplied, ShouldEqual, "games")
		})
	})

	Convey("Given one source degrading", t, func() {
		client := &stubClient{
			items: map[string][]model.RawItem{"alpha": articleItems("alpha", 2)},
			fail:  map[string]error{"beta": fmt.Errorf("%w: dead feed", fetch.ErrPermanent)},
		}
		svc := newService(client, &stubProvider{configured: true}, testConfig())
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("The batch still succeeds and reports the degradation", func() {
			result, err := svc.ProcessBatch(context.Background(), types.BatchRequest{
				Kind: types.KindArticles, Category: "games", Limit: 10,
			})
			So(err, ShouldBeNil)
			So(result.Items, ShouldHaveLength, 2)
			So(result.Metadata.DegradedSources, ShouldResemble, []string{"beta"})
			So(result.Metadata.SourcesUsed, ShouldEqual, 1)
			So(result.Metadata.Rejected.Fetch, ShouldEqual, 1)
		})
	})

	Convey("Given duplicate stories across sources", t, func() {
		shared := model.RawItem{
			Title:       "Shared Industry Scoop",
			Body:        "The very same story body syndicated to two outlets with identical wording through the wire service.",
			URL:         "https://alpha.test/scoop",
			PublishedAt: now.Add(-time.Hour),
		}
		sharedCopy := shared
		sharedCopy.URL = "https://beta.test/scoop"
		client := &stubClient{items: map[string][]model.RawItem{
			"alpha": {shared},
			"beta":  {sharedCopy},
		}}
		svc := newService(client, &stubProvider{configured: true}, testConfig())
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("Only one survives and the duplicate is counted", func() {
			result, err := svc.ProcessBatch(context.Background(), types.BatchRequest{
				Kind: types.KindArticles, Category: "games", Limit: 10,
			})
			So(err, ShouldBeNil)
			So(result.Items, ShouldHaveLength, 1)
			So(result.Metadata.Rejected.Duplicate, ShouldEqual, 1)

			Convey("And the higher-priority source won the conflict", func() {
				So(result.Items[0].Source.Name, ShouldEqual, "alpha")
			})
		})
	})

	Convey("Given no configured provider", t, func() {
		client := &stubClient{items: map[string][]model.RawItem{"alpha": articleItems("alpha", 1)}}
		svc := newService(client, &stubProvider{configured: false}, testConfig())
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("Article batches fail with the unavailable sentinel", func() {
			_, err := svc.ProcessBatch(context.Background(), types.BatchRequest{
				Kind: types.KindArticles, Category: "games", Limit: 5,
			})
			So(errors.Is(err, service.ErrAIUnavailable), ShouldBeTrue)
		})
	})
}

func TestProcessBatchEvents(t *testing.T) {
	eventBody := func(venue, date string) string {
		return "A gathering for the community. Location: " + venue + ". Date: " + date + ". Tickets on sale now with workshops and signings across the weekend."
	}

	Convey("Given a started service with an event source", t, func() {
		client := &stubClient{items: map[string][]model.RawItem{
			"expo": {
				{
					Title:       "Autumn Games Expo",
					Body:        eventBody("Hamburg Messe", "September 12, 2026"),
					URL:         "https://expo.test/e/1",
					PublishedAt: now.Add(-2 * time.Hour),
				},
				{
					Title:       "Online Speedrun Marathon",
					Body:        "A remote marathon happening on September 20, 2026 with runners attending from home over the whole weekend schedule.",
					URL:         "https://expo.test/e/2",
					PublishedAt: now.Add(-3 * time.Hour),
				},
				{
					Title:       "Winter Fair",
					Body:        eventBody("Vienna Hall", "December 5, 2026"),
					URL:         "https://expo.test/e/3",
					PublishedAt: now.Add(-4 * time.Hour),
				},
			},
		}}
		// Events work without any provider configured.
		svc := newService(client, &stubProvider{configured: false}, testConfig())
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("When processing an events batch", func() {
			result, err := svc.ProcessBatch(context.Background(), types.BatchRequest{
				Kind: types.KindEvents, Limit: 10, DaysAhead: 30,
			})

			So(err, ShouldBeNil)

			Convey("Then only events inside the horizon survive", func() {
				So(result.Items, ShouldHaveLength, 2)
				So(result.Metadata.Rejected.Normalize, ShouldEqual, 1)
			})

			Convey("And extracted event fields are populated", func() {
				byTitle := map[string]model.ScoredItem{}
				for _, item := range result.Items {
					byTitle[item.Title] = item
				}
				expo := byTitle["Autumn Games Expo"]
				So(expo.Location, ShouldContainSubstring, "Hamburg Messe")
				So(expo.EventAt.Month(), ShouldEqual, time.September)

				online := byTitle["Online Speedrun Marathon"]
				So(online.Location, ShouldEqual, "Online/Virtual")
			})

			Convey("And no persona is applied", func() {
				So(result.Metadata.PersonaApplied, ShouldBeEmpty)
			})
		})

		Convey("When a location filter is set", func() {
			result, err := svc.ProcessBatch(context.Background(), types.BatchRequest{
				Kind: types.KindEvents, Limit: 10, DaysAhead: 30, LocationFilter: "hamburg",
			})
			So(err, ShouldBeNil)
			So(result.Items, ShouldHaveLength, 1)
			So(result.Items[0].Title, ShouldEqual, "Autumn Games Expo")
		})
	})

	Convey("Given an event body with multibyte text past the excerpt cap", t, func() {
		body := "Location: Lisbon Pavilion. Date: September 18, 2026. " + strings.Repeat("ê", 200)
		client := &stubClient{items: map[string][]model.RawItem{
			"expo": {{
				Title:       "Lisbon Letterpress Fair",
				Body:        body,
				URL:         "https://expo.test/e/9",
				PublishedAt: now.Add(-time.Hour),
			}},
		}}
		svc := newService(client, &stubProvider{configured: false}, testConfig())
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("The description excerpt never splits a rune", func() {
			result, err := svc.ProcessBatch(context.Background(), types.BatchRequest{
				Kind: types.KindEvents, Limit: 5, DaysAhead: 30,
			})
			So(err, ShouldBeNil)
			So(result.Items, ShouldHaveLength, 1)
			So(len(result.Items[0].Description), ShouldBeLessThanOrEqualTo, 300)
			So(utf8.ValidString(result.Items[0].Description), ShouldBeTrue)
		})
	})
}

func TestProcessBatchNews(t *testing.T) {
	Convey("Given articles of mixed age", t, func() {
		fresh := model.RawItem{
			Title:       "Fresh wire update",
			Body:        "A very recent development with enough substance in the body to pass through every normalization gate in place.",
			URL:         "https://alpha.test/fresh",
			PublishedAt: now.Add(-30 * time.Minute),
		}
		stale := model.RawItem{
			Title:       "Old report resurfaces",
			Body:        "A much older development with enough substance in the body to pass through every normalization gate in place.",
			URL:         "https://alpha.test/stale",
			PublishedAt: now.Add(-72 * time.Hour),
		}
		client := &stubClient{items: map[string][]model.RawItem{
			"alpha": {fresh, stale},
		}}
		svc := newService(client, &stubProvider{configured: true}, testConfig())
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("The hours_ago window drops stale items", func() {
			result, err := svc.ProcessBatch(context.Background(), types.BatchRequest{
				Kind: types.KindNews, Limit: 10, HoursAgo: 24,
			})
			So(err, ShouldBeNil)
			So(result.Items, ShouldHaveLength, 1)
			So(result.Items[0].URL, ShouldEqual, "https://alpha.test/fresh")
			So(result.Metadata.Rejected.Normalize, ShouldEqual, 1)
		})

		Convey("A wider window keeps both", func() {
			result, err := svc.ProcessBatch(context.Background(), types.BatchRequest{
				Kind: types.KindNews, Limit: 10, HoursAgo: 100,
			})
			So(err, ShouldBeNil)
			So(result.Items, ShouldHaveLength, 2)
		})
	})
}
