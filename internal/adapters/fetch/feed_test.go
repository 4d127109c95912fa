package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Diego-de-Souza/service-generate-content/internal/adapters/fetch"
	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <item>
      <title>First Story</title>
      <link>https://example.com/1</link>
      <description>Body of the first story.</description>
      <pubDate>Mon, 24 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Second Story</title>
      <link>https://example.com/2</link>
      <description>Body of the second story.</description>
      <pubDate>Tue, 25 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Third Story</title>
      <link>https://example.com/3</link>
      <description>Body of the third story.</description>
    </item>
  </channel>
</rss>`

func feedSource(url string) *model.Source {
	return &model.Source{
		Name:      "test-feed",
		URL:       url,
		Mechanism: model.MechanismFeed,
		Active:    true,
	}
}

func TestFeedClientFetch(t *testing.T) {
	Convey("Given a server publishing a valid feed", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(sampleFeed))
		}))
		defer srv.Close()

		client := fetch.NewFeedClient(fetch.WithFeedHTTPClient(srv.Client()))

		Convey("When fetching with a generous limit", func() {
			items, err := client.Fetch(context.Background(), feedSource(srv.URL), 10)
			So(err, ShouldBeNil)
			So(items, ShouldHaveLength, 3)

			Convey("Then entries keep feed order and fields", func() {
				So(items[0].Title, ShouldEqual, "First Story")
				So(items[0].URL, ShouldEqual, "https://example.com/1")
				So(items[0].Body, ShouldContainSubstring, "first story")
				So(items[0].PublishedAt.IsZero(), ShouldBeFalse)
				So(items[0].Source.Name, ShouldEqual, "test-feed")
			})

			Convey("And an entry without a date gets a zero timestamp", func() {
				So(items[2].PublishedAt.IsZero(), ShouldBeTrue)
			})
		})

		Convey("When the per-source limit caps the result", func() {
			items, err := client.Fetch(context.Background(), feedSource(srv.URL), 2)
			So(err, ShouldBeNil)
			So(items, ShouldHaveLength, 2)
		})
	})

	Convey("Given a server returning 404", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		Convey("The failure is classified permanent", func() {
			_, err := fetch.NewFeedClient().Fetch(context.Background(), feedSource(srv.URL), 5)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, fetch.ErrPermanent), ShouldBeTrue)
		})
	})

	Convey("Given a server returning 503", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		Convey("The failure is classified transient", func() {
			_, err := fetch.NewFeedClient().Fetch(context.Background(), feedSource(srv.URL), 5)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, fetch.ErrTransient), ShouldBeTrue)
		})
	})

	Convey("Given a server returning 429", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		Convey("Rate limiting is transient, not a degradation", func() {
			_, err := fetch.NewFeedClient().Fetch(context.Background(), feedSource(srv.URL), 5)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, fetch.ErrTransient), ShouldBeTrue)
		})
	})

	Convey("Given a server returning garbage", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("this is not xml"))
		}))
		defer srv.Close()

		Convey("The parse failure is permanent for the run", func() {
			_, err := fetch.NewFeedClient().Fetch(context.Background(), feedSource(srv.URL), 5)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, fetch.ErrPermanent), ShouldBeTrue)
		})
	})
}
