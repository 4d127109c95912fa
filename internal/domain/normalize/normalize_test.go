package normalize_test

import (
	"testing"
	"time"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
	"github.com/Diego-de-Souza/service-generate-content/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func rawItem() model.RawItem {
	return model.RawItem{
		Title:       "  New Game <b>Announced</b>  ",
		Body:        "<p>The studio revealed a brand new title today.</p>",
		URL:         "https://Example.com/news/42?utm_source=rss&ref=feed#frag",
		PublishedAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		Source:      &model.Source{Name: "GameSpot"},
		FetchOrder:  3,
	}
}

func TestNormalize(t *testing.T) {
	Convey("Given a default normalizer", t, func() {
		n := normalize.New()

		Convey("When normalizing a well-formed raw item", func() {
			item, err := n.Normalize(rawItem())
			So(err, ShouldBeNil)

			Convey("Then markup and spacing are cleaned", func() {
				So(item.Title, ShouldEqual, "New Game Announced")
				So(item.Body, ShouldEqual, "The studio revealed a brand new title today.")
			})

			Convey("And the URL is canonical", func() {
				So(item.URL, ShouldEqual, "https://example.com/news/42")
			})

			Convey("And fingerprints are populated", func() {
				So(item.TitleFingerprint, ShouldEqual, "new game announced")
				So(item.ContentFingerprint, ShouldNotBeEmpty)
				So(item.ContentFingerprint, ShouldHaveLength, 64)
			})

			Convey("And attribution survives", func() {
				So(item.Source.Name, ShouldEqual, "GameSpot")
				So(item.FetchOrder, ShouldEqual, 3)
			})
		})

		Convey("When the title is empty after cleaning", func() {
			raw := rawItem()
			raw.Title = " <i> </i> "
			_, err := n.Normalize(raw)
			So(err, ShouldEqual, normalize.ErrMissingTitle)
		})

		Convey("When the body is empty after cleaning", func() {
			raw := rawItem()
			raw.Body = ""
			_, err := n.Normalize(raw)
			So(err, ShouldEqual, normalize.ErrMissingBody)
		})
	})

	Convey("Given a normalizer with a recency window", t, func() {
		n := normalize.New(normalize.WithWindow(normalize.Window{
			NotBefore: time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		}))

		Convey("Items published before the window are rejected", func() {
			_, err := n.Normalize(rawItem())
			So(err, ShouldEqual, normalize.ErrOutsideWindow)
		})

		Convey("Items inside the window pass", func() {
			raw := rawItem()
			raw.PublishedAt = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
			_, err := n.Normalize(raw)
			So(err, ShouldBeNil)
		})
	})

	Convey("Given a normalizer with excluded URLs", t, func() {
		n := normalize.New(normalize.WithExcludedURLs([]string{
			"https://example.com/news/42?utm_source=x",
		}))

		Convey("The exclusion matches on the canonical form", func() {
			_, err := n.Normalize(rawItem())
			So(err, ShouldEqual, normalize.ErrExcludedURL)
		})
	})

	Convey("Given an event-mode normalizer", t, func() {
		now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
		n := normalize.New(
			normalize.WithEventMode(),
			normalize.WithWindow(normalize.Window{
				NotBefore: now,
				NotAfter:  now.AddDate(0, 0, 30),
			}),
		)

		Convey("When the body carries a venue and date", func() {
			raw := rawItem()
			raw.Title = "Indie Game Expo"
			raw.Body = "Join us at the Indie Game Expo. Location: Moscone Center, San Francisco. Date: September 5, 2026. Doors open early."
			item, err := n.Normalize(raw)
			So(err, ShouldBeNil)
			So(item.Location, ShouldContainSubstring, "Moscone Center")
			So(item.EventAt.Year(), ShouldEqual, 2026)
			So(item.EventAt.Month(), ShouldEqual, time.September)
		})

		Convey("When no location is present, the online fallback applies", func() {
			raw := rawItem()
			raw.Title = "Community Stream"
			raw.Body = "A community stream happening on September 1, 2026 with developer Q&A for everyone attending remotely."
			item, err := n.Normalize(raw)
			So(err, ShouldBeNil)
			So(item.Location, ShouldEqual, normalize.DefaultLocation)
		})

		Convey("When the event date falls outside the horizon it is rejected", func() {
			raw := rawItem()
			raw.Title = "Far Future Con"
			raw.Body = "Far Future Con takes place on December 25, 2026 at the Berlin Convention Hall."
			_, err := n.Normalize(raw)
			So(err, ShouldEqual, normalize.ErrOutsideWindow)
		})
	})
}

func TestCanonicalURL(t *testing.T) {
	Convey("Given URL canonicalization", t, func() {
		Convey("Tracking parameters are stripped", func() {
			So(normalize.CanonicalURL("https://a.com/p?utm_campaign=x&id=7"),
				ShouldEqual, "https://a.com/p?id=7")
		})

		Convey("Host case and fragments are normalized away", func() {
			So(normalize.CanonicalURL("https://A.Com/Path#section"),
				ShouldEqual, "https://a.com/Path")
		})

		Convey("Trailing slashes are trimmed", func() {
			So(normalize.CanonicalURL("https://a.com/p/"), ShouldEqual, "https://a.com/p")
		})

		Convey("Unparseable input is returned trimmed", func() {
			So(normalize.CanonicalURL("  not a url  "), ShouldEqual, "not a url")
		})
	})
}

func TestTitleFingerprint(t *testing.T) {
	Convey("Given title fingerprinting", t, func() {
		Convey("Case, punctuation and spacing variants collide", func() {
			a := normalize.TitleFingerprint("Hello,  World!")
			b := normalize.TitleFingerprint("hello world")
			So(a, ShouldEqual, b)
		})

		Convey("Different titles stay distinct", func() {
			So(normalize.TitleFingerprint("alpha release"),
				ShouldNotEqual, normalize.TitleFingerprint("beta release"))
		})
	})
}
