package rewrite

import (
	"strings"
	"testing"
	"unicode/utf8"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseDraft(t *testing.T) {
	Convey("Given provider completion text", t, func() {
		Convey("Clean JSON parses directly", func() {
			d, err := parseDraft(`{"title":"T","content":"C","summary":"S","keywords":["k"],"meta_description":"M"}`)
			So(err, ShouldBeNil)
			So(d.Title, ShouldEqual, "T")
			So(d.Content, ShouldEqual, "C")
			So(d.Keywords, ShouldResemble, []string{"k"})
		})

		Convey("Markdown code fences are stripped before parsing", func() {
			text := "```json\n{\"title\":\"Fenced\",\"content\":\"Body\"}\n```"
			d, err := parseDraft(text)
			So(err, ShouldBeNil)
			So(d.Title, ShouldEqual, "Fenced")
		})

		Convey("JSON missing the title or content is rejected", func() {
			_, err := parseDraft(`{"title":"","content":"x"}`)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "missing title or content")
		})

		Convey("Loose prose falls back to line extraction", func() {
			d, err := parseDraft("# A Headline\nFirst paragraph of the piece.\nSecond paragraph.")
			So(err, ShouldBeNil)
			So(d.Title, ShouldEqual, "A Headline")
			So(d.Content, ShouldContainSubstring, "First paragraph")
			So(d.Summary, ShouldNotBeEmpty)
			So(len(d.MetaDescription), ShouldBeLessThanOrEqualTo, 160)
		})

		Convey("An empty completion is an error", func() {
			_, err := parseDraft("```json\n```")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSlugify(t *testing.T) {
	Convey("Given slug generation", t, func() {
		Convey("Titles become lowercase hyphenated slugs", func() {
			So(Slugify("Big Update Released!"), ShouldEqual, "big-update-released")
		})

		Convey("Accents fold to ASCII", func() {
			So(Slugify("Lançamento de Ação"), ShouldEqual, "lancamento-de-acao")
		})

		Convey("Punctuation disappears without leaving gaps", func() {
			So(Slugify("What's New: 2026 Edition"), ShouldEqual, "whats-new-2026-edition")
		})

		Convey("Long titles are capped", func() {
			long := Slugify(strings.Repeat("extremely long title segment ", 30))
			So(len(long), ShouldBeLessThanOrEqualTo, 100)
			So(strings.HasSuffix(long, "-"), ShouldBeFalse)
		})
	})
}

func TestExtractKeywords(t *testing.T) {
	Convey("Given keyword extraction", t, func() {
		text := "The expansion brings expansion content, expansion missions and fresh missions. " +
			"Players praised the missions and expansion alike."

		Convey("Most frequent content words come first", func() {
			kws := ExtractKeywords(text, 3)
			So(kws, ShouldNotBeEmpty)
			So(kws[0], ShouldEqual, "expansion")
		})

		Convey("Short words and stopwords never appear", func() {
			kws := ExtractKeywords("the and with that this from", 5)
			So(kws, ShouldBeEmpty)
		})

		Convey("The count is capped at n", func() {
			kws := ExtractKeywords(text, 2)
			So(len(kws), ShouldBeLessThanOrEqualTo, 2)
		})

		Convey("Ties break alphabetically for determinism", func() {
			kws := ExtractKeywords("zebra apple zebra apple", 2)
			So(kws, ShouldResemble, []string{"apple", "zebra"})
		})
	})
}

func TestTruncate(t *testing.T) {
	Convey("Given byte-capped truncation", t, func() {
		Convey("Short strings pass through untouched", func() {
			So(truncate("hello", 10), ShouldEqual, "hello")
		})

		Convey("ASCII cuts land exactly on the cap", func() {
			So(truncate("hello world", 5), ShouldEqual, "hello")
		})

		Convey("A cut inside a multibyte rune backs off to the boundary", func() {
			s := strings.Repeat("é", 5) // 2 bytes each
			out := truncate(s, 7)
			So(out, ShouldEqual, strings.Repeat("é", 3))
			So(utf8.ValidString(out), ShouldBeTrue)
		})
	})
}
