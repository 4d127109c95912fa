package similarity_test

import (
	"testing"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/similarity"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPreprocess(t *testing.T) {
	Convey("Given raw text with case, punctuation and spacing noise", t, func() {
		Convey("Then preprocessing folds case and strips punctuation", func() {
			So(similarity.Preprocess("Hello, World!"), ShouldEqual, "hello world")
		})

		Convey("And whitespace runs collapse to single spaces", func() {
			So(similarity.Preprocess("  a \t b\n\nc "), ShouldEqual, "a b c")
		})

		Convey("And empty input stays empty", func() {
			So(similarity.Preprocess(""), ShouldEqual, "")
		})
	})
}

func TestSequenceRatio(t *testing.T) {
	Convey("Given two texts", t, func() {
		Convey("Identical texts score 1", func() {
			So(similarity.SequenceRatio("the quick brown fox", "the quick brown fox"), ShouldEqual, 1)
		})

		Convey("Completely different texts score near 0", func() {
			ratio := similarity.SequenceRatio("aaaa aaaa aaaa", "zzzz zzzz zzzz")
			So(ratio, ShouldBeLessThan, 0.2)
		})

		Convey("Preprocessed variants of the same text score 1", func() {
			a := similarity.Preprocess("Hello World")
			b := similarity.Preprocess("hello, world!")
			So(similarity.SequenceRatio(a, b), ShouldEqual, 1)
		})

		Convey("Both empty counts as identical", func() {
			So(similarity.SequenceRatio("", ""), ShouldEqual, 1)
		})
	})
}

func TestRatio(t *testing.T) {
	Convey("Given the combined similarity measure", t, func() {
		Convey("Identical texts score 1", func() {
			So(similarity.Ratio("a small step for man", "a small step for man"), ShouldEqual, 1)
		})

		Convey("A light paraphrase scores between the extremes", func() {
			a := "the studio announced a new game for next year"
			b := "a brand new game was announced by the studio for next year"
			ratio := similarity.Ratio(a, b)
			So(ratio, ShouldBeGreaterThan, 0.2)
			So(ratio, ShouldBeLessThan, 1)
		})

		Convey("Unrelated texts score low", func() {
			a := "quarterly earnings beat analyst expectations again"
			b := "the wizard cast a spell over the misty mountain"
			So(similarity.Ratio(a, b), ShouldBeLessThan, 0.3)
		})
	})
}
