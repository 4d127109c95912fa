// Package similarity measures how close two texts are, for the originality
// contract on rewrites and for near-duplicate title detection.
package similarity

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

var (
	reNonWord    = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// Weights for the combined ratio. The sequence component catches verbatim
// copies, the token component catches reshuffled copies.
const (
	sequenceWeight = 0.5
	tokenWeight    = 0.5
)

// Preprocess lowercases, strips punctuation and collapses whitespace.
func Preprocess(text string) string {
	text = strings.ToLower(text)
	text = reNonWord.ReplaceAllString(text, " ")
	return strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
}

// Ratio returns a similarity score in [0,1] between two texts, 1 meaning
// identical. It combines a normalized edit-distance ratio with word-bigram
// overlap. Deterministic for identical inputs.
func Ratio(a, b string) float64 {
	ca, cb := Preprocess(a), Preprocess(b)
	if ca == "" && cb == "" {
		return 1
	}
	if ca == "" || cb == "" {
		return 0
	}
	seq := SequenceRatio(ca, cb)
	tok := bigramOverlap(ca, cb)
	return seq*sequenceWeight + tok*tokenWeight
}

// SequenceRatio is 1 - dist/maxLen over the given strings. Inputs are
// expected to be preprocessed already.
func SequenceRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	r := 1 - float64(dist)/float64(longest)
	if r < 0 {
		return 0
	}
	return r
}

// bigramOverlap computes the Jaccard index over word bigrams.
func bigramOverlap(a, b string) float64 {
	ba := bigrams(a)
	bb := bigrams(b)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}
	inter := 0
	for g := range ba {
		if bb[g] {
			inter++
		}
	}
	union := len(ba) + len(bb) - inter
	return float64(inter) / float64(union)
}

func bigrams(text string) map[string]bool {
	words := strings.Fields(text)
	out := make(map[string]bool, len(words))
	for i := 0; i+1 < len(words); i++ {
		out[words[i]+" "+words[i+1]] = true
	}
	return out
}
