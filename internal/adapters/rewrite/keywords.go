package rewrite

import (
	"sort"
	"strings"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/similarity"
)

// Keywords are derived from rewritten text, never from the source, so
// source-specific artifacts cannot leak into the output.

const minKeywordLen = 4

var stopwords = map[string]bool{
	"about": true, "after": true, "also": true, "been": true, "before": true,
	"being": true, "between": true, "could": true, "every": true, "from": true,
	"have": true, "into": true, "just": true, "like": true, "more": true,
	"most": true, "only": true, "other": true, "over": true, "said": true,
	"some": true, "than": true, "that": true, "their": true, "them": true,
	"then": true, "there": true, "these": true, "they": true, "this": true,
	"those": true, "through": true, "under": true, "were": true, "what": true,
	"when": true, "where": true, "which": true, "while": true, "will": true,
	"with": true, "would": true, "your": true,
}

// ExtractKeywords returns up to n frequent content words from text, most
// frequent first, ties broken alphabetically for determinism.
func ExtractKeywords(text string, n int) []string {
	counts := make(map[string]int)
	for _, word := range strings.Fields(similarity.Preprocess(text)) {
		if len(word) < minKeywordLen || stopwords[word] {
			continue
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}
