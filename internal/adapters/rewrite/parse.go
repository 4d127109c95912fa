package rewrite

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var reCodeFence = regexp.MustCompile("```(?:json)?\n?")

const (
	maxTitleLen       = 200
	maxSummaryLen     = 300
	maxMetaLen        = 160
	fallbackSummWords = 30
)

// parseDraft decodes the JSON a provider was instructed to return. Models
// occasionally wrap the JSON in markdown code fences or produce loose text;
// fences are stripped and loose text goes through a best-effort extractor.
func parseDraft(text string) (Draft, error) {
	cleaned := strings.TrimSpace(reCodeFence.ReplaceAllString(text, ""))
	if cleaned == "" {
		return Draft{}, fmt.Errorf("%w: empty completion", ErrBadResponse)
	}

	var d Draft
	if err := json.Unmarshal([]byte(cleaned), &d); err == nil {
		if d.Title == "" || d.Content == "" {
			return Draft{}, fmt.Errorf("%w: missing title or content", ErrBadResponse)
		}
		return d, nil
	}

	return extractDraft(cleaned), nil
}

// extractDraft recovers a usable structure from free-form completion text:
// first line becomes the title, the rest the content.
func extractDraft(text string) Draft {
	lines := strings.Split(text, "\n")
	title := truncate(strings.TrimSpace(strings.NewReplacer("#", "", "*", "").Replace(lines[0])), maxTitleLen)

	content := text
	if len(lines) > 1 {
		content = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}

	words := strings.Fields(content)
	summary := content
	if len(words) > fallbackSummWords {
		summary = strings.Join(words[:fallbackSummWords], " ") + "..."
	}
	summary = truncate(summary, maxSummaryLen)

	return Draft{
		Title:           title,
		Content:         content,
		Summary:         summary,
		MetaDescription: truncate(summary, maxMetaLen),
	}
}
