package normalize

import (
	"regexp"
	"time"

	"github.com/araddon/dateparse"
)

// Location patterns tried in order against the event description.
var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:venue|local|location):?\s*([^,\n.]{3,50})`),
	regexp.MustCompile(`(?i)(?:\bat|\bin|\bem)\s+([A-Z][^,\n.]{2,49})`),
	regexp.MustCompile(`([A-Z][a-z]+,\s+[A-Z]{2,})`),
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{4}`),
	regexp.MustCompile(`(?i)(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}`),
}

// DefaultLocation is returned when no venue can be extracted.
const DefaultLocation = "Online/Virtual"

// ExtractLocation pulls a venue out of free-form event text.
func ExtractLocation(text string) string {
	for _, p := range locationPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return CleanText(m[len(m)-1])
		}
	}
	return DefaultLocation
}

// ExtractEventDate finds the event date from the title or description,
// falling back to the publication timestamp when nothing parses.
func ExtractEventDate(title, description string, published time.Time) time.Time {
	full := title + " " + description
	for _, p := range datePatterns {
		if m := p.FindString(full); m != "" {
			if ts, err := dateparse.ParseAny(m); err == nil {
				return ts.UTC()
			}
		}
	}
	return published.UTC()
}
