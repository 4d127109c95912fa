package rewrite

import (
	"regexp"
	"strings"
)

const maxSlugLen = 100

var (
	reSlugInvalid = regexp.MustCompile(`[^a-z0-9\s-]`)
	reSlugSpaces  = regexp.MustCompile(`\s+`)
	reSlugHyphens = regexp.MustCompile(`-+`)

	// Covers the Latin accents seen in the supported languages.
	accentFolder = strings.NewReplacer(
		"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"í", "i", "ì", "i", "î", "i", "ï", "i",
		"ó", "o", "ò", "o", "ô", "o", "õ", "o", "ö", "o",
		"ú", "u", "ù", "u", "û", "u", "ü", "u",
		"ç", "c", "ñ", "n",
	)
)

// Slugify derives a URL slug from a title: lowercase, accents folded to
// ASCII, punctuation removed, whitespace hyphenated, capped in length.
func Slugify(title string) string {
	slug := accentFolder.Replace(strings.ToLower(title))
	slug = reSlugInvalid.ReplaceAllString(slug, "")
	slug = reSlugSpaces.ReplaceAllString(strings.TrimSpace(slug), "-")
	slug = reSlugHyphens.ReplaceAllString(slug, "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	return slug
}
