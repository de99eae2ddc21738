// Package htmltext cleans the HTML-bearing tafsir prose and strips the
// inline markup carried by the Arabic text. Cleaning is a presentation
// concern: the unified table always keeps the raw text.
package htmltext

import (
	"regexp"
	"strings"
)

var (
	scriptPattern = regexp.MustCompile(`(?is)<script.*?>.*?</script>`)
	stylePattern  = regexp.MustCompile(`(?is)<style.*?>.*?</style>`)
	spanPattern   = regexp.MustCompile(`(?is)<span\s+(?:class="[^"]*?")?[^>]*>(.*?)</span>`)
	emptyPPattern = regexp.MustCompile(`(?s)<p[^>]*>\s*</p>`)
	tagPattern    = regexp.MustCompile(`(?s)<[^>]*>`)
	tagNamePattern = regexp.MustCompile(`^</?\s*([a-zA-Z][a-zA-Z0-9]*)`)
)

// allowedTags are the structural tags kept in cleaned tafsir HTML.
var allowedTags = map[string]bool{
	"p": true, "h2": true, "div": true, "em": true, "strong": true,
	"b": true, "i": true, "br": true, "ul": true, "ol": true, "li": true,
}

// CleanTafsir removes scripts, styles, and presentational spans from tafsir
// HTML, drops empty paragraphs and any tag outside the structural allow
// list, and flattens newlines.
func CleanTafsir(text string) string {
	if text == "" {
		return ""
	}
	text = scriptPattern.ReplaceAllString(text, "")
	text = stylePattern.ReplaceAllString(text, "")
	text = spanPattern.ReplaceAllString(text, "$1")
	text = emptyPPattern.ReplaceAllString(text, "")
	text = tagPattern.ReplaceAllStringFunc(text, func(tag string) string {
		m := tagNamePattern.FindStringSubmatch(tag)
		if m != nil && allowedTags[strings.ToLower(m[1])] {
			return tag
		}
		return ""
	})
	return strings.ReplaceAll(text, "\n", "")
}

// StripTags removes all inline markup, leaving bare text. Used on the Arabic
// script, which some datasets annotate with tajweed spans.
func StripTags(text string) string {
	return tagPattern.ReplaceAllString(text, "")
}
