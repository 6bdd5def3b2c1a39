// Package sanitize cleans user-provided text before storage. Farm records
// are plain text: request titles, activity descriptions and worker notes
// never carry markup, so HTML is stripped outright.
package sanitize

import (
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// entityDecoder reverses the HTML entities user input most commonly arrives
// with, so encoded tags cannot survive a single stripping pass.
var entityDecoder = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
)

// StripHTML removes HTML tags from a string, decodes common entities and
// strips again so entity-encoded tags are caught too.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityDecoder.Replace(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text cleans a free-text field such as a request description or an
// assignment note.
func Text(s string) string {
	return StripHTML(s)
}

// TextPtr applies Text through an optional pointer.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}

// Snippet cleans text and shortens it for compact surfaces such as
// notification lines. Truncation is rune-safe.
func Snippet(s string, max int) string {
	s = Text(s)
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return strings.TrimRight(string(runes[:max]), " ") + "..."
}
