// Package analysis implements the document analysis core: text sanitation,
// classification, invoice field extraction and information insights.
package analysis

import (
	"regexp"
	"strings"
)

// MaxTextLength bounds sanitized text; everything past it is dropped.
const MaxTextLength = 10000

var whitespaceRE = regexp.MustCompile(`\s+`)

// Sanitize strips NUL characters, collapses whitespace runs (including
// newlines) into single spaces, trims, and truncates to MaxTextLength
// characters. Idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(text string) string {
	clean := strings.ReplaceAll(text, "\x00", " ")
	clean = whitespaceRE.ReplaceAllString(clean, " ")
	clean = strings.TrimSpace(clean)
	// Truncation can expose a trailing space; trim again so the result
	// is a fixed point.
	return strings.TrimSpace(truncateRunes(clean, MaxTextLength))
}

// truncateRunes cuts s to at most n runes, never splitting a multibyte
// character.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
