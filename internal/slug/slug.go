// Package slug derives URL-safe, time-uniqued identifiers from titles.
package slug

import (
	"strings"
	"time"
	"unicode"
)

// maxStem bounds the cleaned-title prefix before the timestamp suffix.
const maxStem = 50

// Make derives a slug from title. The current time is passed in so the
// function stays pure and testable; the seconds-precision suffix makes
// collisions practically impossible without a uniqueness check.
func Make(title string, now time.Time) string {
	ts := now.Format("20060102150405")
	stem := clean(title)
	if stem == "" {
		return "doc-" + ts
	}
	return stem + "-" + ts
}

// Stem returns the cleaned form alone, without a time suffix. Callers
// that re-import the same source (file drops) use it so the slug stays
// stable across runs.
func Stem(title string) string {
	return clean(title)
}

// clean lowercases the title, drops everything outside word characters
// (letters of any script, digits, underscore), whitespace, and hyphen,
// then collapses whitespace/underscore runs into single hyphens.
func clean(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '_' || r == '-':
			b.WriteRune(' ')
		}
	}
	parts := strings.Fields(b.String())
	s := strings.Join(parts, "-")
	if runes := []rune(s); len(runes) > maxStem {
		s = strings.Trim(string(runes[:maxStem]), "-")
	}
	return s
}
