package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText lower-cases, trims and strips accents, so "Pantalla ROTA"
// and "pantalla rota" compare equal.
func NormalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	stripped, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return stripped
}

// MatchesFilter reports whether text satisfies a tolerant token filter:
// an empty or whitespace-only query matches everything; otherwise every
// whitespace-separated token of the query must appear as a substring of the
// text, in any order. No fuzzy matching.
func MatchesFilter(query, text string) bool {
	q := strings.TrimSpace(strings.ToLower(query))
	if q == "" {
		return true
	}

	t := strings.ToLower(text)
	for _, token := range strings.Fields(q) {
		if !strings.Contains(t, token) {
			return false
		}
	}
	return true
}
