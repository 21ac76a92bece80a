package bot

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize produces a comparison copy of s: diacritics stripped, lowercased
// and trimmed. Stored content is never normalized, only the copies used for
// follow-up and topic comparisons.
func Normalize(s string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(stripper, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// stripPunct removes surrounding punctuation so "¿Cuéntame más?" and
// "cuentame mas" compare equal after Normalize.
func stripPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}
