// Package normalize holds the text folding rules shared by import
// deduplication, search, and export file naming.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DedupKey is the case-insensitive, trimmed (title, author) pair used to
// detect duplicate books. Composed and decomposed forms of the same
// accented letter produce the same key.
func DedupKey(title, author string) string {
	return fold(title) + "\x00" + fold(author)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// SanitizeFilenamePart keeps [A-Za-z0-9_-], strips accents, and replaces
// everything else with '-'. A blank result becomes "user".
func SanitizeFilenamePart(s string) string {
	decomposed := norm.NFKD.String(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
