// Package isbn normalizes and checksums ISBN-10 and ISBN-13 identifiers.
// Validation only looks at format; it never fails loudly.
package isbn

import (
	"strings"
	"unicode"
)

// Format names the identifier family of a normalized ISBN.
type Format string

// Formats.
const (
	FormatISBN10  Format = "isbn10"
	FormatISBN13  Format = "isbn13"
	FormatUnknown Format = "unknown"
)

// Strip removes hyphens and whitespace and uppercases the rest, so a
// trailing "x" check character compares as "X".
func Strip(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// Validate strips s and checks it as ISBN-10 or ISBN-13 by length.
func Validate(s string) bool {
	n := Strip(s)
	switch len(n) {
	case 10:
		return ValidateISBN10(n)
	case 13:
		return ValidateISBN13(n)
	default:
		return false
	}
}

// Detect returns the format implied by the stripped length.
func Detect(s string) Format {
	switch len(Strip(s)) {
	case 10:
		return FormatISBN10
	case 13:
		return FormatISBN13
	default:
		return FormatUnknown
	}
}

// ValidateISBN10 checks an already stripped ISBN-10. Weights run 10..1 and
// the check position may be X (10).
func ValidateISBN10(s string) bool {
	if len(s) != 10 {
		return false
	}
	sum := 0
	for i := range 9 {
		d, ok := digit(s[i])
		if !ok {
			return false
		}
		sum += d * (10 - i)
	}
	check := 0
	switch c := s[9]; {
	case c == 'X':
		check = 10
	default:
		d, ok := digit(c)
		if !ok {
			return false
		}
		check = d
	}
	sum += check
	return sum%11 == 0
}

// ValidateISBN13 checks an already stripped ISBN-13 with alternating 1,3 weights.
func ValidateISBN13(s string) bool {
	if len(s) != 13 {
		return false
	}
	sum := 0
	for i := range 12 {
		d, ok := digit(s[i])
		if !ok {
			return false
		}
		if i%2 == 0 {
			sum += d
		} else {
			sum += 3 * d
		}
	}
	check, ok := digit(s[12])
	if !ok {
		return false
	}
	return check == (10-sum%10)%10
}

// Normalize returns the stripped form and true when s is a valid ISBN.
func Normalize(s string) (string, bool) {
	n := Strip(s)
	return n, Validate(n)
}

func digit(c byte) (int, bool) {
	if c < '0' || c > '9' {
		return 0, false
	}
	return int(c - '0'), true
}
