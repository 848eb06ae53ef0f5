// Package importer turns bulk import files into books. Parsing is
// all-or-nothing; the per-record decisions (accept, skip, reject) never
// abort a batch.
package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/listenupapp/readinglist-server/internal/domain"
)

// Candidate is one parsed import record before it is decided on.
type Candidate struct {
	Title       string
	Author      string
	Status      string
	TotalPages  int
	CurrentPage int
	ISBN        *string
	Notes       *string
	Rating      *float64
	CompletedAt *time.Time
	PagesRead   int

	// Problem is set when the record itself could not be read
	// (e.g. a JSON element that is not an object).
	Problem string
}

// Parse dispatches content to the parser for format.
func Parse(format Format, content []byte) ([]Candidate, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(content)
	case FormatCSV:
		return ParseCSV(string(content))
	case FormatXLSX:
		return ParseXLSX(content)
	default:
		return nil, &ParseError{Format: format, Msg: "unsupported format"}
	}
}

// fromColumns maps one delimited/spreadsheet row onto a Candidate.
// Missing trailing columns read as empty.
func fromColumns(cols []string) Candidate {
	col := func(i int) string {
		if i < len(cols) {
			return strings.TrimSpace(cols[i])
		}
		return ""
	}
	return Candidate{
		Title:       col(0),
		Author:      col(1),
		Status:      col(2),
		TotalPages:  leadingInt(col(3)),
		CurrentPage: leadingInt(col(4)),
		ISBN:        domain.StringPtr(col(5)),
		Notes:       domain.StringPtr(col(6)),
		Rating:      rating(leadingFloat(col(7))),
		CompletedAt: parseDate(col(8)),
	}
}

var intPrefix = regexp.MustCompile(`^[+-]?\d+`)

// leadingInt reads the integer at the start of s, like "12 pages" -> 12.
// Anything without a leading integer is 0.
func leadingInt(s string) int {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

var floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

func leadingFloat(s string) float64 {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

// rating keeps values in (0, 5]. Zero means "not rated".
func rating(f float64) *float64 {
	if f <= 0 || f > 5 || math.IsNaN(f) {
		return nil
	}
	return &f
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
