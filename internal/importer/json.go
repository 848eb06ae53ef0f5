package importer

import (
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/listenupapp/readinglist-server/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseJSON reads an array of book-shaped objects. Numeric fields may be
// given as numbers or numeric strings; dates as dateCompleted or completedAt.
func ParseJSON(content []byte) ([]Candidate, error) {
	var raw any
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, &ParseError{Format: FormatJSON, Msg: "invalid JSON", Err: err}
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &ParseError{Format: FormatJSON, Msg: "expected an array of books"}
	}

	out := make([]Candidate, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			out = append(out, Candidate{Problem: "record is not an object"})
			continue
		}
		out = append(out, fromObject(obj))
	}
	return out, nil
}

func fromObject(obj map[string]any) Candidate {
	c := Candidate{
		Title:       text(obj["title"]),
		Author:      text(obj["author"]),
		Status:      text(obj["status"]),
		TotalPages:  number(obj["totalPages"]),
		CurrentPage: number(obj["currentPage"]),
		ISBN:        domain.StringPtr(text(obj["isbn"])),
		Notes:       domain.StringPtr(text(obj["notes"])),
		PagesRead:   number(obj["pagesRead"]),
	}

	switch v := obj["rating"].(type) {
	case float64:
		c.Rating = rating(v)
	case string:
		c.Rating = rating(leadingFloat(v))
	}

	c.CompletedAt = parseDate(text(obj["dateCompleted"]))
	if c.CompletedAt == nil {
		c.CompletedAt = parseDate(text(obj["completedAt"]))
	}
	return c
}

// text returns strings trimmed; numbers are formatted so an ISBN given as
// a number survives. Anything else is empty.
func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func number(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		return leadingInt(t)
	default:
		return 0
	}
}
