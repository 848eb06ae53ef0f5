package importer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is an import file format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported import format %q", s)
	}
}

// FormatFromFilename infers the format from a file extension.
func FormatFromFilename(name string) (Format, bool) {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(name), "."))
	return f, err == nil
}

// Columns is the fixed column order of delimited and spreadsheet imports.
var Columns = []string{
	"title", "author", "status", "totalPages", "currentPage",
	"isbn", "notes", "rating", "dateCompleted",
}
