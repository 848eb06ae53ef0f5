// Package export renders a user's collection for download.
package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/xuri/excelize/v2"

	"github.com/listenupapp/readinglist-server/internal/domain"
	"github.com/listenupapp/readinglist-server/internal/importer"
	"github.com/listenupapp/readinglist-server/internal/normalize"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSON returns the collection as a two-space indented array. An empty
// collection is "[]".
func JSON(books []domain.Book) ([]byte, error) {
	if books == nil {
		books = []domain.Book{}
	}
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// XLSX returns a workbook with the import columns on Sheet1, so the file
// can be imported again.
func XLSX(books []domain.Book) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	header := make([]any, len(importer.Columns))
	for i, c := range importer.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, b := range books {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			b.Title,
			b.Author,
			string(b.Status),
			b.TotalPages,
			b.CurrentPage,
			deref(b.ISBN),
			deref(b.Notes),
			ratingCell(b.Rating),
			dateCell(b.CompletedAt),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename builds reading-list-<user>-<timestamp>.<ext>. The timestamp is
// RFC 3339 in UTC with the colons removed.
func Filename(userID string, now time.Time, ext string) string {
	ts := strings.ReplaceAll(now.UTC().Format(time.RFC3339), ":", "")
	name := "reading-list-" + normalize.SanitizeFilenamePart(userID) + "-" + ts
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	return name
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ratingCell(r *float64) string {
	if r == nil {
		return ""
	}
	return strconv.FormatFloat(*r, 'f', -1, 64)
}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
