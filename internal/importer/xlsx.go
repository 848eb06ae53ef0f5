package importer

import (
	"bytes"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads a workbook laid out like the CSV format: a header row
// and the same nine columns, on Sheet1 or else the first sheet.
func ParseXLSX(content []byte) ([]Candidate, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ParseError{Format: FormatXLSX, Msg: "not a readable workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Format: FormatXLSX, Msg: "workbook has no sheets"}
	}
	sheet := sheets[0]
	if slices.Contains(sheets, "Sheet1") {
		sheet = "Sheet1"
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Format: FormatXLSX, Msg: "cannot read sheet " + sheet, Err: err}
	}

	var kept [][]string
	for _, row := range rows {
		if strings.TrimSpace(strings.Join(row, "")) != "" {
			kept = append(kept, row)
		}
	}
	if len(kept) < 2 {
		return nil, &ParseError{Format: FormatXLSX, Msg: "a header row and at least one data row are required"}
	}

	out := make([]Candidate, 0, len(kept)-1)
	for _, row := range kept[1:] {
		out = append(out, fromColumns(row))
	}
	return out, nil
}
