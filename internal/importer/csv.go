package importer

import "strings"

// ParseCSV reads the 9-column delimited format. The first non-blank line
// is the header and is skipped.
//
// Fields are split on every comma; quoted fields containing commas are
// not supported and will shift the remaining columns.
func ParseCSV(content string) ([]Candidate, error) {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, &ParseError{Format: FormatCSV, Msg: "a header row and at least one data row are required"}
	}

	out := make([]Candidate, 0, len(lines)-1)
	for _, line := range lines[1:] {
		out = append(out, fromColumns(strings.Split(line, ",")))
	}
	return out, nil
}
