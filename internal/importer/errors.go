package importer

import "fmt"

// ParseError is a structural failure of the whole import content. It is
// reported once per call; no records are ingested.
type ParseError struct {
	Format Format
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s import: %s: %v", e.Format, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s import: %s", e.Format, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }
