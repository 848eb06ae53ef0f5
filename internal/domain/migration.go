package domain

// MigrationReport summarizes one pass of the book migration.
type MigrationReport struct {
	Collections int      `json:"collections"`
	Rewritten   int      `json:"rewritten"`
	Records     int      `json:"records"`
	Unreadable  []string `json:"unreadable,omitempty"`
	Rejected    []string `json:"rejected,omitempty"`
}
