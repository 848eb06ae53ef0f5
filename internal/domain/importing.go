package domain

// OutcomeKind classifies the decision for one import candidate.
type OutcomeKind string

// Outcome kinds.
const (
	OutcomeAccepted OutcomeKind = "accepted"
	OutcomeSkipped  OutcomeKind = "skipped"
	OutcomeRejected OutcomeKind = "rejected"
)

// ImportOutcome is the per-record result of an import.
type ImportOutcome struct {
	Index  int         `json:"index"`
	Kind   OutcomeKind `json:"kind"`
	Reason string      `json:"reason,omitempty"`
	Title  string      `json:"title,omitempty"`
	BookID string      `json:"bookId,omitempty"`
}

// ImportSummary is returned once per import call and never persisted.
type ImportSummary struct {
	BatchID  string          `json:"batchId"`
	Total    int             `json:"total"`
	Imported int             `json:"imported"`
	Skipped  int             `json:"skipped"`
	Failed   int             `json:"failed"`
	Outcomes []ImportOutcome `json:"outcomes"`
}
