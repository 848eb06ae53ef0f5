package domain

import (
	"strings"
	"time"
)

// Status is the reading state of a book.
type Status string

// Book statuses.
const (
	StatusWishlist  Status = "Wishlist"
	StatusReading   Status = "Reading"
	StatusCompleted Status = "Completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusWishlist, StatusReading, StatusCompleted}

// ParseStatus matches s against the known statuses ignoring case and
// surrounding whitespace.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return Status(s), false
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWishlist, StatusReading, StatusCompleted:
		return true
	}
	return false
}

// UnmarshalText canonicalizes the casing of known statuses. Older
// collections stored them lowercase. Unknown values are kept verbatim.
func (s *Status) UnmarshalText(b []byte) error {
	st, _ := ParseStatus(string(b))
	*s = st
	return nil
}

// CurrentSchemaVersion is the persisted Book record version.
const CurrentSchemaVersion = 2

// Book is one entry in a user's reading list.
type Book struct {
	SchemaVersion int        `json:"schemaVersion"`
	BookID        string     `json:"bookId"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Status        Status     `json:"status"`
	TotalPages    int        `json:"totalPages"`
	CurrentPage   int        `json:"currentPage"`
	ISBN          *string    `json:"isbn"`
	Notes         *string    `json:"notes"`
	Rating        *float64   `json:"rating"`
	Progress      int        `json:"progress"` // derived, see progress.Calculate
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt"`
	PagesRead     int        `json:"pagesRead,omitempty"`
}

// BookPatch is a field-wise update. Nil fields are left unchanged.
// An empty ISBN or Notes clears the field.
type BookPatch struct {
	Title       *string
	Author      *string
	Status      *Status
	TotalPages  *int
	CurrentPage *int
	ISBN        *string
	Notes       *string
	Rating      *float64
	PagesRead   *int
	CompletedAt *time.Time

	ClearRating      bool
	ClearCompletedAt bool
}

// IsEmpty reports whether the patch changes nothing.
func (p BookPatch) IsEmpty() bool {
	return p == BookPatch{}
}

// Apply merges p into b. Progress is not touched; the repository
// recomputes it on write.
func (b *Book) Apply(p BookPatch) {
	if p.Title != nil {
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.Author != nil {
		b.Author = strings.TrimSpace(*p.Author)
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.TotalPages != nil {
		b.TotalPages = *p.TotalPages
	}
	if p.CurrentPage != nil {
		b.CurrentPage = *p.CurrentPage
	}
	if p.ISBN != nil {
		b.ISBN = optionalString(*p.ISBN)
	}
	if p.Notes != nil {
		b.Notes = optionalString(*p.Notes)
	}
	if p.Rating != nil {
		r := *p.Rating
		b.Rating = &r
	}
	if p.ClearRating {
		b.Rating = nil
	}
	if p.PagesRead != nil {
		b.PagesRead = *p.PagesRead
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		b.CompletedAt = &t
	}
	if p.ClearCompletedAt {
		b.CompletedAt = nil
	}
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// StringPtr returns a pointer to a trimmed copy of s, or nil when s is blank.
func StringPtr(s string) *string {
	return optionalString(s)
}
