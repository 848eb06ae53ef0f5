package domain

import "time"

// LegacyBook is a persisted Book record of any schema version. Fields added
// after version 1 are pointers so absence can be told apart from zero.
// Version 1 records also used dateAdded/dateCompleted.
type LegacyBook struct {
	SchemaVersion int        `json:"schemaVersion,omitempty"`
	BookID        string     `json:"bookId"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Status        Status     `json:"status"`
	TotalPages    int        `json:"totalPages"`
	CurrentPage   *int       `json:"currentPage"`
	ISBN          *string    `json:"isbn"`
	Notes         *string    `json:"notes"`
	Rating        *float64   `json:"rating"`
	Progress      *int       `json:"progress"`
	CreatedAt     *time.Time `json:"createdAt"`
	DateAdded     *time.Time `json:"dateAdded,omitempty"`
	CompletedAt   *time.Time `json:"completedAt"`
	DateCompleted *time.Time `json:"dateCompleted,omitempty"`
	PagesRead     int        `json:"pagesRead,omitempty"`
}

// Upgrade converts any record version into the current Book. Fields already
// present are kept as is; missing ones get their defaults. Upgrading an
// already current record yields an identical record.
func (l LegacyBook) Upgrade() Book {
	b := Book{
		SchemaVersion: CurrentSchemaVersion,
		BookID:        l.BookID,
		UserID:        l.UserID,
		Title:         l.Title,
		Author:        l.Author,
		Status:        l.Status,
		TotalPages:    l.TotalPages,
		ISBN:          l.ISBN,
		Notes:         l.Notes,
		Rating:        l.Rating,
		PagesRead:     l.PagesRead,
	}
	if b.Status == "" {
		b.Status = StatusWishlist
	}

	if l.CurrentPage != nil {
		b.CurrentPage = *l.CurrentPage
	}

	switch {
	case l.Progress != nil:
		b.Progress = *l.Progress
	case b.Status == StatusCompleted:
		b.Progress = 100
	default:
		b.Progress = 0
	}

	switch {
	case l.CreatedAt != nil:
		b.CreatedAt = *l.CreatedAt
	case l.DateAdded != nil:
		b.CreatedAt = *l.DateAdded
	}

	switch {
	case l.CompletedAt != nil:
		t := *l.CompletedAt
		b.CompletedAt = &t
	case l.DateCompleted != nil:
		t := *l.DateCompleted
		b.CompletedAt = &t
	}

	return b
}
