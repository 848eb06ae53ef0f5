// Package progress derives a book's completion percentage.
package progress

import (
	"math"

	"github.com/listenupapp/readinglist-server/internal/domain"
)

// Calculate returns the completion percentage for a book. Reading books
// report the floor of the page ratio, so 100 is only reached on the last page.
func Calculate(currentPage, totalPages int, status domain.Status) int {
	switch status {
	case domain.StatusCompleted:
		return 100
	case domain.StatusReading:
		if totalPages <= 0 {
			return 0
		}
		pct := float64(currentPage) / float64(totalPages) * 100
		return int(math.Floor(math.Max(0, math.Min(100, pct))))
	default:
		return 0
	}
}

// ShouldAutoComplete reports whether a Reading book has reached the end and
// should transition to Completed. It never fires again once transitioned.
func ShouldAutoComplete(progress int, status domain.Status) bool {
	return progress == 100 && status == domain.StatusReading
}

// Refresh recomputes b.Progress in place.
func Refresh(b *domain.Book) {
	b.Progress = Calculate(b.CurrentPage, b.TotalPages, b.Status)
}
