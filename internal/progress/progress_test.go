package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/listenupapp/readinglist-server/internal/domain"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		status  domain.Status
		want    int
	}{
		{"half way", 50, 100, domain.StatusReading, 50},
		{"clamped above", 150, 100, domain.StatusReading, 100},
		{"clamped below", -5, 100, domain.StatusReading, 0},
		{"floors", 2, 3, domain.StatusReading, 66},
		{"one page short", 399, 400, domain.StatusReading, 99},
		{"last page", 400, 400, domain.StatusReading, 100},
		{"zero total", 10, 0, domain.StatusReading, 0},
		{"wishlist ignores pages", 80, 100, domain.StatusWishlist, 0},
		{"completed ignores pages", 0, 0, domain.StatusCompleted, 100},
		{"unknown status", 50, 100, domain.Status("paused"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Calculate(tt.current, tt.total, tt.status))
		})
	}
}

func TestShouldAutoComplete(t *testing.T) {
	assert.True(t, ShouldAutoComplete(100, domain.StatusReading))
	assert.False(t, ShouldAutoComplete(99, domain.StatusReading))
	assert.False(t, ShouldAutoComplete(100, domain.StatusCompleted))
	assert.False(t, ShouldAutoComplete(100, domain.StatusWishlist))
}

func TestRefresh(t *testing.T) {
	b := &domain.Book{Status: domain.StatusReading, CurrentPage: 25, TotalPages: 200, Progress: 99}
	Refresh(b)
	assert.Equal(t, 12, b.Progress)
}
