package service

import (
	"context"
	"time"

	"github.com/listenupapp/readinglist-server/internal/analytics"
	"github.com/listenupapp/readinglist-server/internal/domain"
	"github.com/listenupapp/readinglist-server/internal/store"
)

// StatsService derives statistics on demand; nothing is cached or stored.
type StatsService struct {
	books *store.BookRepository
	now   func() time.Time
}

// NewStatsService creates a new stats service.
func NewStatsService(books *store.BookRepository) *StatsService {
	return &StatsService{books: books, now: func() time.Time { return time.Now().UTC() }}
}

// SetClock overrides the UTC wall clock.
func (s *StatsService) SetClock(now func() time.Time) {
	s.now = now
}

// Stats computes the snapshot for the session's collection. It is nil when
// the collection is empty.
func (s *StatsService) Stats(ctx context.Context, sess *domain.Session) (*domain.StatSnapshot, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return analytics.Compute(s.books.GetBooks(ctx, sess.UserID), s.now()), nil
}
