package store

import (
	"context"
	"fmt"
	"time"

	"github.com/listenupapp/readinglist-server/internal/domain"
)

func (s *Store) initSessions() {
	s.Sessions = NewEntity[domain.Session](s.medium, sessionPrefix)
}

// CreateSession stores a new session.
func (s *Store) CreateSession(ctx context.Context, sess *domain.Session) error {
	return s.Sessions.Create(ctx, sess.ID, sess)
}

// GetSession returns a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	return s.Sessions.Get(ctx, id)
}

// DeleteSession removes a session. Deleting an absent session succeeds.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.Sessions.Delete(ctx, id)
}

// SetActiveSession records userID as the active session's user. The
// pointer is for single-user tools; the HTTP API derives the user from
// each request's token instead.
func (s *Store) SetActiveSession(ctx context.Context, userID string) bool {
	return s.Set(ctx, activeSessionKey, userID)
}

// ActiveSession returns the active session's user id, if any.
func (s *Store) ActiveSession(ctx context.Context) (string, bool) {
	var userID string
	if !s.Get(ctx, activeSessionKey, &userID) || userID == "" {
		return "", false
	}
	return userID, true
}

// ClearActiveSession removes the active session pointer.
func (s *Store) ClearActiveSession(ctx context.Context) bool {
	return s.Remove(ctx, activeSessionKey)
}

// DeleteExpiredSessions removes every session expired at now and returns
// how many were deleted. Unreadable records are left in place.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	var expired []string
	for sess, err := range s.Sessions.List(ctx) {
		if err != nil {
			s.logger.Warn("skipping unreadable session", "error", err)
			continue
		}
		if sess.Expired(now) {
			expired = append(expired, sess.ID)
		}
	}

	for i, id := range expired {
		if err := s.DeleteSession(ctx, id); err != nil {
			return i, fmt.Errorf("delete session %s: %w", id, err)
		}
	}
	return len(expired), nil
}
