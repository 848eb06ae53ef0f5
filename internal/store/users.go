package store

import (
	"context"
	"errors"

	"github.com/listenupapp/readinglist-server/internal/domain"
)

// Emails are indexed exactly as given: two addresses differing only in
// case belong to different users.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s.medium, userPrefix).
		WithIndex("email", func(u *domain.User) []string {
			return []string{u.Email}
		})
}

// CreateUser stores a new user. Returns ErrAlreadyExists when the id or
// email is taken.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	return s.Users.Create(ctx, u.ID, u)
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.Users.Get(ctx, id)
}

// GetUserByEmail returns a user by exact email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.Users.GetByIndex(ctx, "email", email)
}

// UserExists reports whether a user with id is stored.
func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	_, err := s.Users.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
