package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/listenupapp/readinglist-server/internal/auth"
	"github.com/listenupapp/readinglist-server/internal/domain"
	domainerrors "github.com/listenupapp/readinglist-server/internal/errors"
	"github.com/listenupapp/readinglist-server/internal/id"
	"github.com/listenupapp/readinglist-server/internal/store"
	"github.com/listenupapp/readinglist-server/internal/validation"
)

// RegisterRequest creates an account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,mail,max=254"`
	Password string `json:"password" validate:"required,password,max=1024"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the access token for a new session.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        *domain.User `json:"user"`
}

// AuthService registers users and manages their sessions.
type AuthService struct {
	store     *store.Store
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(s *store.Store, tokens *auth.TokenService, validator *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:     s,
		tokens:    tokens,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates a user. Emails are unique exactly as typed, so
// "A@x.io" and "a@x.io" are different accounts.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not hash password")
	}
	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not assign a user id")
	}

	user := &domain.User{
		ID:           userID,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email is already registered")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not save user")
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return redact(user), nil
}

// Login checks credentials and starts a session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, *domain.Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Burn the same hashing cost as a real check.
		auth.VerifyPassword(dummyHash(), req.Password)
		return nil, nil, domainerrors.InvalidCredentials("invalid email or password")
	case err != nil:
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not load user")
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.logger.Info("login failed", "user_id", user.ID)
		return nil, nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not assign a session id")
	}
	now := s.now()
	sess := &domain.Session{
		ID:        sessionID,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokens.Duration()),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not save session")
	}

	token, err := s.tokens.Issue(sess)
	if err != nil {
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not issue token")
	}
	if !s.store.SetActiveSession(ctx, user.ID) {
		s.logger.Warn("failed to record active session", "user_id", user.ID)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "session_id", sess.ID)
	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   sess.ExpiresAt,
		User:        redact(user),
	}, sess, nil
}

// Logout ends sess. Tokens issued for it stop verifying.
func (s *AuthService) Logout(ctx context.Context, sess *domain.Session) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if err := s.store.DeleteSession(ctx, sess.ID); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "could not end session")
	}
	if active, ok := s.store.ActiveSession(ctx); ok && active == sess.UserID {
		s.store.ClearActiveSession(ctx)
	}
	s.logger.Info("user logged out", "user_id", sess.UserID, "session_id", sess.ID)
	return nil
}

// VerifyAccessToken resolves a bearer token to its live session.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := s.tokens.Verify(token)
	if errors.Is(err, auth.ErrTokenExpired) {
		return nil, domainerrors.TokenExpired("access token expired")
	}
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid access token")
	}

	sess, err := s.store.GetSession(ctx, claims.SessionID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, domainerrors.Unauthorized("session has ended")
	case err != nil:
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not load session")
	}
	if sess.UserID != claims.UserID {
		return nil, domainerrors.Unauthorized("invalid access token")
	}
	if sess.Expired(s.now()) {
		if err := s.store.DeleteSession(ctx, sess.ID); err != nil {
			s.logger.Warn("failed to delete expired session", "session_id", sess.ID, "error", err)
		}
		return nil, domainerrors.TokenExpired("session expired")
	}
	return sess, nil
}

// CurrentUser returns the session's user.
func (s *AuthService) CurrentUser(ctx context.Context, sess *domain.Session) (*domain.User, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("user not found")
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not load user")
	}
	return redact(user), nil
}

// redact drops the password hash before a user leaves the service.
func redact(u *domain.User) *domain.User {
	out := *u
	out.PasswordHash = ""
	return &out
}

// dummyHash is a valid argon2id hash of a throwaway password.
var dummyHash = sync.OnceValue(func() string {
	h, err := auth.HashPassword("timing-equalizer-0")
	if err != nil {
		return ""
	}
	return h
})
