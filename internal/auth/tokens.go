package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"aidanwoods.dev/go-paseto"
	jsoniter "github.com/json-iterator/go"

	"github.com/listenupapp/readinglist-server/internal/domain"
	"github.com/listenupapp/readinglist-server/internal/id"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	tokenIssuer   = "readinglist-server"
	tokenAudience = "readinglist-client"
)

// ErrTokenExpired is returned for a well-formed token past its expiry.
var ErrTokenExpired = errors.New("token expired")

// TokenService issues and verifies PASETO v4.local access tokens.
type TokenService struct {
	key      paseto.V4SymmetricKey
	duration time.Duration
	now      func() time.Time
}

// NewTokenService builds a service from a raw 32-byte key.
func NewTokenService(key []byte, duration time.Duration) (*TokenService, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("PASETO v4 key must be %d bytes, got %d", KeySize, len(key))
	}
	if duration <= 0 {
		return nil, fmt.Errorf("access token duration must be positive, got %s", duration)
	}
	k, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create PASETO key: %w", err)
	}
	return &TokenService{key: k, duration: duration, now: time.Now}, nil
}

// Duration is the lifetime of issued tokens.
func (s *TokenService) Duration() time.Duration {
	return s.duration
}

// Issue returns an encrypted token for sess, expiring with it.
func (s *TokenService) Issue(sess *domain.Session) (string, error) {
	now := s.now()
	expires := now.Add(s.duration)
	if !sess.ExpiresAt.IsZero() {
		expires = sess.ExpiresAt
	}

	jti, err := id.Generate("tok")
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(sess.UserID)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)
	token.SetJti(jti)
	if err := token.Set("user_id", sess.UserID); err != nil {
		return "", err
	}
	if err := token.Set("session_id", sess.ID); err != nil {
		return "", err
	}

	return token.V4Encrypt(s.key, nil), nil
}

// Verify decrypts token and checks issuer, audience and validity window.
// An expired token yields ErrTokenExpired.
func (s *TokenService) Verify(token string) (*AccessClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))

	parsed, err := parser.ParseV4Local(s.key, token, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims AccessClaims
	if err := json.Unmarshal(parsed.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if strings.TrimSpace(claims.UserID) == "" || strings.TrimSpace(claims.SessionID) == "" {
		return nil, errors.New("invalid token: missing user or session")
	}

	now := s.now()
	if !claims.Expiration.After(now) {
		return nil, ErrTokenExpired
	}
	if now.Before(claims.NotBefore) {
		return nil, errors.New("invalid token: not yet valid")
	}
	return &claims, nil
}
