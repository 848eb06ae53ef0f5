package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/listenupapp/readinglist-server/internal/domain"
	domainerrors "github.com/listenupapp/readinglist-server/internal/errors"
	"github.com/listenupapp/readinglist-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const authKey ctxKey = "auth"

// authState is what the middleware learned about the bearer token.
type authState struct {
	session *domain.Session
	err     error
}

// authMiddleware verifies a Bearer token when one is present and records
// the outcome in the request context. Requests without a token continue
// anonymously; handlers call requireSession to reject them.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			var state authState
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				state.err = domainerrors.Unauthorized("invalid authorization header format")
			} else {
				state.session, state.err = auth.VerifyAccessToken(r.Context(), strings.TrimSpace(token))
			}

			ctx := context.WithValue(r.Context(), authKey, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireSession returns the caller's session or the reason there is none.
func requireSession(ctx context.Context) (*domain.Session, error) {
	state, ok := ctx.Value(authKey).(authState)
	if !ok {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	if state.err != nil {
		return nil, state.err
	}
	return state.session, nil
}
