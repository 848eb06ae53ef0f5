package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_RegisterLoginMe(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authHeader := ts.login(t, "reader@example.com")

	resp := ts.api.Get("/api/v1/users/me", authHeader)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var me UserResponse
	decode(t, resp, &me)
	assert.Equal(t, "reader@example.com", me.Email)
	assert.NotEmpty(t, me.ID)
	assert.NotContains(t, resp.Body.String(), "passwordHash")
}

func TestAuth_RegisterDuplicate(t *testing.T) {
	ts := setupTestServer(t, Options{})
	creds := map[string]string{"email": "dup@example.com", "password": testPassword}

	require.Equal(t, http.StatusCreated, ts.api.Post("/api/v1/auth/register", creds).Code)

	resp := ts.api.Post("/api/v1/auth/register", creds)
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "ALREADY_EXISTS", errorCode(t, resp))
}

func TestAuth_RegisterValidation(t *testing.T) {
	ts := setupTestServer(t, Options{})

	tests := []struct {
		name  string
		creds map[string]string
	}{
		{"bad email", map[string]string{"email": "not-an-email", "password": testPassword}},
		{"weak password", map[string]string{"email": "a@example.com", "password": "short"}},
		{"missing password", map[string]string{"email": "a@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/register", tt.creds)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			assert.Equal(t, "VALIDATION", errorCode(t, resp))
		})
	}
}

func TestAuth_LoginWrongPassword(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.login(t, "reader@example.com")

	resp := ts.api.Post("/api/v1/auth/login", map[string]string{
		"email":    "reader@example.com",
		"password": "wrong-password-9",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, resp))
}

func TestAuth_Logout(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authHeader := ts.login(t, "reader@example.com")

	resp := ts.api.Post("/api/v1/auth/logout", authHeader)
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/users/me", authHeader)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuth_RequiresToken(t *testing.T) {
	ts := setupTestServer(t, Options{})

	tests := []struct {
		name   string
		header []any
	}{
		{"no header", nil},
		{"wrong scheme", []any{"Authorization: Basic abc"}},
		{"garbage token", []any{"Authorization: Bearer v4.local.garbage"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/books", tt.header...)
			assert.Equal(t, http.StatusUnauthorized, resp.Code)
			assert.Equal(t, "UNAUTHORIZED", errorCode(t, resp))
		})
	}
}

func TestAuth_RateLimited(t *testing.T) {
	ts := setupTestServer(t, Options{RateLimitPerMinute: 1, RateLimitBurst: 2})
	creds := map[string]string{"email": "nobody@example.com", "password": testPassword}

	for range 2 {
		resp := ts.api.Post("/api/v1/auth/login", creds)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	}

	resp := ts.api.Post("/api/v1/auth/login", creds)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, resp))
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))
}
