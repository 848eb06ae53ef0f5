package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglist-server/internal/domain"
	"github.com/listenupapp/readinglist-server/internal/service"
)

func TestStats_Empty(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authHeader := ts.login(t, "reader@example.com")

	resp := ts.api.Get("/api/v1/stats", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"stats":null}`, resp.Body.String())
}

func TestStats_Counts(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authHeader := ts.login(t, "reader@example.com")
	createBook(t, ts, authHeader, map[string]any{"title": "Dune", "author": "Frank Herbert", "status": "Reading"})
	createBook(t, ts, authHeader, map[string]any{"title": "Emma", "author": "Jane Austen", "status": "Completed"})

	resp := ts.api.Get("/api/v1/stats", authHeader)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var out StatsResponse
	decode(t, resp, &out)
	require.NotNil(t, out.Stats)
	assert.Equal(t, 2, out.Stats.TotalBooks)
	assert.Equal(t, 1, out.Stats.BooksByStatus[domain.StatusReading])
	assert.Equal(t, 1, out.Stats.BooksByStatus[domain.StatusCompleted])
	assert.Equal(t, 50, out.Stats.BooksByStatusPercentage[domain.StatusCompleted])
}

func TestSearch(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authHeader := ts.login(t, "reader@example.com")
	dune := createBook(t, ts, authHeader, map[string]any{"title": "Dune", "author": "Frank Herbert"})
	createBook(t, ts, authHeader, map[string]any{"title": "Emma", "author": "Jane Austen"})

	resp := ts.api.Get("/api/v1/search?q=herb", authHeader)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var out service.SearchResult
	decode(t, resp, &out)
	assert.Equal(t, uint64(1), out.Total)
	assert.Equal(t, []string{dune.BookID}, out.BookIDs)
	require.Len(t, out.Books, 1)
	assert.Equal(t, "Dune", out.Books[0].Title)

	other := ts.login(t, "other@example.com")
	resp = ts.api.Get("/api/v1/search?q=herb", other)
	require.Equal(t, http.StatusOK, resp.Code)
	decode(t, resp, &out)
	assert.Zero(t, out.Total)
}

func TestCheckISBN(t *testing.T) {
	ts := setupTestServer(t, Options{})

	tests := []struct {
		input string
		want  ISBNResponse
	}{
		{"0-306-40615-2", ISBNResponse{Input: "0-306-40615-2", Normalized: "0306406152", Valid: true, Format: "isbn10"}},
		{"978-0-306-40615-7", ISBNResponse{Input: "978-0-306-40615-7", Normalized: "9780306406157", Valid: true, Format: "isbn13"}},
		{"978-0-306-40615-8", ISBNResponse{Input: "978-0-306-40615-8", Normalized: "9780306406158", Valid: false, Format: "isbn13"}},
		{"12345", ISBNResponse{Input: "12345", Normalized: "12345", Valid: false, Format: "unknown"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/isbn/" + tt.input)
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			var got ISBNResponse
			decode(t, resp, &got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var out HealthResponse
	decode(t, resp, &out)
	assert.Equal(t, "healthy", out.Status)
	assert.Equal(t, "healthy", out.Components["store"].Status)
	assert.Equal(t, "healthy", out.Components["search"].Status)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name                string
		xff, realIP, remote string
		want                string
	}{
		{"forwarded chain", "203.0.113.5, 10.0.0.1", "", "10.0.0.2:5555", "203.0.113.5"},
		{"real ip", "", "198.51.100.7", "10.0.0.2:5555", "198.51.100.7"},
		{"remote with port", "", "", "192.0.2.1:1234", "192.0.2.1"},
		{"ipv6 remote", "", "", "[::1]:8080", "::1"},
		{"remote without port", "", "", "192.0.2.9", "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clientIP(tt.xff, tt.realIP, tt.remote))
		})
	}
}
