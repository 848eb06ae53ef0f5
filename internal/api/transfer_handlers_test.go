package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglist-server/internal/domain"
)

const importCSV = "title,author,status,totalPages,currentPage,isbn,notes,rating,dateCompleted\n" +
	"Dune,Frank Herbert,Reading,412,100,,,,\n" +
	"Emma,Jane Austen,Completed,320,320,,,4,2024-03-01\n" +
	",Nobody,Reading,,,,,,\n"

func TestImport_CSV(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authHeader := ts.login(t, "reader@example.com")

	resp := ts.api.Post("/api/v1/books/import?format=csv", authHeader,
		"Content-Type: application/octet-stream", strings.NewReader(importCSV))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var summary domain.ImportSummary
	decode(t, resp, &summary)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 1, summary.Failed)

	// Same file again: everything already present is skipped.
	resp = ts.api.Post("/api/v1/books/import?format=csv", authHeader,
		"Content-Type: application/octet-stream", strings.NewReader(importCSV))
	require.Equal(t, http.StatusOK, resp.Code)
	decode(t, resp, &summary)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 2, summary.Skipped)
}

func TestImport_Errors(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authHeader := ts.login(t, "reader@example.com")

	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   string
	}{
		{"unknown format", "format=pdf", importCSV, http.StatusBadRequest, "VALIDATION"},
		{"malformed json", "format=json", "{not json", http.StatusBadRequest, "PARSE_FAILURE"},
		{"header only csv", "format=csv", "title,author\n", http.StatusBadRequest, "PARSE_FAILURE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/books/import?"+tt.query, authHeader,
				"Content-Type: application/octet-stream", strings.NewReader(tt.body))
			assert.Equal(t, tt.status, resp.Code, resp.Body.String())
			assert.Equal(t, tt.code, errorCode(t, resp))
		})
	}

	resp := ts.api.Get("/api/v1/books", authHeader)
	assert.JSONEq(t, `{"books":[]}`, resp.Body.String())
}

func TestImport_RequiresSession(t *testing.T) {
	ts := setupTestServer(t, Options{})
	resp := ts.api.Post("/api/v1/books/import?format=csv",
		"Content-Type: application/octet-stream", strings.NewReader(importCSV))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestExport_JSON(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authHeader := ts.login(t, "reader@example.com")
	createBook(t, ts, authHeader, map[string]any{"title": "Emma", "author": "Jane Austen"})

	resp := ts.api.Get("/api/v1/books/export?format=json", authHeader)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "attachment; filename=reading-list-")
	assert.Contains(t, resp.Header().Get("Content-Disposition"), ".json")

	var books []domain.Book
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Emma", books[0].Title)
}

func TestExport_XLSX(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authHeader := ts.login(t, "reader@example.com")
	createBook(t, ts, authHeader, map[string]any{"title": "Emma", "author": "Jane Austen"})

	resp := ts.api.Get("/api/v1/books/export?format=xlsx", authHeader)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Header().Get("Content-Disposition"), ".xlsx")
	// XLSX files are zip archives.
	assert.True(t, strings.HasPrefix(resp.Body.String(), "PK"))
}

func TestExport_CSVNotOffered(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authHeader := ts.login(t, "reader@example.com")

	resp := ts.api.Get("/api/v1/books/export?format=csv", authHeader)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
