package export

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglist-server/internal/domain"
	"github.com/listenupapp/readinglist-server/internal/importer"
)

func sampleBooks() []domain.Book {
	isbn := "9780306406157"
	notes := "loved it"
	rating := 4.5
	done := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	return []domain.Book{
		{
			SchemaVersion: 2, BookID: "book-1", UserID: "user-1", Title: "Dune", Author: "Frank Herbert",
			Status: domain.StatusCompleted, TotalPages: 412, CurrentPage: 412, ISBN: &isbn, Notes: &notes,
			Rating: &rating, Progress: 100, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), CompletedAt: &done,
		},
		{
			SchemaVersion: 2, BookID: "book-2", UserID: "user-1", Title: "Emma", Author: "Jane Austen",
			Status: domain.StatusReading, TotalPages: 300, CurrentPage: 30, Progress: 10,
			CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(sampleBooks())
	require.NoError(t, err)

	s := string(data)
	assert.True(t, s[0] == '[')
	assert.Contains(t, s, "\n  {\n    \"schemaVersion\": 2,")
	assert.Contains(t, s, `"title": "Dune"`)

	candidates, err := importer.ParseJSON(data)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Emma", candidates[1].Title)
	require.NotNil(t, candidates[0].CompletedAt)
}

func TestJSON_Empty(t *testing.T) {
	data, err := JSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestXLSX_ReimportsWithSameColumns(t *testing.T) {
	data, err := XLSX(sampleBooks())
	require.NoError(t, err)

	candidates, err := importer.ParseXLSX(data)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	dune := candidates[0]
	assert.Equal(t, "Dune", dune.Title)
	assert.Equal(t, "Completed", dune.Status)
	assert.Equal(t, 412, dune.TotalPages)
	require.NotNil(t, dune.ISBN)
	assert.Equal(t, "9780306406157", *dune.ISBN)
	require.NotNil(t, dune.Rating)
	assert.InDelta(t, 4.5, *dune.Rating, 0)
	require.NotNil(t, dune.CompletedAt)
	assert.True(t, dune.CompletedAt.Equal(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)))

	emma := candidates[1]
	assert.Nil(t, emma.ISBN)
	assert.Nil(t, emma.CompletedAt)
	assert.Equal(t, 30, emma.CurrentPage)
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 30, 5, 0, time.FixedZone("CEST", 2*60*60))

	tests := []struct {
		name   string
		userID string
		ext    string
		want   string
	}{
		{"json", "user-abc_123", "json", "reading-list-user-abc_123-2024-06-15T123005Z.json"},
		{"dotted ext", "user-1", ".xlsx", "reading-list-user-1-2024-06-15T123005Z.xlsx"},
		{"no ext", "user-1", "", "reading-list-user-1-2024-06-15T123005Z"},
		{"unsafe id", "a/b:c", "json", "reading-list-a-b-c-2024-06-15T123005Z.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filename(tt.userID, now, tt.ext)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, ":")
		})
	}
}

type memBooks map[string][]domain.Book

func (m memBooks) GetBooks(_ context.Context, userID string) []domain.Book { return m[userID] }

func (m memBooks) AddBook(_ context.Context, b domain.Book) bool {
	m[b.UserID] = append(m[b.UserID], b)
	return true
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		format importer.Format
		render func([]domain.Book) ([]byte, error)
	}{
		{"json", importer.FormatJSON, JSON},
		{"xlsx", importer.FormatXLSX, XLSX},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books := sampleBooks()
			data, err := tt.render(books)
			require.NoError(t, err)

			store := memBooks{}
			p := importer.NewPipeline(store, nil)
			summary, err := p.Run(context.Background(), &domain.Session{ID: "sess-2", UserID: "user-2"}, tt.format, data)
			require.NoError(t, err)

			assert.Equal(t, len(books), summary.Imported)
			assert.Zero(t, summary.Skipped)
			assert.Zero(t, summary.Failed)

			got := store["user-2"]
			require.Len(t, got, 2)
			assert.Equal(t, domain.StatusCompleted, got[0].Status)
			assert.Equal(t, 10, got[1].Progress)

			// A second import of the same file is all duplicates.
			summary, err = p.Run(context.Background(), &domain.Session{ID: "sess-2", UserID: "user-2"}, tt.format, data)
			require.NoError(t, err)
			assert.Equal(t, len(books), summary.Skipped)
			assert.Zero(t, summary.Imported)
		})
	}
}
