package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglist-server/internal/domain"
)

func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	index, err := New(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func book(userID, bookID, title, author string) *domain.Book {
	return &domain.Book{UserID: userID, BookID: bookID, Title: title, Author: author}
}

func ids(res *Result) []string {
	out := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		out = append(out, h.BookID)
	}
	return out
}

func TestIndex_IndexAndDelete(t *testing.T) {
	ctx := context.Background()
	index := setupTestIndex(t)

	require.NoError(t, index.IndexBook(ctx, book("u1", "b1", "Dune", "Frank Herbert")))
	require.NoError(t, index.IndexBook(ctx, book("u1", "b1", "Dune Messiah", "Frank Herbert")))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	require.NoError(t, index.DeleteBook(ctx, "u1", "b1"))
	require.NoError(t, index.DeleteBook(ctx, "u1", "missing"))

	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIndex_Search(t *testing.T) {
	ctx := context.Background()
	index := setupTestIndex(t)

	require.NoError(t, index.IndexDocuments([]*Document{
		FromBook(book("u1", "b1", "Dune", "Frank Herbert")),
		FromBook(book("u1", "b2", "The Hobbit", "J.R.R. Tolkien")),
		FromBook(book("u1", "b3", "Children of Dune", "Frank Herbert")),
		FromBook(book("u2", "b4", "Dune", "Frank Herbert")),
	}))

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"title substring", "dune", []string{"b1", "b3"}},
		{"case-insensitive", "HOBBIT", []string{"b2"}},
		{"author substring", "tolk", []string{"b2"}},
		{"phrase across words", "of dune", []string{"b3"}},
		{"punctuation", "j.r.r.", []string{"b2"}},
		{"no match", "austen", []string{}},
		{"blank matches all", "  ", []string{"b1", "b2", "b3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := index.Search(ctx, Params{UserID: "u1", Text: tt.text})
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, ids(res))
			assert.Equal(t, uint64(len(tt.want)), res.Total)
		})
	}
}

func TestIndex_SearchIsScopedToUser(t *testing.T) {
	ctx := context.Background()
	index := setupTestIndex(t)

	require.NoError(t, index.IndexBook(ctx, book("u1", "same", "Emma", "Jane Austen")))
	require.NoError(t, index.IndexBook(ctx, book("u2", "same", "Emma", "Jane Austen")))

	res, err := index.Search(ctx, Params{UserID: "u2", Text: "emma"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "same", res.Hits[0].BookID)
	assert.Equal(t, "Emma", res.Hits[0].Title)

	_, err = index.Search(ctx, Params{Text: "emma"})
	assert.Error(t, err)
}

func TestIndex_SearchPaging(t *testing.T) {
	ctx := context.Background()
	index := setupTestIndex(t)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, index.IndexBook(ctx, book("u1", id, "Volume "+id, "Anon")))
	}

	res, err := index.Search(ctx, Params{UserID: "u1", Text: "volume", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 2)
	assert.Equal(t, uint64(3), res.Total)
}

type fakeSource map[string][]domain.Book

func (f fakeSource) UserIDs(context.Context) ([]string, error) {
	out := make([]string, 0, len(f))
	for id := range f {
		out = append(out, id)
	}
	return out, nil
}

func (f fakeSource) GetBooks(_ context.Context, userID string) []domain.Book { return f[userID] }

func TestIndex_Reindex(t *testing.T) {
	ctx := context.Background()
	index := setupTestIndex(t)

	require.NoError(t, index.IndexBook(ctx, book("gone", "x", "Stale", "Nobody")))

	src := fakeSource{
		"u1": {*book("u1", "b1", "Dune", "Frank Herbert"), *book("u1", "b2", "Emma", "Jane Austen")},
		"u2": {*book("u2", "b3", "Beloved", "Toni Morrison")},
	}
	n, err := index.Reindex(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	res, err := index.Search(ctx, Params{UserID: "gone"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestNew_OnDiskReopens(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	index, err := New(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexBook(ctx, book("u1", "b1", "Dune", "Frank Herbert")))
	require.NoError(t, index.Close())

	reopened, err := New(Options{DataPath: dir})
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
