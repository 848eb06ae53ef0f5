package importer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglist-server/internal/domain"
)

type memBooks struct {
	mu      sync.Mutex
	books   map[string][]domain.Book
	failFor map[string]bool // titles whose write is rejected
}

func newMemBooks(existing ...domain.Book) *memBooks {
	m := &memBooks{books: map[string][]domain.Book{}, failFor: map[string]bool{}}
	for _, b := range existing {
		m.books[b.UserID] = append(m.books[b.UserID], b)
	}
	return m
}

func (m *memBooks) GetBooks(_ context.Context, userID string) []domain.Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Book(nil), m.books[userID]...)
}

func (m *memBooks) AddBook(_ context.Context, b domain.Book) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[b.Title] {
		return false
	}
	m.books[b.UserID] = append(m.books[b.UserID], b)
	return true
}

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestPipeline(books BookWriter) *Pipeline {
	n := 0
	return NewPipeline(books, nil,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() (string, error) {
			n++
			return fmt.Sprintf("book-%d", n), nil
		}),
	)
}

var session = &domain.Session{ID: "sess-1", UserID: "u1"}

func TestRun_CountsOutcomes(t *testing.T) {
	books := newMemBooks(domain.Book{UserID: "u1", BookID: "old", Title: "Dune", Author: "Frank Herbert"})
	p := newTestPipeline(books)

	content := `[
	  {"title":"Emma","author":"Jane Austen"},
	  {"author":"Nobody"},
	  {"title":"dune","author":"frank herbert"},
	  {"title":"Ulysses","author":"James Joyce","status":"Reading","totalPages":700,"currentPage":70},
	  {"title":"Beloved","author":"Toni Morrison","status":"Completed"}
	]`

	sum, err := p.Run(context.Background(), session, FormatJSON, []byte(content))
	require.NoError(t, err)

	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, 3, sum.Imported)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Failed)
	assert.NotEmpty(t, sum.BatchID)
	require.Len(t, sum.Outcomes, 5)
	assert.Equal(t, domain.OutcomeRejected, sum.Outcomes[1].Kind)
	assert.Equal(t, domain.OutcomeSkipped, sum.Outcomes[2].Kind)
	assert.Equal(t, "book-2", sum.Outcomes[3].BookID)

	stored := books.GetBooks(context.Background(), "u1")
	require.Len(t, stored, 4)

	emma := stored[1]
	assert.Equal(t, "book-1", emma.BookID)
	assert.Equal(t, "u1", emma.UserID)
	assert.Equal(t, domain.StatusWishlist, emma.Status)
	assert.Equal(t, 0, emma.TotalPages)
	assert.Equal(t, 0, emma.Progress)
	assert.Equal(t, fixedNow, emma.CreatedAt)

	assert.Equal(t, 10, stored[2].Progress)
	assert.Equal(t, 100, stored[3].Progress)
}

func TestRun_UnknownStatusDefaultsToWishlist(t *testing.T) {
	books := newMemBooks()
	p := newTestPipeline(books)

	sum, err := p.Run(context.Background(), session, FormatJSON, []byte(`[{"title":"Emma","author":"Jane Austen","status":"abandoned"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Imported)
	assert.Equal(t, 0, sum.Failed)
	require.Len(t, sum.Outcomes, 1)
	assert.Equal(t, domain.OutcomeAccepted, sum.Outcomes[0].Kind)
	assert.Contains(t, sum.Outcomes[0].Reason, "stored as Wishlist")

	stored := books.GetBooks(context.Background(), "u1")
	require.Len(t, stored, 1)
	assert.Equal(t, domain.StatusWishlist, stored[0].Status)
}

func TestRun_DuplicatesWithinBatchAreNotCrossChecked(t *testing.T) {
	books := newMemBooks()
	p := newTestPipeline(books)

	content := "title,author\nEmma,Jane Austen\nemma,jane austen\n"
	sum, err := p.Run(context.Background(), session, FormatCSV, []byte(content))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Imported)
	assert.Equal(t, 0, sum.Skipped)

	again, err := p.Run(context.Background(), session, FormatCSV, []byte(content))
	require.NoError(t, err)
	assert.Equal(t, 0, again.Imported)
	assert.Equal(t, 2, again.Skipped)
}

func TestRun_StorageFailureDoesNotAbortBatch(t *testing.T) {
	books := newMemBooks()
	books.failFor["Emma"] = true
	p := newTestPipeline(books)

	content := "title,author\nEmma,Jane Austen\nDune,Frank Herbert\n"
	sum, err := p.Run(context.Background(), session, FormatCSV, []byte(content))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Imported)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, "storage failure", sum.Outcomes[0].Reason)
	assert.Len(t, books.GetBooks(context.Background(), "u1"), 1)
}

func TestRun_IDFailureCountsAsFailed(t *testing.T) {
	p := NewPipeline(newMemBooks(), nil, WithIDGenerator(func() (string, error) {
		return "", fmt.Errorf("no entropy")
	}))
	sum, err := p.Run(context.Background(), session, FormatCSV, []byte("h\nA,B\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
}

func TestRun_NormalizesValidISBN(t *testing.T) {
	books := newMemBooks()
	p := newTestPipeline(books)

	content := "h\nA,B,,,,0-306-40615-2\nC,D,,,,12-34\n"
	_, err := p.Run(context.Background(), session, FormatCSV, []byte(content))
	require.NoError(t, err)

	stored := books.GetBooks(context.Background(), "u1")
	require.Len(t, stored, 2)
	assert.Equal(t, "0306406152", *stored[0].ISBN)
	assert.Equal(t, "12-34", *stored[1].ISBN, "invalid identifiers are kept as given")
}

func TestRun_ParseFailure(t *testing.T) {
	books := newMemBooks()
	p := newTestPipeline(books)

	_, err := p.Run(context.Background(), session, FormatJSON, []byte(`{"title":"x"}`))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Empty(t, books.GetBooks(context.Background(), "u1"))
}

func TestRun_SizeLimit(t *testing.T) {
	p := NewPipeline(newMemBooks(), nil, WithMaxBytes(8))
	_, err := p.Run(context.Background(), session, FormatCSV, []byte("title,author\nA,B\n"))
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestRun_RequiresSession(t *testing.T) {
	p := newTestPipeline(newMemBooks())
	_, err := p.Run(context.Background(), nil, FormatCSV, []byte("h\nA,B\n"))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRun_IgnoresCancellationOnceStarted(t *testing.T) {
	books := newMemBooks()
	p := newTestPipeline(books)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := p.Run(ctx, session, FormatCSV, []byte("h\nA,B\nC,D\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Imported)
}
