package service

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglist-server/internal/auth"
	"github.com/listenupapp/readinglist-server/internal/domain"
	"github.com/listenupapp/readinglist-server/internal/importer"
	"github.com/listenupapp/readinglist-server/internal/search"
	"github.com/listenupapp/readinglist-server/internal/store"
	"github.com/listenupapp/readinglist-server/internal/validation"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store   *store.Store
	books   *store.BookRepository
	index   *search.Index
	Books   *BookService
	Imports *ImportService
	Exports *ExportService
	Stats   *StatsService
	Search  *SearchService
	Auth    *AuthService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	m, err := store.OpenBadger(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	s := store.New(m, logger)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.New(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	repo := store.NewBookRepository(s, logger)
	repo.SetIndexer(index)

	tokens, err := auth.NewTokenService([]byte(strings.Repeat("k", auth.KeySize)), time.Hour)
	require.NoError(t, err)

	v := validation.New()
	clock := func() time.Time { return testNow }

	env := &testEnv{
		store:   s,
		books:   repo,
		index:   index,
		Books:   NewBookService(repo, v, logger),
		Imports: NewImportService(importer.NewPipeline(repo, logger, importer.WithClock(clock)), logger),
		Exports: NewExportService(repo, logger),
		Stats:   NewStatsService(repo),
		Search:  NewSearchService(index, repo, logger),
		Auth:    NewAuthService(s, tokens, v, logger),
	}
	env.Books.SetClock(clock)
	env.Stats.SetClock(clock)
	env.Exports.now = clock
	return env
}

func testSession(userID string) *domain.Session {
	return &domain.Session{ID: "sess-" + userID, UserID: userID}
}

func ptr[T any](v T) *T { return &v }
