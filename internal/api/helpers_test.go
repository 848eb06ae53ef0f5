package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglist-server/internal/auth"
	"github.com/listenupapp/readinglist-server/internal/importer"
	"github.com/listenupapp/readinglist-server/internal/search"
	"github.com/listenupapp/readinglist-server/internal/service"
	"github.com/listenupapp/readinglist-server/internal/store"
	"github.com/listenupapp/readinglist-server/internal/validation"
)

const testPassword = "correct-horse-1"

type testServer struct {
	*Server
	api humatest.TestAPI
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	if opts.RateLimitPerMinute == 0 {
		opts.RateLimitPerMinute, opts.RateLimitBurst = 1000, 1000
	}

	m, err := store.OpenBadger(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	st := store.New(m, logger)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.New(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	books := store.NewBookRepository(st, logger)
	books.SetIndexer(index)

	tokens, err := auth.NewTokenService([]byte(strings.Repeat("k", auth.KeySize)), time.Hour)
	require.NoError(t, err)
	v := validation.New()

	services := &Services{
		Auth:   service.NewAuthService(st, tokens, v, logger),
		Book:   service.NewBookService(books, v, logger),
		Import: service.NewImportService(importer.NewPipeline(books, logger), logger),
		Export: service.NewExportService(books, logger),
		Stats:  service.NewStatsService(books),
		Search: service.NewSearchService(index, books, logger),
	}

	s := NewServer(st, services, opts, logger)
	t.Cleanup(s.Close)
	return &testServer{Server: s, api: humatest.Wrap(t, s.API())}
}

// login registers email and returns an Authorization header for it.
func (ts *testServer) login(t *testing.T, email string) string {
	t.Helper()
	creds := map[string]string{"email": email, "password": testPassword}

	resp := ts.api.Post("/api/v1/auth/register", creds)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/auth/login", creds)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var out AuthResponse
	decode(t, resp, &out)
	return "Authorization: Bearer " + out.AccessToken
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), dest), resp.Body.String())
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var e APIError
	decode(t, resp, &e)
	return e.Code
}
