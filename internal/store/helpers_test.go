package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglist-server/internal/store"
)

func setupTestStore(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()

	m, err := store.OpenBadger(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	s := store.New(m, nil, opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
