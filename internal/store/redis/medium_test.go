package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglist-server/internal/domain"
	"github.com/listenupapp/readinglist-server/internal/store"
)

func newTestMedium(t *testing.T) (*Medium, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	m, err := Open(context.Background(), Options{Addr: srv.Addr(), Namespace: "rl:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m, srv
}

func TestOpen_RequiresAddr(t *testing.T) {
	m, err := Open(context.Background(), Options{})
	assert.Error(t, err)
	assert.Nil(t, m)
}

func TestMedium_UpdateCommitsAtomically(t *testing.T) {
	m, srv := newTestMedium(t)
	ctx := context.Background()

	require.NoError(t, m.Update(ctx, func(txn store.Txn) error {
		require.NoError(t, txn.Set("a", []byte("1")))
		require.NoError(t, txn.Set("b", []byte("2")))
		got, err := txn.Get("a")
		require.NoError(t, err)
		assert.Equal(t, "1", string(got), "reads see buffered writes")
		return nil
	}))

	v, err := srv.Get("rl:a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	err = m.Update(ctx, func(txn store.Txn) error {
		_ = txn.Set("c", []byte("3"))
		return errors.New("abort")
	})
	require.Error(t, err)
	assert.False(t, srv.Exists("rl:c"), "aborted transaction writes nothing")
}

func TestMedium_DeleteAndNotFound(t *testing.T) {
	m, _ := newTestMedium(t)
	ctx := context.Background()

	require.NoError(t, m.Update(ctx, func(txn store.Txn) error { return txn.Set("k", []byte("v")) }))
	require.NoError(t, m.Update(ctx, func(txn store.Txn) error { return txn.Delete("k") }))

	err := m.View(ctx, func(txn store.Txn) error {
		_, err := txn.Get("k")
		return err
	})
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
}

func TestMedium_ViewIsReadOnly(t *testing.T) {
	m, _ := newTestMedium(t)
	err := m.View(context.Background(), func(txn store.Txn) error {
		return txn.Set("k", []byte("v"))
	})
	assert.Error(t, err)
}

func TestMedium_ScanSortedWithinNamespace(t *testing.T) {
	m, srv := newTestMedium(t)
	ctx := context.Background()

	require.NoError(t, srv.Set("other:books_x", "ignored"))
	require.NoError(t, m.Update(ctx, func(txn store.Txn) error {
		for _, k := range []string{"books_c", "books_a", "books_b", "user:1"} {
			if err := txn.Set(k, []byte(k)); err != nil {
				return err
			}
		}
		return nil
	}))

	var keys []string
	require.NoError(t, m.Scan(ctx, "books_", func(key string, value []byte) error {
		assert.Equal(t, key, string(value))
		keys = append(keys, key)
		return nil
	}))
	assert.Equal(t, []string{"books_a", "books_b", "books_c"}, keys)
}

func TestMedium_BackedStoreAndRepository(t *testing.T) {
	m, _ := newTestMedium(t)
	s := store.New(m, nil)
	repo := store.NewBookRepository(s, nil)
	ctx := context.Background()

	require.True(t, repo.AddBook(ctx, domain.Book{
		BookID: "b1", UserID: "u1", Title: "Dune", Author: "Herbert",
		Status: domain.StatusReading, TotalPages: 100, CurrentPage: 40,
	}))
	books := repo.GetBooks(ctx, "u1")
	require.Len(t, books, 1)
	assert.Equal(t, 40, books[0].Progress)

	require.NoError(t, s.CreateUser(ctx, &domain.User{ID: "user-1", Email: "a@example.com"}))
	u, err := s.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
}
