package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerMedium is the default Medium, an embedded Badger database.
type BadgerMedium struct {
	db *badger.DB
}

// OpenBadger opens or creates a Badger database at path.
func OpenBadger(path string) (*BadgerMedium, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Badger's own logging is too chatty
	opts.SyncWrites = true       // fsync every commit
	opts.CompactL0OnClose = true // faster next open

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &BadgerMedium{db: db}, nil
}

// View implements Medium.
func (m *BadgerMedium) View(ctx context.Context, fn func(Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.db.View(func(txn *badger.Txn) error {
		return fn(badgerTxn{txn})
	})
}

// Update implements Medium.
func (m *BadgerMedium) Update(ctx context.Context, fn func(Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return fn(badgerTxn{txn})
	})
}

// Scan implements Medium.
func (m *BadgerMedium) Scan(ctx context.Context, prefix string, fn func(string, []byte) error) error {
	return m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read value for %s: %w", item.Key(), err)
			}
			if err := fn(string(item.KeyCopy(nil)), val); err != nil {
				return err
			}
		}
		return nil
	})
}

// Ping implements Medium.
func (m *BadgerMedium) Ping(context.Context) error {
	if m.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

// Close implements Medium.
func (m *BadgerMedium) Close() error {
	return m.db.Close()
}

type badgerTxn struct {
	txn *badger.Txn
}

func (t badgerTxn) Get(key string) ([]byte, error) {
	item, err := t.txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (t badgerTxn) Set(key string, value []byte) error {
	return t.txn.Set([]byte(key), value)
}

func (t badgerTxn) Delete(key string) error {
	return t.txn.Delete([]byte(key))
}
