package store

import "context"

// Medium is a durable key-value space. Every backend (Badger, SQLite,
// Redis) implements it; nothing above the store touches raw bytes.
type Medium interface {
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(Txn) error) error
	// Update runs fn in a read-write transaction. Writes made by fn are
	// committed only if fn returns nil.
	Update(ctx context.Context, fn func(Txn) error) error
	// Scan calls fn for every key starting with prefix, in key order.
	Scan(ctx context.Context, prefix string, fn func(key string, value []byte) error) error
	Ping(ctx context.Context) error
	Close() error
}

// Txn is the view of a medium inside a transaction.
type Txn interface {
	// Get returns ErrKeyNotFound when key is absent.
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
