// Package redis implements store.Medium on a Redis server.
//
// Transactions are optimistic only in the loosest sense: reads go straight
// to the server and writes are buffered, then applied atomically with
// MULTI/EXEC when the transaction function returns nil.
package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/listenupapp/readinglist-server/internal/store"
)

// Options configures the Redis medium.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Namespace is prepended to every key so several deployments can share
	// one server.
	Namespace string
	Timeout   time.Duration
}

// Medium stores keys as plain Redis strings.
type Medium struct {
	client  *goredis.Client
	ns      string
	timeout time.Duration
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, opts Options) (*Medium, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, errors.New("redis addr is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	m := &Medium{
		client: goredis.NewClient(&goredis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		ns:      opts.Namespace,
		timeout: opts.Timeout,
	}
	if err := m.Ping(ctx); err != nil {
		_ = m.client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}
	return m, nil
}

// View implements store.Medium.
func (m *Medium) View(ctx context.Context, fn func(store.Txn) error) error {
	return fn(&txn{m: m, ctx: ctx, readOnly: true})
}

// Update implements store.Medium.
func (m *Medium) Update(ctx context.Context, fn func(store.Txn) error) error {
	t := &txn{m: m, ctx: ctx, pending: make(map[string][]byte)}
	if err := fn(t); err != nil {
		return err
	}
	if len(t.order) == 0 {
		return nil
	}

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	_, err := m.client.TxPipelined(cctx, func(p goredis.Pipeliner) error {
		for _, key := range t.order {
			val := t.pending[key]
			if val == nil {
				p.Del(cctx, m.ns+key)
				continue
			}
			p.Set(cctx, m.ns+key, val, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis commit: %w", err)
	}
	return nil
}

// Scan implements store.Medium. Keys are visited in sorted order to match
// the embedded mediums.
func (m *Medium) Scan(ctx context.Context, prefix string, fn func(string, []byte) error) error {
	var keys []string
	it := m.client.Scan(ctx, 0, escapeGlob(m.ns+prefix)+"*", 200).Iterator()
	for it.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(it.Val(), m.ns))
	}
	if err := it.Err(); err != nil {
		return fmt.Errorf("redis scan %q: %w", prefix, err)
	}
	slices.Sort(keys)

	for _, key := range keys {
		val, err := m.get(ctx, key)
		if errors.Is(err, store.ErrKeyNotFound) {
			continue // deleted since the scan
		}
		if err != nil {
			return err
		}
		if err := fn(key, val); err != nil {
			return err
		}
	}
	return nil
}

// Ping implements store.Medium.
func (m *Medium) Ping(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.client.Ping(cctx).Err()
}

// Close implements store.Medium.
func (m *Medium) Close() error {
	return m.client.Close()
}

func (m *Medium) get(ctx context.Context, key string) ([]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	val, err := m.client.Get(cctx, m.ns+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, nil
}

type txn struct {
	m        *Medium
	ctx      context.Context
	readOnly bool

	// pending holds buffered writes; a nil value marks a delete.
	pending map[string][]byte
	order   []string
}

func (t *txn) Get(key string) ([]byte, error) {
	if val, ok := t.pending[key]; ok {
		if val == nil {
			return nil, store.ErrKeyNotFound
		}
		return val, nil
	}
	return t.m.get(t.ctx, key)
}

func (t *txn) Set(key string, value []byte) error {
	if t.readOnly {
		return errors.New("redis: write in read-only transaction")
	}
	if value == nil {
		value = []byte{}
	}
	t.buffer(key, value)
	return nil
}

func (t *txn) Delete(key string) error {
	if t.readOnly {
		return errors.New("redis: write in read-only transaction")
	}
	t.buffer(key, nil)
	return nil
}

func (t *txn) buffer(key string, value []byte) {
	if _, seen := t.pending[key]; !seen {
		t.order = append(t.order, key)
	}
	t.pending[key] = value
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
