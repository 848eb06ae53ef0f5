// Package store persists reading-list data in a pluggable key-value Medium.
//
// Store.Get, Store.Set and Store.Remove never return errors: absent or
// malformed values read as false, and a rejected write (too large, not
// encodable, medium failure) reports false. Callers must check.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"

	"github.com/listenupapp/readinglist-server/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultMaxValueBytes caps a single encoded value. A user's whole book
// collection lives under one key, so this bounds collection size.
const DefaultMaxValueBytes = 5 << 20

// Store wraps a Medium with the value codec and capacity rules.
type Store struct {
	medium        Medium
	logger        *slog.Logger
	maxValueBytes int

	Users    *Entity[domain.User]
	Sessions *Entity[domain.Session]
}

// Option configures a Store.
type Option func(*Store)

// WithMaxValueBytes overrides DefaultMaxValueBytes. Non-positive values are ignored.
func WithMaxValueBytes(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxValueBytes = n
		}
	}
}

// New creates a Store over medium.
func New(medium Medium, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{
		medium:        medium,
		logger:        logger,
		maxValueBytes: DefaultMaxValueBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.initUsers()
	s.initSessions()
	return s
}

// Medium returns the underlying medium.
func (s *Store) Medium() Medium {
	return s.medium
}

// Close closes the underlying medium.
func (s *Store) Close() error {
	s.logger.Info("closing store")
	return s.medium.Close()
}

// Ping checks that the medium is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.medium.Ping(ctx)
}

// Get decodes the value under key into dest. It reports false when the key
// is absent, the content does not decode, or the medium fails.
func (s *Store) Get(ctx context.Context, key string, dest any) bool {
	var data []byte
	err := s.medium.View(ctx, func(txn Txn) error {
		v, err := txn.Get(key)
		data = v
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.logger.Error("store read failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn("ignoring malformed stored value", "key", key, "error", err)
		return false
	}
	return true
}

// Set encodes value and writes it under key. It reports false when the
// value cannot be encoded, exceeds the capacity limit, or the write fails.
func (s *Store) Set(ctx context.Context, key string, value any) bool {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("store write rejected", "key", key, "error", err)
		return false
	}
	return s.SetRaw(ctx, key, data)
}

// SetRaw writes already encoded bytes under key under the same capacity
// limit as Set.
func (s *Store) SetRaw(ctx context.Context, key string, data []byte) bool {
	if err := s.checkSize(key, data); err != nil {
		s.logger.Warn("store write rejected", "key", key, "error", err)
		return false
	}
	if err := s.medium.Update(ctx, func(txn Txn) error {
		return txn.Set(key, data)
	}); err != nil {
		s.logger.Error("store write failed", "key", key, "error", err)
		return false
	}
	return true
}

// Remove deletes key. Removing an absent key succeeds.
func (s *Store) Remove(ctx context.Context, key string) bool {
	if err := s.medium.Update(ctx, func(txn Txn) error {
		return txn.Delete(key)
	}); err != nil {
		s.logger.Error("store delete failed", "key", key, "error", err)
		return false
	}
	return true
}

// Keys lists the keys under prefix.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.medium.Scan(ctx, prefix, func(key string, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	return keys, err
}

// Raw returns the stored bytes under key without decoding.
func (s *Store) Raw(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.medium.View(ctx, func(txn Txn) error {
		v, err := txn.Get(key)
		data = v
		return err
	})
	return data, err
}

func (s *Store) checkSize(key string, data []byte) error {
	if len(data) > s.maxValueBytes {
		return fmt.Errorf("value for %s is %d bytes, limit %d", key, len(data), s.maxValueBytes)
	}
	return nil
}
