package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

// Entity provides keyed CRUD with unique secondary indexes for one type.
// Records live at prefix+id; index entries at prefix+"idx:"+name+":"+value
// and hold the record id.
type Entity[T any] struct {
	medium  Medium
	prefix  string
	indexes []Index[T]
}

// Index defines a unique secondary index on an entity.
type Index[T any] struct {
	name            string
	keyGen          func(*T) []string
	lookupTransform func(string) string
}

// NewEntity creates an Entity for type T stored under prefix.
func NewEntity[T any](m Medium, prefix string) *Entity[T] {
	return &Entity[T]{medium: m, prefix: prefix}
}

// WithIndex adds a unique secondary index.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, keyGen: keyGen})
	return e
}

// WithIndexTransform adds an index whose lookup values are passed through
// transform first (for example to fold case).
func (e *Entity[T]) WithIndexTransform(name string, keyGen func(*T) []string, transform func(string) string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, keyGen: keyGen, lookupTransform: transform})
	return e
}

// Create stores entity under id. Returns ErrAlreadyExists if the id or any
// index value is taken.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.medium.Update(ctx, func(txn Txn) error {
		if _, err := txn.Get(e.prefix + id); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		for _, idx := range e.indexes {
			for _, v := range idx.keyGen(entity) {
				if err := e.checkFree(txn, idx.name, v); err != nil {
					return err
				}
			}
		}

		if err := txn.Set(e.prefix+id, data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.writeIndexes(txn, id, entity)
	})
}

// Get retrieves an entity by id. Returns ErrNotFound if absent.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	var entity T
	err := e.medium.View(ctx, func(txn Txn) error {
		return e.load(txn, id, &entity)
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// GetByIndex retrieves an entity through a secondary index.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	for _, idx := range e.indexes {
		if idx.name == indexName && idx.lookupTransform != nil {
			value = idx.lookupTransform(value)
			break
		}
	}

	var entity T
	err := e.medium.View(ctx, func(txn Txn) error {
		id, err := txn.Get(indexKey(e.prefix, indexName, value))
		if errors.Is(err, ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return e.load(txn, string(id), &entity)
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Update replaces an existing entity and moves its index entries.
// Returns ErrNotFound if absent.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.medium.Update(ctx, func(txn Txn) error {
		var old T
		if err := e.load(txn, id, &old); err != nil {
			return err
		}

		for _, idx := range e.indexes {
			prev := make(map[string]bool)
			for _, v := range idx.keyGen(&old) {
				prev[v] = true
			}
			for _, v := range idx.keyGen(entity) {
				if prev[v] {
					continue
				}
				if err := e.checkFree(txn, idx.name, v); err != nil {
					return err
				}
			}
		}

		if err := e.deleteIndexes(txn, &old); err != nil {
			return err
		}
		if err := txn.Set(e.prefix+id, data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.writeIndexes(txn, id, entity)
	})
}

// Delete removes an entity and its index entries. Deleting an absent id is
// not an error.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	return e.medium.Update(ctx, func(txn Txn) error {
		var entity T
		err := e.load(txn, id, &entity)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := e.deleteIndexes(txn, &entity); err != nil {
			return err
		}
		return txn.Delete(e.prefix + id)
	})
}

// List iterates over all entities, skipping index entries.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		stop := errors.New("stop")
		err := e.medium.Scan(ctx, e.prefix, func(key string, value []byte) error {
			if strings.HasPrefix(key[len(e.prefix):], indexSegment) {
				return nil
			}
			var entity T
			if err := json.Unmarshal(value, &entity); err != nil {
				if !yield(nil, fmt.Errorf("decode %s: %w", key, err)) {
					return stop
				}
				return nil
			}
			if !yield(&entity, nil) {
				return stop
			}
			return nil
		})
		if err != nil && !errors.Is(err, stop) {
			yield(nil, err)
		}
	}
}

func (e *Entity[T]) load(txn Txn, id string, dest *T) error {
	data, err := txn.Get(e.prefix + id)
	if errors.Is(err, ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get key: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

func (e *Entity[T]) checkFree(txn Txn, name, value string) error {
	_, err := txn.Get(indexKey(e.prefix, name, value))
	if err == nil {
		return fmt.Errorf("index %s conflict on key %s: %w", name, value, ErrAlreadyExists)
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return fmt.Errorf("failed to check index key: %w", err)
	}
	return nil
}

func (e *Entity[T]) writeIndexes(txn Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, v := range idx.keyGen(entity) {
			if err := txn.Set(indexKey(e.prefix, idx.name, v), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteIndexes(txn Txn, entity *T) error {
	for _, idx := range e.indexes {
		for _, v := range idx.keyGen(entity) {
			if err := txn.Delete(indexKey(e.prefix, idx.name, v)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	return nil
}
