package store

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/listenupapp/readinglist-server/internal/domain"
	"github.com/listenupapp/readinglist-server/internal/progress"
)

// BookIndexer is notified after successful book writes so search stays in
// sync. Failures are logged, never propagated.
type BookIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, userID, bookID string) error
}

// NoopBookIndexer ignores all notifications.
type NoopBookIndexer struct{}

// IndexBook is a no-op.
func (NoopBookIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// DeleteBook is a no-op.
func (NoopBookIndexer) DeleteBook(context.Context, string, string) error { return nil }

// BookRepository owns each user's book collection, stored as one array
// under books_<userId>. Writes read the whole collection, change it, and
// write it back; concurrent writers for the same user lose updates
// (last write wins).
type BookRepository struct {
	store   *Store
	logger  *slog.Logger
	indexer BookIndexer
}

// NewBookRepository creates a repository over s.
func NewBookRepository(s *Store, logger *slog.Logger) *BookRepository {
	if logger == nil {
		logger = s.logger
	}
	return &BookRepository{store: s, logger: logger, indexer: NoopBookIndexer{}}
}

// SetIndexer installs the search indexer. Set after construction because
// the index is rebuilt from this repository.
func (r *BookRepository) SetIndexer(indexer BookIndexer) {
	if indexer == nil {
		indexer = NoopBookIndexer{}
	}
	r.indexer = indexer
}

// GetBooks returns the user's collection in stored order, or an empty
// slice when there is none or it cannot be read.
func (r *BookRepository) GetBooks(ctx context.Context, userID string) []domain.Book {
	var books []domain.Book
	if !r.store.Get(ctx, BooksKey(userID), &books) || books == nil {
		return []domain.Book{}
	}
	return books
}

// GetBook returns one book from the user's collection.
func (r *BookRepository) GetBook(ctx context.Context, userID, bookID string) (domain.Book, bool) {
	for _, b := range r.GetBooks(ctx, userID) {
		if b.BookID == bookID {
			return b, true
		}
	}
	return domain.Book{}, false
}

// AddBook appends book to its owner's collection.
func (r *BookRepository) AddBook(ctx context.Context, book domain.Book) bool {
	prepare(&book)
	books := append(r.GetBooks(ctx, book.UserID), book)
	if !r.save(ctx, book.UserID, books) {
		return false
	}
	r.index(ctx, &book)
	return true
}

// UpdateBook merges patch into the matching book. It reports false when the
// book does not exist or the write is rejected.
func (r *BookRepository) UpdateBook(ctx context.Context, userID, bookID string, patch domain.BookPatch) (domain.Book, bool) {
	books := r.GetBooks(ctx, userID)
	for i := range books {
		if books[i].BookID != bookID {
			continue
		}
		books[i].Apply(patch)
		prepare(&books[i])
		if !r.save(ctx, userID, books) {
			return domain.Book{}, false
		}
		r.index(ctx, &books[i])
		return books[i], true
	}
	return domain.Book{}, false
}

// DeleteBook removes the matching book. Deleting an absent book is a
// successful no-op; false means the write was rejected.
func (r *BookRepository) DeleteBook(ctx context.Context, userID, bookID string) bool {
	books := r.GetBooks(ctx, userID)
	kept := books[:0]
	for _, b := range books {
		if b.BookID != bookID {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(books) {
		return true
	}
	if !r.save(ctx, userID, kept) {
		return false
	}
	if err := r.indexer.DeleteBook(ctx, userID, bookID); err != nil {
		r.logger.Warn("failed to remove book from search index", "book_id", bookID, "error", err)
	}
	return true
}

// UserIDs lists every user that has a stored collection.
func (r *BookRepository) UserIDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, booksPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, booksPrefix))
	}
	return ids, nil
}

// Migrate upgrades every stored collection to the current record schema.
// Missing fields get defaults and populated fields are kept, so running it
// again changes nothing. Collections whose bytes would not change are not
// rewritten; collections that do not decode, or whose upgraded form the
// store refuses, are reported and left alone.
func (r *BookRepository) Migrate(ctx context.Context) (domain.MigrationReport, error) {
	var report domain.MigrationReport
	type rewrite struct {
		key  string
		data []byte
	}
	var rewrites []rewrite

	err := r.store.medium.Scan(ctx, booksPrefix, func(key string, value []byte) error {
		report.Collections++

		var legacy []domain.LegacyBook
		if err := json.Unmarshal(value, &legacy); err != nil {
			r.logger.Warn("skipping unreadable book collection", "key", key, "error", err)
			report.Unreadable = append(report.Unreadable, key)
			return nil
		}

		books := make([]domain.Book, len(legacy))
		for i, l := range legacy {
			books[i] = l.Upgrade()
		}
		report.Records += len(books)

		data, err := json.Marshal(books)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		if !bytes.Equal(data, value) {
			rewrites = append(rewrites, rewrite{key: key, data: data})
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("scan book collections: %w", err)
	}

	for _, rw := range rewrites {
		if !r.store.SetRaw(ctx, rw.key, rw.data) {
			report.Rejected = append(report.Rejected, rw.key)
			continue
		}
		report.Rewritten++
	}

	r.logger.Info("book migration finished",
		"collections", report.Collections,
		"rewritten", report.Rewritten,
		"records", report.Records,
		"unreadable", len(report.Unreadable),
		"rejected", len(report.Rejected),
	)
	return report, nil
}

func (r *BookRepository) save(ctx context.Context, userID string, books []domain.Book) bool {
	return r.store.Set(ctx, BooksKey(userID), books)
}

func (r *BookRepository) index(ctx context.Context, b *domain.Book) {
	if err := r.indexer.IndexBook(ctx, b); err != nil {
		r.logger.Warn("failed to index book", "book_id", b.BookID, "error", err)
	}
}

func prepare(b *domain.Book) {
	b.SchemaVersion = domain.CurrentSchemaVersion
	progress.Refresh(b)
}
