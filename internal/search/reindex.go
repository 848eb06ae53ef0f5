package search

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/listenupapp/readinglist-server/internal/domain"
)

// BookSource lists every collection to index.
type BookSource interface {
	UserIDs(ctx context.Context) ([]string, error)
	GetBooks(ctx context.Context, userID string) []domain.Book
}

// reindexWorkers bounds how many collections are read at once.
const reindexWorkers = 4

// Reindex drops the index and fills it from src. Returns the number of
// books indexed.
func (s *Index) Reindex(ctx context.Context, src BookSource) (int, error) {
	userIDs, err := src.UserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list collections: %w", err)
	}
	if err := s.Rebuild(); err != nil {
		return 0, err
	}

	var (
		mu    sync.Mutex
		total int
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(reindexWorkers)

	for _, userID := range userIDs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			books := src.GetBooks(ctx, userID)
			docs := make([]*Document, 0, len(books))
			for i := range books {
				docs = append(docs, FromBook(&books[i]))
			}
			if err := s.IndexDocuments(docs); err != nil {
				return fmt.Errorf("index %s: %w", userID, err)
			}
			mu.Lock()
			total += len(docs)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return total, err
	}

	s.logger.Info("search index rebuilt from store", "collections", len(userIDs), "books", total)
	return total, nil
}
