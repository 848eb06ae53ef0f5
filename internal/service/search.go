package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/listenupapp/readinglist-server/internal/domain"
	domainerrors "github.com/listenupapp/readinglist-server/internal/errors"
	"github.com/listenupapp/readinglist-server/internal/search"
	"github.com/listenupapp/readinglist-server/internal/store"
)

// SearchResult is a page of books matching a query, best match first.
type SearchResult struct {
	Query   string        `json:"query"`
	Total   uint64        `json:"total"`
	BookIDs []string      `json:"bookIds"`
	Books   []domain.Book `json:"books"`
}

// SearchService finds books in the session user's collection.
type SearchService struct {
	index  *search.Index
	books  *store.BookRepository
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, books *store.BookRepository, logger *slog.Logger) *SearchService {
	return &SearchService{index: index, books: books, logger: logger}
}

// Search matches query against titles and authors. Hits whose book has
// since disappeared from the store are dropped.
func (s *SearchService) Search(ctx context.Context, sess *domain.Session, query string, limit, offset int) (*SearchResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)

	res, err := s.index.Search(ctx, search.Params{UserID: sess.UserID, Text: query, Limit: limit, Offset: offset})
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search failed")
	}

	byID := make(map[string]domain.Book)
	for _, b := range s.books.GetBooks(ctx, sess.UserID) {
		byID[b.BookID] = b
	}

	out := &SearchResult{
		Query:   query,
		Total:   res.Total,
		BookIDs: make([]string, 0, len(res.Hits)),
		Books:   make([]domain.Book, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		b, ok := byID[h.BookID]
		if !ok {
			s.logger.Debug("search hit without a stored book", "user_id", sess.UserID, "book_id", h.BookID)
			continue
		}
		out.BookIDs = append(out.BookIDs, b.BookID)
		out.Books = append(out.Books, b)
	}
	return out, nil
}

// Reindex rebuilds the index from every stored collection.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	return s.index.Reindex(ctx, s.books)
}

// DocumentCount reports how many books are indexed.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
