// Package service holds the reading list's use cases. Every operation
// acts for an explicit *domain.Session; there is no ambient current user.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/listenupapp/readinglist-server/internal/domain"
	domainerrors "github.com/listenupapp/readinglist-server/internal/errors"
	"github.com/listenupapp/readinglist-server/internal/id"
	"github.com/listenupapp/readinglist-server/internal/isbn"
	"github.com/listenupapp/readinglist-server/internal/progress"
	"github.com/listenupapp/readinglist-server/internal/store"
	"github.com/listenupapp/readinglist-server/internal/validation"
)

// requireSession rejects calls made without a signed-in user.
func requireSession(sess *domain.Session) error {
	if sess == nil || sess.UserID == "" {
		return domainerrors.Unauthorized("sign in required")
	}
	return nil
}

// CreateBookRequest is a manually entered book.
type CreateBookRequest struct {
	Title       string   `json:"title" validate:"required,max=500"`
	Author      string   `json:"author" validate:"required,max=500"`
	Status      string   `json:"status,omitempty" validate:"omitempty,status"`
	TotalPages  int      `json:"totalPages" validate:"gte=1,lte=10000"`
	CurrentPage int      `json:"currentPage" validate:"gte=0"`
	ISBN        *string  `json:"isbn,omitempty" validate:"omitempty,isbn_checksum"`
	Notes       *string  `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Rating      *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	PagesRead   int      `json:"pagesRead,omitempty" validate:"gte=0"`
}

// UpdateBookRequest changes the given fields. An empty isbn or notes clears
// the field; a null rating is left alone, use clearRating to remove it.
type UpdateBookRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	Author      *string  `json:"author,omitempty" validate:"omitempty,min=1,max=500"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,status"`
	TotalPages  *int     `json:"totalPages,omitempty" validate:"omitempty,gte=1,lte=10000"`
	CurrentPage *int     `json:"currentPage,omitempty" validate:"omitempty,gte=0"`
	ISBN        *string  `json:"isbn,omitempty"`
	Notes       *string  `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Rating      *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ClearRating bool     `json:"clearRating,omitempty"`
	PagesRead   *int     `json:"pagesRead,omitempty" validate:"omitempty,gte=0"`
}

// BookService manages a user's collection.
type BookService struct {
	books     *store.BookRepository
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewBookService creates a new book service.
func NewBookService(books *store.BookRepository, validator *validation.Validator, logger *slog.Logger) *BookService {
	return &BookService{
		books:     books,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides time.Now for completion timestamps.
func (s *BookService) SetClock(now func() time.Time) {
	s.now = now
}

// ListBooks returns the whole collection in stored order.
func (s *BookService) ListBooks(ctx context.Context, sess *domain.Session) ([]domain.Book, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.books.GetBooks(ctx, sess.UserID), nil
}

// GetBook returns one book.
func (s *BookService) GetBook(ctx context.Context, sess *domain.Session, bookID string) (*domain.Book, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	b, ok := s.books.GetBook(ctx, sess.UserID, bookID)
	if !ok {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	return &b, nil
}

// CreateBook adds a book. A Reading book created on its last page is
// completed straight away.
func (s *BookService) CreateBook(ctx context.Context, sess *domain.Session, req CreateBookRequest) (*domain.Book, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.TotalPages > 0 && req.CurrentPage > req.TotalPages {
		return nil, pageError()
	}

	bookID, err := id.Book()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not assign a book id")
	}

	status := domain.StatusWishlist
	if st, ok := domain.ParseStatus(req.Status); ok {
		status = st
	}

	now := s.now()
	b := domain.Book{
		SchemaVersion: domain.CurrentSchemaVersion,
		BookID:        bookID,
		UserID:        sess.UserID,
		Title:         req.Title,
		Author:        req.Author,
		Status:        status,
		TotalPages:    req.TotalPages,
		CurrentPage:   req.CurrentPage,
		ISBN:          normalizeISBN(req.ISBN),
		Notes:         domain.StringPtr(deref(req.Notes)),
		Rating:        positive(req.Rating),
		PagesRead:     req.PagesRead,
		CreatedAt:     now,
	}
	progress.Refresh(&b)
	if progress.ShouldAutoComplete(b.Progress, b.Status) {
		b.Status = domain.StatusCompleted
	}
	if b.Status == domain.StatusCompleted {
		b.CompletedAt = &now
	}
	progress.Refresh(&b)

	if !s.books.AddBook(ctx, b) {
		return nil, domainerrors.Storage("could not save the book")
	}
	s.logger.Info("book added", "user_id", sess.UserID, "book_id", b.BookID, "status", string(b.Status))
	return &b, nil
}

// UpdateBook applies req to a book. Entering Completed, by request or by
// reaching the last page while Reading, stamps completedAt; leaving
// Completed clears it.
func (s *BookService) UpdateBook(ctx context.Context, sess *domain.Session, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.ISBN != nil && strings.TrimSpace(*req.ISBN) != "" && !isbn.Validate(*req.ISBN) {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"isbn": "must be a valid ISBN-10 or ISBN-13",
		})
	}

	current, ok := s.books.GetBook(ctx, sess.UserID, bookID)
	if !ok {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}

	patch := toPatch(req)
	next := current
	next.Apply(patch)
	if next.TotalPages > 0 && next.CurrentPage > next.TotalPages {
		return nil, pageError()
	}
	if next.Title == "" || next.Author == "" {
		return nil, domainerrors.Validation("title and author cannot be blank")
	}

	if progress.ShouldAutoComplete(progress.Calculate(next.CurrentPage, next.TotalPages, next.Status), next.Status) {
		completed := domain.StatusCompleted
		patch.Status = &completed
		next.Status = completed
	}
	switch {
	case next.Status == domain.StatusCompleted && current.Status != domain.StatusCompleted:
		now := s.now()
		patch.CompletedAt = &now
	case next.Status != domain.StatusCompleted && current.Status == domain.StatusCompleted:
		patch.ClearCompletedAt = true
	}

	updated, ok := s.books.UpdateBook(ctx, sess.UserID, bookID, patch)
	if !ok {
		if _, exists := s.books.GetBook(ctx, sess.UserID, bookID); !exists {
			return nil, domainerrors.NotFoundf("book %s not found", bookID)
		}
		return nil, domainerrors.Storage("could not save the book")
	}
	if updated.Status != current.Status {
		s.logger.Info("book status changed",
			"user_id", sess.UserID,
			"book_id", bookID,
			"from", string(current.Status),
			"to", string(updated.Status),
		)
	}
	return &updated, nil
}

// DeleteBook removes a book. Deleting a book that is already gone succeeds.
func (s *BookService) DeleteBook(ctx context.Context, sess *domain.Session, bookID string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if !s.books.DeleteBook(ctx, sess.UserID, bookID) {
		return domainerrors.Storage("could not delete the book")
	}
	s.logger.Info("book deleted", "user_id", sess.UserID, "book_id", bookID)
	return nil
}

func toPatch(req UpdateBookRequest) domain.BookPatch {
	p := domain.BookPatch{
		Title:       req.Title,
		Author:      req.Author,
		TotalPages:  req.TotalPages,
		CurrentPage: req.CurrentPage,
		Notes:       req.Notes,
		Rating:      positive(req.Rating),
		ClearRating: req.ClearRating || (req.Rating != nil && *req.Rating == 0),
		PagesRead:   req.PagesRead,
	}
	if req.Status != nil {
		st, _ := domain.ParseStatus(*req.Status)
		p.Status = &st
	}
	if req.ISBN != nil {
		v := ""
		if n := normalizeISBN(req.ISBN); n != nil {
			v = *n
		}
		p.ISBN = &v
	}
	return p
}

func pageError() error {
	return domainerrors.ValidationWithDetails("validation failed", map[string]string{
		"currentPage": "must not exceed totalPages",
	})
}

// normalizeISBN stores valid ISBNs stripped; blank becomes nil.
func normalizeISBN(v *string) *string {
	if v == nil {
		return nil
	}
	if n, ok := isbn.Normalize(*v); ok {
		return &n
	}
	return domain.StringPtr(*v)
}

// positive treats a zero rating as "not rated".
func positive(r *float64) *float64 {
	if r == nil || *r <= 0 {
		return nil
	}
	v := *r
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
