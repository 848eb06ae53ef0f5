package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/readinglist-server/internal/domain"
	"github.com/listenupapp/readinglist-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns the caller's books in insertion order",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Adds a book. Status defaults to Wishlist; reaching the last page marks it Completed.",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerSecurity,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Applies the given fields. Omitted fields are unchanged; an empty isbn or notes clears it.",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{id}",
		Summary:       "Delete book",
		Description:   "Removes a book. Deleting an absent book succeeds.",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearerSecurity,
	}, s.handleDeleteBook)
}

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Title       string   `json:"title" maxLength:"500" doc:"Book title"`
	Author      string   `json:"author" maxLength:"500" doc:"Book author"`
	Status      string   `json:"status,omitempty" doc:"Wishlist, Reading or Completed"`
	TotalPages  int      `json:"totalPages" minimum:"1" maximum:"10000" doc:"Page count"`
	CurrentPage int      `json:"currentPage,omitempty" minimum:"0" doc:"Last page read"`
	ISBN        *string  `json:"isbn,omitempty" doc:"ISBN-10 or ISBN-13; hyphens and spaces allowed"`
	Notes       *string  `json:"notes,omitempty" maxLength:"5000" doc:"Free-form notes"`
	Rating      *float64 `json:"rating,omitempty" minimum:"0" maximum:"5" doc:"Rating from 0 to 5; 0 means unrated"`
	PagesRead   int      `json:"pagesRead,omitempty" minimum:"0" doc:"Pages read, tracked separately from currentPage"`
}

// UpdateBookRequest is the request body for a partial update.
type UpdateBookRequest struct {
	Title       *string  `json:"title,omitempty" doc:"Book title"`
	Author      *string  `json:"author,omitempty" doc:"Book author"`
	Status      *string  `json:"status,omitempty" doc:"Wishlist, Reading or Completed"`
	TotalPages  *int     `json:"totalPages,omitempty" minimum:"1" maximum:"10000" doc:"Page count"`
	CurrentPage *int     `json:"currentPage,omitempty" minimum:"0" doc:"Last page read"`
	ISBN        *string  `json:"isbn,omitempty" doc:"ISBN; empty clears it"`
	Notes       *string  `json:"notes,omitempty" maxLength:"5000" doc:"Notes; empty clears them"`
	Rating      *float64 `json:"rating,omitempty" minimum:"0" maximum:"5" doc:"Rating; 0 clears it"`
	ClearRating bool     `json:"clearRating,omitempty" doc:"Remove the rating"`
	PagesRead   *int     `json:"pagesRead,omitempty" minimum:"0" doc:"Pages read"`
}

// BookIDInput identifies a book by path.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body UpdateBookRequest
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body domain.Book
}

// BookListResponse is a user's collection.
type BookListResponse struct {
	Books []domain.Book `json:"books" doc:"Books in insertion order"`
}

// BookListOutput wraps the collection for Huma.
type BookListOutput struct {
	Body BookListResponse
}

func (s *Server) handleListBooks(ctx context.Context, _ *struct{}) (*BookListOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	books, err := s.services.Book.ListBooks(ctx, sess)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []domain.Book{}
	}
	return &BookListOutput{Body: BookListResponse{Books: books}}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	book, err := s.services.Book.GetBook(ctx, sess, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *book}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	b := input.Body
	book, err := s.services.Book.CreateBook(ctx, sess, service.CreateBookRequest{
		Title:       b.Title,
		Author:      b.Author,
		Status:      b.Status,
		TotalPages:  b.TotalPages,
		CurrentPage: b.CurrentPage,
		ISBN:        b.ISBN,
		Notes:       b.Notes,
		Rating:      b.Rating,
		PagesRead:   b.PagesRead,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *book}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	b := input.Body
	book, err := s.services.Book.UpdateBook(ctx, sess, input.ID, service.UpdateBookRequest{
		Title:       b.Title,
		Author:      b.Author,
		Status:      b.Status,
		TotalPages:  b.TotalPages,
		CurrentPage: b.CurrentPage,
		ISBN:        b.ISBN,
		Notes:       b.Notes,
		Rating:      b.Rating,
		ClearRating: b.ClearRating,
		PagesRead:   b.PagesRead,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *book}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*struct{}, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	return nil, s.services.Book.DeleteBook(ctx, sess, input.ID)
}
