package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/readinglist-server/internal/isbn"
	"github.com/listenupapp/readinglist-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search books",
		Description: "Case-insensitive substring match on title and author. * and ? act as wildcards.",
		Tags:        []string{"Search"},
		Security:    bearerSecurity,
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "checkISBN",
		Method:      http.MethodGet,
		Path:        "/api/v1/isbn/{isbn}",
		Summary:     "Check an ISBN",
		Description: "Normalizes an ISBN and verifies its checksum",
		Tags:        []string{"Search"},
	}, s.handleCheckISBN)
}

// SearchInput contains the query and paging.
type SearchInput struct {
	Query  string `query:"q" doc:"Search text; empty lists everything"`
	Limit  int    `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Maximum results"`
	Offset int    `query:"offset" minimum:"0" doc:"Results to skip"`
}

// SearchOutput wraps the search result for Huma.
type SearchOutput struct {
	Body *service.SearchResult
}

// ISBNInput carries the ISBN to check.
type ISBNInput struct {
	ISBN string `path:"isbn" maxLength:"32" doc:"ISBN-10 or ISBN-13, hyphens allowed"`
}

// ISBNResponse describes an ISBN check.
type ISBNResponse struct {
	Input      string `json:"input" doc:"ISBN as given"`
	Normalized string `json:"normalized" doc:"ISBN without hyphens or spaces, uppercased"`
	Valid      bool   `json:"valid" doc:"Whether the checksum verifies"`
	Format     string `json:"format" enum:"isbn10,isbn13,unknown" doc:"Identifier family by length"`
}

// ISBNOutput wraps the ISBN check for Huma.
type ISBNOutput struct {
	Body ISBNResponse
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	result, err := s.services.Search.Search(ctx, sess, input.Query, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}

func (s *Server) handleCheckISBN(_ context.Context, input *ISBNInput) (*ISBNOutput, error) {
	normalized, valid := isbn.Normalize(input.ISBN)
	return &ISBNOutput{Body: ISBNResponse{
		Input:      input.ISBN,
		Normalized: normalized,
		Valid:      valid,
		Format:     string(isbn.Detect(normalized)),
	}}, nil
}
