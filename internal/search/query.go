package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit caps results when Params.Limit is not set.
const DefaultLimit = 50

// Params selects books of one user whose title or author contains Text,
// case-insensitively. '*' and '?' in Text act as wildcards.
type Params struct {
	UserID string
	Text   string
	Limit  int
	Offset int
}

// Result is one page of matches, best first.
type Result struct {
	Query string `json:"query"`
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

// Hit is one matching book.
type Hit struct {
	BookID string  `json:"bookId"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Score  float64 `json:"score"`
}

// Search runs params against the index. A blank Text matches every book of
// the user.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	if params.UserID == "" {
		return nil, fmt.Errorf("search requires a user id")
	}
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, max(params.Offset, 0), false)
	req.Fields = []string{"book_id", "title", "author"}
	req.SortBy([]string{"-_score", "title", "book_id"})

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query: params.Text,
		Total: res.Total,
		Hits:  make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		out.Hits = append(out.Hits, Hit{
			BookID: field(h.Fields, "book_id"),
			Title:  field(h.Fields, "title"),
			Author: field(h.Fields, "author"),
			Score:  h.Score,
		})
	}
	return out, nil
}

func buildQuery(params Params) query.Query {
	owner := bleve.NewTermQuery(params.UserID)
	owner.SetField("user_id")

	text := strings.ToLower(strings.TrimSpace(params.Text))
	if text == "" {
		return owner
	}

	pattern := "*" + text + "*"
	title := bleve.NewWildcardQuery(pattern)
	title.SetField("title")
	title.SetBoost(2.0)

	author := bleve.NewWildcardQuery(pattern)
	author.SetField("author")

	return bleve.NewConjunctionQuery(owner, bleve.NewDisjunctionQuery(title, author))
}

func field(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}
