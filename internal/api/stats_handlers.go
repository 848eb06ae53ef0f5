package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/readinglist-server/internal/domain"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Reading statistics",
		Description: "Derives status counts, monthly activity and reading pace from the collection. stats is null for an empty collection.",
		Tags:        []string{"Stats"},
		Security:    bearerSecurity,
	}, s.handleGetStats)
}

// StatsResponse holds the snapshot, or null when there are no books.
type StatsResponse struct {
	Stats *domain.StatSnapshot `json:"stats" doc:"Statistics snapshot"`
}

// StatsOutput wraps the stats response for Huma.
type StatsOutput struct {
	Body StatsResponse
}

func (s *Server) handleGetStats(ctx context.Context, _ *struct{}) (*StatsOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.services.Stats.Stats(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &StatsOutput{Body: StatsResponse{Stats: snapshot}}, nil
}
