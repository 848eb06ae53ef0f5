package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/listenupapp/readinglist-server/internal/domain"
	domainerrors "github.com/listenupapp/readinglist-server/internal/errors"
	"github.com/listenupapp/readinglist-server/internal/importer"
)

// ImportService runs bulk imports for a session.
type ImportService struct {
	pipeline *importer.Pipeline
	logger   *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(pipeline *importer.Pipeline, logger *slog.Logger) *ImportService {
	return &ImportService{pipeline: pipeline, logger: logger}
}

// Import parses content in format and ingests it into the session user's
// collection. A structural problem with the file is a parse error and
// nothing is written; per-record problems are reported in the summary.
func (s *ImportService) Import(ctx context.Context, sess *domain.Session, format importer.Format, content []byte) (*domain.ImportSummary, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	summary, err := s.pipeline.Run(ctx, sess, format, content)
	if err == nil {
		return summary, nil
	}

	var parseErr *importer.ParseError
	switch {
	case errors.As(err, &parseErr):
		s.logger.Info("import rejected", "user_id", sess.UserID, "format", string(format), "reason", parseErr.Msg)
		return nil, domainerrors.Wrap(parseErr, domainerrors.CodeParse, fmt.Sprintf("%s import: %s", parseErr.Format, parseErr.Msg))
	case errors.Is(err, importer.ErrNoSession):
		return nil, domainerrors.Unauthorized("sign in required")
	default:
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "import failed")
	}
}
