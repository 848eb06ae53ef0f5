package api

import (
	"context"
	"mime"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/readinglist-server/internal/domain"
	domainerrors "github.com/listenupapp/readinglist-server/internal/errors"
	"github.com/listenupapp/readinglist-server/internal/importer"
)

func (s *Server) registerTransferRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:  "importBooks",
		Method:       http.MethodPost,
		Path:         "/api/v1/books/import",
		Summary:      "Import books",
		Description:  "Ingests a json, csv or xlsx file sent as the raw request body. A malformed file is rejected whole; individual records are accepted, skipped as duplicates or rejected.",
		Tags:         []string{"Transfer"},
		MaxBodyBytes: s.opts.ImportMaxBytes,
		Security:     bearerSecurity,
		Middlewares:  huma.Middlewares{s.rateLimited(s.importLimiter)},
	}, s.handleImport)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/export",
		Summary:     "Export books",
		Description: "Downloads the collection as json or xlsx",
		Tags:        []string{"Transfer"},
		Security:    bearerSecurity,
	}, s.handleExport)
}

// ImportInput carries the file as the raw request body.
type ImportInput struct {
	Format  string `query:"format" required:"true" doc:"json, csv or xlsx"`
	RawBody []byte `contentType:"application/octet-stream"`
}

// ImportOutput wraps the import summary for Huma.
type ImportOutput struct {
	Body *domain.ImportSummary
}

// ExportInput selects the export format.
type ExportInput struct {
	Format string `query:"format" default:"json" doc:"json or xlsx"`
}

// ExportOutput is a file download.
type ExportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func (s *Server) handleImport(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	format, err := importer.ParseFormat(input.Format)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	summary, err := s.services.Import.Import(ctx, sess, format, input.RawBody)
	if err != nil {
		return nil, err
	}
	return &ImportOutput{Body: summary}, nil
}

func (s *Server) handleExport(ctx context.Context, input *ExportInput) (*ExportOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	format, err := importer.ParseFormat(input.Format)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	exp, err := s.services.Export.Export(ctx, sess, format)
	if err != nil {
		return nil, err
	}
	return &ExportOutput{
		ContentType:        exp.ContentType,
		ContentDisposition: mime.FormatMediaType("attachment", map[string]string{"filename": exp.Filename}),
		Body:               exp.Data,
	}, nil
}
