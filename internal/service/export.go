package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/listenupapp/readinglist-server/internal/domain"
	domainerrors "github.com/listenupapp/readinglist-server/internal/errors"
	"github.com/listenupapp/readinglist-server/internal/export"
	"github.com/listenupapp/readinglist-server/internal/importer"
	"github.com/listenupapp/readinglist-server/internal/store"
)

// Export is a rendered download.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Content types of exports.
const (
	ContentTypeJSON = "application/json"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportService renders a user's collection for download.
type ExportService struct {
	books  *store.BookRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewExportService creates a new export service.
func NewExportService(books *store.BookRepository, logger *slog.Logger) *ExportService {
	return &ExportService{books: books, logger: logger, now: time.Now}
}

// Export renders the collection as json or xlsx. CSV exports are not
// offered; the naive CSV reader cannot round-trip commas in notes.
func (s *ExportService) Export(ctx context.Context, sess *domain.Session, format importer.Format) (*Export, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	books := s.books.GetBooks(ctx, sess.UserID)

	var (
		data        []byte
		err         error
		contentType string
	)
	switch format {
	case importer.FormatJSON:
		data, err = export.JSON(books)
		contentType = ContentTypeJSON
	case importer.FormatXLSX:
		data, err = export.XLSX(books)
		contentType = ContentTypeXLSX
	default:
		return nil, domainerrors.Validationf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "export failed")
	}

	s.logger.Info("collection exported", "user_id", sess.UserID, "format", string(format), "books", len(books))
	return &Export{
		Filename:    export.Filename(sess.UserID, s.now(), string(format)),
		ContentType: contentType,
		Data:        data,
	}, nil
}
