package importer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/listenupapp/readinglist-server/internal/domain"
	"github.com/listenupapp/readinglist-server/internal/id"
	"github.com/listenupapp/readinglist-server/internal/isbn"
	"github.com/listenupapp/readinglist-server/internal/progress"
)

// DefaultMaxBytes bounds import content size.
const DefaultMaxBytes = 10 << 20

// ErrNoSession is returned when Run is called without a user session.
var ErrNoSession = errors.New("import requires a session")

// BookWriter is the slice of the book repository the pipeline needs.
type BookWriter interface {
	GetBooks(ctx context.Context, userID string) []domain.Book
	AddBook(ctx context.Context, book domain.Book) bool
}

// Pipeline parses, decides on, and ingests import content.
type Pipeline struct {
	books    BookWriter
	logger   *slog.Logger
	now      func() time.Time
	newID    func() (string, error)
	maxBytes int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithMaxBytes overrides DefaultMaxBytes.
func WithMaxBytes(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

// WithIDGenerator overrides id.Book.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(p *Pipeline) { p.newID = gen }
}

// NewPipeline creates a Pipeline writing through books.
func NewPipeline(books BookWriter, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Pipeline{
		books:    books,
		logger:   logger,
		now:      time.Now,
		newID:    id.Book,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run imports content for the session's user. A *ParseError means nothing
// was ingested. Otherwise every record gets an outcome and accepted
// records are written one by one; a record that fails to persist is
// counted as failed and the batch continues. Once ingestion starts it is
// not interrupted by ctx cancellation.
func (p *Pipeline) Run(ctx context.Context, sess *domain.Session, format Format, content []byte) (*domain.ImportSummary, error) {
	if sess == nil || sess.UserID == "" {
		return nil, ErrNoSession
	}
	if len(content) > p.maxBytes {
		return nil, &ParseError{Format: format, Msg: "content exceeds the import size limit"}
	}

	candidates, err := Parse(format, content)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	existing := NewSnapshot(p.books.GetBooks(ctx, sess.UserID))

	summary := &domain.ImportSummary{
		BatchID:  id.Batch(),
		Total:    len(candidates),
		Outcomes: make([]domain.ImportOutcome, 0, len(candidates)),
	}
	log := p.logger.With("user_id", sess.UserID, "batch_id", summary.BatchID, "format", string(format))

	for i, c := range candidates {
		d := Decide(c, existing)
		outcome := domain.ImportOutcome{Index: i, Kind: d.Kind, Reason: d.Reason, Title: strings.TrimSpace(c.Title)}

		if d.Kind == domain.OutcomeAccepted {
			book, err := p.build(sess.UserID, c)
			switch {
			case err != nil:
				outcome.Kind, outcome.Reason = domain.OutcomeRejected, "could not assign an id"
			case !p.books.AddBook(ctx, book):
				outcome.Kind, outcome.Reason = domain.OutcomeRejected, "storage failure"
			default:
				outcome.BookID = book.BookID
			}
		}

		switch outcome.Kind {
		case domain.OutcomeAccepted:
			summary.Imported++
		case domain.OutcomeSkipped:
			summary.Skipped++
		default:
			summary.Failed++
			log.Debug("import record rejected", "index", i, "reason", outcome.Reason)
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	log.Info("import finished",
		"total", summary.Total,
		"imported", summary.Imported,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

// build turns an accepted candidate into a new book owned by userID.
func (p *Pipeline) build(userID string, c Candidate) (domain.Book, error) {
	bookID, err := p.newID()
	if err != nil {
		return domain.Book{}, err
	}

	status := domain.StatusWishlist
	if st, ok := domain.ParseStatus(c.Status); ok {
		status = st
	}

	b := domain.Book{
		SchemaVersion: domain.CurrentSchemaVersion,
		BookID:        bookID,
		UserID:        userID,
		Title:         strings.TrimSpace(c.Title),
		Author:        strings.TrimSpace(c.Author),
		Status:        status,
		TotalPages:    max(c.TotalPages, 0),
		CurrentPage:   max(c.CurrentPage, 0),
		Notes:         c.Notes,
		Rating:        c.Rating,
		CompletedAt:   c.CompletedAt,
		PagesRead:     max(c.PagesRead, 0),
		CreatedAt:     p.now(),
	}
	if c.ISBN != nil {
		v := *c.ISBN
		if n, ok := isbn.Normalize(v); ok {
			v = n
		}
		b.ISBN = &v
	}
	progress.Refresh(&b)
	return b, nil
}
