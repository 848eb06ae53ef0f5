package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/listenupapp/readinglist-server/internal/domain"
	"github.com/listenupapp/readinglist-server/internal/importer"
)

// Subdirectories of a user's inbox that receive handled files.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// inboxSessionID marks imports started from the inbox rather than a login.
const inboxSessionID = "inbox"

// Importer ingests one file's content for a session.
type Importer interface {
	Import(ctx context.Context, sess *domain.Session, format importer.Format, content []byte) (*domain.ImportSummary, error)
}

// UserChecker reports whether a user exists.
type UserChecker interface {
	UserExists(ctx context.Context, id string) (bool, error)
}

// InboxOption configures an Inbox.
type InboxOption func(*Inbox)

// WithUserChecker rejects files dropped into directories that do not
// belong to a known user.
func WithUserChecker(users UserChecker) InboxOption {
	return func(in *Inbox) { in.users = users }
}

// WithWatchOptions overrides the watcher options.
func WithWatchOptions(opts Options) InboxOption {
	return func(in *Inbox) { in.opts = opts }
}

// WithMaxBytes skips files larger than n bytes.
func WithMaxBytes(n int64) InboxOption {
	return func(in *Inbox) { in.maxBytes = n }
}

// Inbox imports files dropped into <root>/<user id>/. Each handled file is
// moved to the user's processed or failed directory.
type Inbox struct {
	root     string
	importer Importer
	users    UserChecker
	logger   *slog.Logger
	opts     Options
	maxBytes int64
	now      func() time.Time
}

// NewInbox creates an inbox rooted at root.
func NewInbox(root string, imp Importer, logger *slog.Logger, opts ...InboxOption) *Inbox {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	in := &Inbox{
		root:     filepath.Clean(root),
		importer: imp,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(in)
	}
	in.opts.setDefaults()
	return in
}

// Run imports files already waiting in the inbox, then watches for new
// ones until ctx is done.
func (in *Inbox) Run(ctx context.Context) error {
	if err := os.MkdirAll(in.root, 0o750); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}

	w, err := New(in.logger, in.root, in.opts, ProcessedDir, FailedDir)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(ctx) })
	g.Go(func() error {
		in.sweep(ctx)
		for ev := range w.Events() {
			if ctx.Err() != nil {
				continue
			}
			in.Process(ctx, ev.Path)
		}
		return nil
	})

	in.logger.Info("watching import inbox", "path", in.root)
	return g.Wait()
}

// sweep processes files that arrived while the server was down.
func (in *Inbox) sweep(ctx context.Context) {
	users, err := os.ReadDir(in.root)
	if err != nil {
		in.logger.Warn("failed to read inbox", "path", in.root, "error", err)
		return
	}
	for _, u := range users {
		if !u.IsDir() || in.opts.shouldIgnore(u.Name()) {
			continue
		}
		files, err := os.ReadDir(filepath.Join(in.root, u.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			if ctx.Err() != nil {
				return
			}
			if f.Type().IsRegular() && !in.opts.shouldIgnore(f.Name()) {
				in.Process(ctx, filepath.Join(in.root, u.Name(), f.Name()))
			}
		}
	}
}

// Process imports a single inbox file and files it away. It returns the
// import summary, or nil when the file was not imported.
func (in *Inbox) Process(ctx context.Context, path string) *domain.ImportSummary {
	rel, err := filepath.Rel(in.root, path)
	if err != nil {
		return nil
	}
	userID := filepath.Dir(rel)
	if userID == "." || filepath.Dir(userID) != "." {
		in.logger.Debug("ignoring file outside a user inbox", "path", path)
		return nil
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		in.logger.Warn("failed to stat inbox file", "path", path, "error", err)
		return nil
	}

	logger := in.logger.With("user_id", userID, "file", filepath.Base(path))

	format, ok := importer.FormatFromFilename(path)
	if !ok {
		in.fail(logger, path, userID, "unsupported file type")
		return nil
	}
	if in.maxBytes > 0 && info.Size() > in.maxBytes {
		in.fail(logger, path, userID, "file too large")
		return nil
	}
	if in.users != nil {
		exists, err := in.users.UserExists(ctx, userID)
		if err != nil {
			logger.Error("failed to look up inbox owner", "error", err)
			return nil
		}
		if !exists {
			in.fail(logger, path, userID, "unknown user")
			return nil
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read inbox file", "error", err)
		return nil
	}

	sess := &domain.Session{ID: inboxSessionID, UserID: userID}
	summary, err := in.importer.Import(ctx, sess, format, content)
	if err != nil {
		in.fail(logger, path, userID, err.Error())
		return nil
	}

	in.move(logger, path, userID, ProcessedDir)
	logger.Info("inbox import complete",
		"batch_id", summary.BatchID,
		"total", summary.Total,
		"imported", summary.Imported,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary
}

func (in *Inbox) fail(logger *slog.Logger, path, userID, reason string) {
	logger.Warn("inbox import failed", "reason", reason)
	in.move(logger, path, userID, FailedDir)
}

// move files path under <root>/<user>/<dir>/ with a timestamp prefix so
// repeated uploads of the same name do not collide.
func (in *Inbox) move(logger *slog.Logger, path, userID, dir string) {
	dest := filepath.Join(in.root, userID, dir)
	if err := os.MkdirAll(dest, 0o750); err != nil {
		logger.Error("failed to create inbox directory", "path", dest, "error", err)
		return
	}
	name := in.now().UTC().Format("20060102T150405Z") + "-" + filepath.Base(path)
	if err := os.Rename(path, filepath.Join(dest, name)); err != nil {
		logger.Error("failed to move inbox file", "path", path, "error", err)
	}
}
