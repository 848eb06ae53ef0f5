package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/listenupapp/readinglist-server/internal/config"
	"github.com/listenupapp/readinglist-server/internal/logger"
	"github.com/listenupapp/readinglist-server/internal/service"
	"github.com/listenupapp/readinglist-server/internal/watcher"
)

// ProvideInbox provides the import inbox. It is nil when watching is
// disabled by configuration.
func ProvideInbox(i do.Injector) (*watcher.Inbox, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	imports := do.MustInvoke[*service.ImportService](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Import.WatchInbox {
		log.Info("Import inbox disabled by configuration")
		return nil, nil
	}

	return watcher.NewInbox(cfg.Import.InboxPath, imports, log.WithComponent("inbox").Logger,
		watcher.WithUserChecker(storeHandle.Store),
		watcher.WithMaxBytes(int64(cfg.Import.MaxBytes)),
		watcher.WithWatchOptions(watcher.Options{SettleDelay: cfg.Import.SettleDelay}),
	), nil
}

// SessionCleanupJob periodically deletes expired sessions.
type SessionCleanupJob struct {
	run func(ctx context.Context)
}

// Run blocks until ctx is done.
func (j *SessionCleanupJob) Run(ctx context.Context) error {
	j.run(ctx)
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	cleanup := func(ctx context.Context) {
		count, err := storeHandle.DeleteExpiredSessions(ctx, time.Now())
		if err != nil {
			log.WithError(err).Warn("Session cleanup failed")
			return
		}
		if count > 0 {
			log.Info("Session cleanup completed", "deleted", count)
		}
	}

	return &SessionCleanupJob{run: func(ctx context.Context) {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		cleanup(ctx)
		for {
			select {
			case <-ticker.C:
				cleanup(ctx)
			case <-ctx.Done():
				return
			}
		}
	}}, nil
}
