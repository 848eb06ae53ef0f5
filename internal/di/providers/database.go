package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/do/v2"

	"github.com/listenupapp/readinglist-server/internal/config"
	"github.com/listenupapp/readinglist-server/internal/logger"
	"github.com/listenupapp/readinglist-server/internal/store"
	"github.com/listenupapp/readinglist-server/internal/store/redis"
	"github.com/listenupapp/readinglist-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// OpenMedium opens the key-value medium selected by cfg.
func OpenMedium(ctx context.Context, cfg config.StoreConfig) (store.Medium, string, error) {
	switch cfg.Backend {
	case config.BackendBadger, "":
		m, err := store.OpenBadger(cfg.BadgerPath)
		return m, cfg.BadgerPath, err
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o750); err != nil {
			return nil, "", err
		}
		m, err := sqlite.Open(cfg.SQLitePath)
		return m, cfg.SQLitePath, err
	case config.BackendRedis:
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		m, err := redis.Open(ctx, redis.Options{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: "readinglist:",
		})
		return m, cfg.RedisAddr, err
	default:
		return nil, "", fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// ProvideStore opens the configured medium.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	medium, location, err := OpenMedium(context.Background(), cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	st := store.New(medium, log.WithComponent("store").Logger, store.WithMaxValueBytes(cfg.Store.MaxValueBytes))
	log.Info("Store initialized", "backend", cfg.Store.Backend, "location", location)

	return &StoreHandle{Store: st}, nil
}

// ProvideBookRepository provides the book repository and brings legacy
// records up to the current schema before anything reads them.
func ProvideBookRepository(i do.Injector) (*store.BookRepository, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	books := store.NewBookRepository(storeHandle.Store, log.Logger)

	report, err := books.Migrate(context.Background())
	if err != nil {
		return nil, fmt.Errorf("migrate books: %w", err)
	}
	log.Info("Book migration complete",
		"collections", report.Collections,
		"rewritten", report.Rewritten,
		"records", report.Records,
		"unreadable", len(report.Unreadable),
		"rejected", len(report.Rejected),
	)

	return books, nil
}
