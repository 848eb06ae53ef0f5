package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/listenupapp/readinglist-server/internal/config"
	"github.com/listenupapp/readinglist-server/internal/logger"
	"github.com/listenupapp/readinglist-server/internal/search"
	"github.com/listenupapp/readinglist-server/internal/service"
	"github.com/listenupapp/readinglist-server/internal/store"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.New(search.Options{
		DataPath: cfg.Search.Path,
		Logger:   log.WithComponent("search").Logger,
	})
	if err != nil {
		return nil, err
	}

	location := cfg.Search.Path
	if location == "" {
		location = "memory"
	}
	log.Info("Search index initialized", "location", location)

	return &SearchIndexHandle{Index: index}, nil
}

// ProvideSearchService provides the search service and wires the index
// into the book repository so every write is reflected in search.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	books := do.MustInvoke[*store.BookRepository](i)
	log := do.MustInvoke[*logger.Logger](i)

	books.SetIndexer(indexHandle.Index)
	return service.NewSearchService(indexHandle.Index, books, log.Logger), nil
}

// ReindexSearch rebuilds the index from the store.
func ReindexSearch(ctx context.Context, i do.Injector) error {
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	start := time.Now()
	count, err := searchService.Reindex(ctx)
	if err != nil {
		return err
	}
	log.Info("Search index rebuilt", "books", count, "duration", time.Since(start))
	return nil
}
