// Package di provides dependency injection configuration for the reading list server.
package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/readinglist-server/internal/auth"
	"github.com/listenupapp/readinglist-server/internal/config"
	"github.com/listenupapp/readinglist-server/internal/di/providers"
	"github.com/listenupapp/readinglist-server/internal/logger"
	"github.com/listenupapp/readinglist-server/internal/service"
	"github.com/listenupapp/readinglist-server/internal/store"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideBookRepository)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideImportPipeline)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideImportService)
	do.Provide(injector, providers.ProvideExportService)
	do.Provide(injector, providers.ProvideStatsService)

	// Workers
	do.Provide(injector, providers.ProvideInbox)
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services in dependency order, migrates stored
// books and rebuilds the search index. The HTTP server is created but not
// started.
func Bootstrap(ctx context.Context, injector *do.RootScope) error {
	steps := []func(do.Injector) error{
		invoke[*config.Config],
		invoke[*logger.Logger],
		invoke[providers.AuthKey],
		invoke[*providers.StoreHandle],
		invoke[*store.BookRepository],
		invoke[*providers.SearchIndexHandle],
		invoke[*service.SearchService],
		invoke[*auth.TokenService],

		// Business services
		invoke[*service.AuthService],
		invoke[*service.BookService],
		invoke[*service.ImportService],
		invoke[*service.ExportService],
		invoke[*service.StatsService],

		// Server
		invoke[*providers.HTTPServerHandle],
	}
	for _, step := range steps {
		if err := step(injector); err != nil {
			return err
		}
	}

	return providers.ReindexSearch(ctx, injector)
}

func invoke[T any](i do.Injector) error {
	_, err := do.Invoke[T](i)
	return err
}
