package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/readinglist-server/internal/auth"
	"github.com/listenupapp/readinglist-server/internal/config"
	"github.com/listenupapp/readinglist-server/internal/importer"
	"github.com/listenupapp/readinglist-server/internal/logger"
	"github.com/listenupapp/readinglist-server/internal/service"
	"github.com/listenupapp/readinglist-server/internal/store"
	"github.com/listenupapp/readinglist-server/internal/validation"
)

// ProvideValidator provides the shared request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideImportPipeline provides the bulk import pipeline.
func ProvideImportPipeline(i do.Injector) (*importer.Pipeline, error) {
	cfg := do.MustInvoke[*config.Config](i)
	books := do.MustInvoke[*store.BookRepository](i)
	log := do.MustInvoke[*logger.Logger](i)

	return importer.NewPipeline(books, log.WithComponent("importer").Logger, importer.WithMaxBytes(cfg.Import.MaxBytes)), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, v, log.Logger), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	books := do.MustInvoke[*store.BookRepository](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(books, v, log.Logger), nil
}

// ProvideImportService provides the import service.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	pipeline := do.MustInvoke[*importer.Pipeline](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImportService(pipeline, log.Logger), nil
}

// ProvideExportService provides the export service.
func ProvideExportService(i do.Injector) (*service.ExportService, error) {
	books := do.MustInvoke[*store.BookRepository](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewExportService(books, log.Logger), nil
}

// ProvideStatsService provides the statistics service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	books := do.MustInvoke[*store.BookRepository](i)
	return service.NewStatsService(books), nil
}
