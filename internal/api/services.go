package api

import "github.com/listenupapp/readinglist-server/internal/service"

// Services groups the business logic services used by the API server.
type Services struct {
	Auth   *service.AuthService
	Book   *service.BookService
	Import *service.ImportService
	Export *service.ExportService
	Stats  *service.StatsService
	Search *service.SearchService
}
