// Package main seeds a store with a demo user and a sample reading list.
//
// Usage:
//
//	go run ./cmd/seed
//	go run ./cmd/seed -email me@example.com -password hunter2x
//
// Store settings come from the environment and .env, like the server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/listenupapp/readinglist-server/internal/auth"
	"github.com/listenupapp/readinglist-server/internal/config"
	"github.com/listenupapp/readinglist-server/internal/di/providers"
	"github.com/listenupapp/readinglist-server/internal/domain"
	domainerrors "github.com/listenupapp/readinglist-server/internal/errors"
	"github.com/listenupapp/readinglist-server/internal/importer"
	"github.com/listenupapp/readinglist-server/internal/logger"
	"github.com/listenupapp/readinglist-server/internal/service"
	"github.com/listenupapp/readinglist-server/internal/store"
	"github.com/listenupapp/readinglist-server/internal/validation"
)

// sampleCSV is deliberately comma-free inside fields; the importer's CSV
// reader does not handle quoting.
const sampleCSV = `title,author,status,totalPages,currentPage,isbn,notes,rating,dateCompleted
The Left Hand of Darkness,Ursula K. Le Guin,Completed,304,304,978-0-441-47812-5,Reread soon,5,2024-01-14
Dune,Frank Herbert,Completed,412,412,9780441172719,,4.5,2024-02-03
Piranesi,Susanna Clarke,Completed,272,272,,Short and strange,4,2024-03-22
The Name of the Rose,Umberto Eco,Reading,536,180,,,,
Middlemarch,George Eliot,Reading,880,95,,Book club pick,,
Project Hail Mary,Andy Weir,Wishlist,496,0,,,,
A Memory Called Empire,Arkady Martine,Wishlist,462,0,,,,
`

func main() {
	email := flag.String("email", "demo@example.com", "demo user email")
	password := flag.String("password", "readinglist1", "demo user password")
	flag.Parse()

	if err := run(context.Background(), *email, *password); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, email, password string) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Level: slog.LevelInfo, Environment: cfg.App.Environment})

	medium, location, err := providers.OpenMedium(ctx, cfg.Store)
	if err != nil {
		return err
	}
	st := store.New(medium, log.Logger, store.WithMaxValueBytes(cfg.Store.MaxValueBytes))
	defer st.Close()
	log.Info("Seeding store", "backend", cfg.Store.Backend, "location", location)

	books := store.NewBookRepository(st, log.Logger)
	if _, err := books.Migrate(ctx); err != nil {
		return err
	}

	// Tokens are never issued here; any key satisfies the service.
	tokens, err := auth.NewTokenService(make([]byte, auth.KeySize), time.Hour)
	if err != nil {
		return err
	}
	authService := service.NewAuthService(st, tokens, validation.New(), log.Logger)

	user, err := authService.Register(ctx, service.RegisterRequest{Email: email, Password: password})
	switch {
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		user, err = st.GetUserByEmail(ctx, email)
		if err != nil {
			return err
		}
		log.Info("Using existing user", "user_id", user.ID, "email", email)
	case err != nil:
		return err
	default:
		log.Info("Created user", "user_id", user.ID, "email", email)
	}

	imports := service.NewImportService(importer.NewPipeline(books, log.Logger), log.Logger)
	sess := &domain.Session{ID: "seed", UserID: user.ID}
	summary, err := imports.Import(ctx, sess, importer.FormatCSV, []byte(sampleCSV))
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %s: %d imported, %d already present, %d failed\n",
		email, summary.Imported, summary.Skipped, summary.Failed)
	return nil
}
