// Package main provides the entry point for the reading list server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"golang.org/x/sync/errgroup"

	"github.com/listenupapp/readinglist-server/internal/di"
	"github.com/listenupapp/readinglist-server/internal/di/providers"
	"github.com/listenupapp/readinglist-server/internal/logger"
	"github.com/listenupapp/readinglist-server/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "reading list server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := di.NewContainer()
	if err := di.Bootstrap(ctx, injector); err != nil {
		_ = injector.Shutdown()
		return fmt.Errorf("bootstrap: %w", err)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	server := do.MustInvoke[*providers.HTTPServerHandle](injector)
	cleanup := do.MustInvoke[*providers.SessionCleanupJob](injector)
	inbox, err := do.Invoke[*watcher.Inbox](injector)
	if err != nil {
		_ = injector.Shutdown()
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server starting", "addr", server.Addr)
		return server.Serve()
	})
	g.Go(func() error { return cleanup.Run(ctx) })
	if inbox != nil {
		g.Go(func() error { return inbox.Run(ctx) })
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server gracefully...")
		return server.Shutdown()
	})

	runErr := g.Wait()

	// Remaining handles (store, search index) implement do.Shutdownable.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}
	if runErr != nil {
		return runErr
	}
	log.Info("Server stopped")
	return nil
}
