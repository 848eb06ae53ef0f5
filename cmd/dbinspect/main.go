// Package main prints a summary of the store's key space without writing to it.
//
// Usage:
//
//	go run ./cmd/dbinspect
//	go run ./cmd/dbinspect -prefix books_ -dump
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/listenupapp/readinglist-server/internal/config"
	"github.com/listenupapp/readinglist-server/internal/di/providers"
	"github.com/listenupapp/readinglist-server/internal/domain"
	"github.com/listenupapp/readinglist-server/internal/logger"
	"github.com/listenupapp/readinglist-server/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	prefix := flag.String("prefix", "", "only keys starting with this prefix")
	dump := flag.Bool("dump", false, "print each value as indented JSON")
	flag.Parse()

	if err := run(context.Background(), *prefix, *dump); err != nil {
		fmt.Fprintf(os.Stderr, "dbinspect: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, prefix string, dump bool) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}
	medium, location, err := providers.OpenMedium(ctx, cfg.Store)
	if err != nil {
		return err
	}
	st := store.New(medium, logger.Discard().Logger)
	defer st.Close()

	keys, err := st.Keys(ctx, prefix)
	if err != nil {
		return err
	}
	sort.Strings(keys)

	fmt.Println("=== Store Inspection ===")
	fmt.Printf("Backend:  %s (%s)\n", cfg.Store.Backend, location)
	fmt.Printf("Keys:     %d\n", len(keys))
	if userID, ok := st.ActiveSession(ctx); ok {
		fmt.Printf("Active:   %s\n", userID)
	}
	fmt.Println()

	groups := make(map[string]int)
	var totalBytes int
	for _, key := range keys {
		raw, err := st.Raw(ctx, key)
		if err != nil {
			fmt.Printf("%-40s  unreadable: %v\n", key, err)
			continue
		}
		totalBytes += len(raw)
		groups[keyGroup(key)]++

		fmt.Printf("%-40s  %8d bytes", key, len(raw))
		if userID, ok := strings.CutPrefix(key, "books_"); ok && userID != "" {
			var books []domain.LegacyBook
			if err := json.Unmarshal(raw, &books); err != nil {
				fmt.Printf("  malformed collection: %v", err)
			} else {
				fmt.Printf("  %d books%s", len(books), schemaNote(books))
			}
		}
		fmt.Println()

		if dump {
			var v any
			if err := json.Unmarshal(raw, &v); err == nil {
				out, _ := json.MarshalIndent(v, "    ", "  ")
				fmt.Printf("    %s\n", out)
			}
		}
	}

	fmt.Println()
	fmt.Println("=== Summary ===")
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-12s %d\n", name, groups[name])
	}
	fmt.Printf("Total size:  %d bytes\n", totalBytes)
	return nil
}

func keyGroup(key string) string {
	switch {
	case strings.HasPrefix(key, "books_"):
		return "collections"
	case strings.HasPrefix(key, "user:idx:"):
		return "user index"
	case strings.HasPrefix(key, "user:"):
		return "users"
	case key == "session:active":
		return "active"
	case strings.HasPrefix(key, "sess:"):
		return "sessions"
	default:
		return "other"
	}
}

// schemaNote flags collections still holding records the migration has
// not upgraded.
func schemaNote(books []domain.LegacyBook) string {
	legacy := 0
	for _, b := range books {
		if b.SchemaVersion < domain.CurrentSchemaVersion {
			legacy++
		}
	}
	if legacy == 0 {
		return ""
	}
	return fmt.Sprintf(" (%d need migration)", legacy)
}
