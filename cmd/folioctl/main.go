// Package main is the entry point for folioctl, the maintenance command of
// a folio site. It connects to the same PostgreSQL and Valkey as the server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"folio/internal/cache"
	"folio/internal/cli"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/publish"
	"folio/internal/store"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(open).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// open connects the stores and the page cache described by the
// environment.
func open(ctx context.Context) (*cli.Services, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Connect(ctx, cfg.DSN(), 2)
	if err != nil {
		return nil, nil, err
	}
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	pageCache := cache.NewPageCache(valkeyClient, cfg.CacheTTL)
	svc := &cli.Services{
		Publisher: publish.NewPublisher(store.NewPageStore(db), pageCache),
		Library:   publish.NewLibrary(store.NewImageStore(db), pageCache),
	}
	release := func() {
		valkeyClient.Close()
		db.Close()
	}
	return svc, release, nil
}
