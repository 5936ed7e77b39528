// Package main is the entry point for the folio server. It loads
// configuration, connects to services, resolves the site roots, sets up
// routing, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/handlers"
	"folio/internal/middleware"
	"folio/internal/render"
	"folio/internal/router"
	"folio/internal/site"
	"folio/internal/storage"
	"folio/internal/store"
	"folio/web"
)

func main() {
	// Load configuration first so the log level can follow the environment.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.IsDev() {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"site", cfg.SiteName,
	)

	ctx := context.Background()

	// Connect to PostgreSQL.
	db, err := database.Connect(ctx, cfg.DSN(), cfg.DBMaxConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if _, err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	pageStore := store.NewPageStore(db)
	imageStore := store.NewImageStore(db)

	// Seed development data (no-op if a home page already exists).
	if cfg.IsDev() {
		if err := database.Seed(ctx, pageStore); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible page cache).
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize the L2 page cache and drop pages rendered by a previous
	// build, whose templates may differ.
	pageCache := cache.NewPageCache(valkeyClient, cfg.CacheTTL)
	pageCache.InvalidateAll(ctx)

	// Connect to S3-compatible image storage (optional; pages render
	// without pictures when it is absent).
	var (
		images site.ImageSource
		urls   site.FileURLer
	)
	storageClient, err := storage.New(storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := storageClient.Ping(pingCtx)
		cancel()
		if err != nil {
			slog.Error("s3 storage unreachable", "error", err)
			os.Exit(1)
		}
		images, urls = imageStore, storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
	} else {
		slog.Warn("s3 storage not configured, pages render without images")
	}

	// Resolve the singleton pages once; the routes are derived from them.
	rootsCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	roots, err := site.ResolveRoots(rootsCtx, pageStore)
	cancel()
	if err != nil {
		slog.Error("failed to resolve site roots", "error", err)
		os.Exit(1)
	}

	s := site.New(pageStore, images, urls, *roots, site.Settings{
		SiteName:           cfg.SiteName,
		BlogPageSize:       cfg.BlogPageSize,
		HomeBlogLimit:      cfg.HomeBlogLimit,
		HomePortfolioLimit: cfg.HomePortfolioLimit,
		SearchPageSize:     cfg.SearchPageSize,
	})

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		slog.Error("failed to open static assets", "error", err)
		os.Exit(1)
	}

	publicHandlers := handlers.NewPublic(s, renderer, pageCache, cfg.SiteName)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow,
		middleware.WithRejectHandler(http.HandlerFunc(publicHandlers.TooManyRequests)))
	defer limiter.Stop()

	health := handlers.NewHealth(map[string]handlers.Check{
		"postgres": db.PingContext,
		"valkey":   func(ctx context.Context) error { return valkeyClient.Ping(ctx).Err() },
	})

	imageBase := ""
	if storageClient != nil {
		imageBase = storageClient.FileURL("")
	}

	r := router.New(publicHandlers, health, router.Options{
		BlogPath:      s.BlogPath(),
		PortfolioPath: s.PortfolioPath(),
		ImageBase:     imageBase,
		Static:        static,
		Limiter:       limiter,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
