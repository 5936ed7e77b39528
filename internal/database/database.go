// Package database owns the PostgreSQL lifecycle of the site: opening the
// pool, applying the embedded goose migrations and seeding a development
// page tree.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Connect opens a pgx-backed pool of at most maxConns connections and
// pings it before returning. maxConns below 1 leaves the pool unbounded.
func Connect(ctx context.Context, dsn string, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(max(maxConns/2, 1))
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	slog.Info("database connected", "max_conns", maxConns)
	return db, nil
}

// Migrate applies every pending migration and returns the schema version
// the database ends up at.
func Migrate(ctx context.Context, db *sql.DB) (int64, error) {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("migrations fs: %w", err)
	}

	// The provider is not closed: Close would close db as well.
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations)
	if err != nil {
		return 0, fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		slog.Info("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("goose version: %w", err)
	}
	slog.Info("database schema ready", "version", version)
	return version, nil
}
