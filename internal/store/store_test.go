// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"folio/internal/database"
	"folio/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "folio")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "folio")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if _, err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testTree creates an isolated home → blog index / portfolio index tree
// and removes it (with every descendant) when the test ends.
func testTree(t *testing.T, s *PageStore) (home, blog, portfolio *models.Page) {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	var err error
	home, err = s.Create(ctx, &models.Page{
		Type: models.PageTypeHome, Title: "Test Home", Slug: "test-home-" + suffix, Live: true,
		Home: &models.HomeDetail{AuthorName: "Tester", Tagline: "Testing"},
	})
	if err != nil {
		t.Fatalf("create home: %v", err)
	}
	t.Cleanup(func() { s.Delete(context.Background(), home.ID) })

	blog, err = s.Create(ctx, &models.Page{
		Type: models.PageTypeBlogIndex, ParentID: &home.ID, Title: "Blog", Slug: "blog", Live: true,
	})
	if err != nil {
		t.Fatalf("create blog index: %v", err)
	}
	portfolio, err = s.Create(ctx, &models.Page{
		Type: models.PageTypePortfolioIndex, ParentID: &home.ID, Title: "Portfolio", Slug: "portfolio", Live: true,
	})
	if err != nil {
		t.Fatalf("create portfolio index: %v", err)
	}
	return home, blog, portfolio
}

// cleanImages removes test images by S3 key. Call in t.Cleanup().
func cleanImages(t *testing.T, db *sql.DB, keys ...string) {
	t.Helper()
	for _, key := range keys {
		db.Exec("DELETE FROM images WHERE s3_key = $1", key)
	}
}
