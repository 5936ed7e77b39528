// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"folio/internal/cache"
	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/render"
	"folio/internal/site"
	"folio/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "folio")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "folio")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if _, err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "page:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB        *sql.DB
	Pages     *store.PageStore
	PageCache *cache.PageCache
	Renderer  *render.Renderer
	Roots     site.Roots
	Site      *site.Site
	Public    *Public
}

// newTestEnv creates an isolated page tree (its own home, blog index and
// portfolio index) and a Public handler group serving it. The tree is
// removed when the test ends.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)
	ctx := context.Background()

	pages := store.NewPageStore(db)
	pageCache := cache.NewPageCache(vk, 1*time.Minute)
	pageCache.InvalidateAll(ctx)

	home, err := pages.Create(ctx, &models.Page{
		Type: models.PageTypeHome, Title: "Test Home", Slug: "test-home-" + uuid.NewString()[:8], Live: true,
		Home: &models.HomeDetail{AuthorName: "Tester", Tagline: "Testing the handlers"},
	})
	if err != nil {
		t.Fatalf("create home: %v", err)
	}
	t.Cleanup(func() { pages.Delete(context.Background(), home.ID) })

	blog, err := pages.Create(ctx, &models.Page{
		Type: models.PageTypeBlogIndex, ParentID: &home.ID, Title: "Blog", Slug: "blog", Live: true,
	})
	if err != nil {
		t.Fatalf("create blog index: %v", err)
	}
	portfolio, err := pages.Create(ctx, &models.Page{
		Type: models.PageTypePortfolioIndex, ParentID: &home.ID, Title: "Portfolio", Slug: "portfolio", Live: true,
	})
	if err != nil {
		t.Fatalf("create portfolio index: %v", err)
	}

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	roots := site.Roots{
		Home:      site.Ref{ID: home.ID, Slug: home.Slug, Title: home.Title},
		Blog:      site.Ref{ID: blog.ID, Slug: blog.Slug, Title: blog.Title},
		Portfolio: site.Ref{ID: portfolio.ID, Slug: portfolio.Slug, Title: portfolio.Title},
	}
	s := site.New(pages, store.NewImageStore(db), nil, roots, site.Settings{
		SiteName:           "folio",
		BlogPageSize:       1,
		HomeBlogLimit:      3,
		HomePortfolioLimit: 4,
		SearchPageSize:     10,
	})

	return &testEnv{
		DB:        db,
		Pages:     pages,
		PageCache: pageCache,
		Renderer:  renderer,
		Roots:     roots,
		Site:      s,
		Public:    NewPublic(s, renderer, pageCache, "folio"),
	}
}

// addPost creates a post below the matching test root, first published
// `day` days into 2024.
func (env *testEnv) addPost(t *testing.T, pt models.PageType, title string, day int, live, restricted bool) *models.Page {
	t.Helper()
	published := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, day)
	p := &models.Page{
		Type:             pt,
		Title:            title,
		Live:             live,
		Restricted:       restricted,
		FirstPublishedAt: &published,
	}
	switch pt {
	case models.PageTypeBlogPost:
		p.ParentID = &env.Roots.Blog.ID
		p.BlogPost = &models.BlogPostDetail{
			Date:  published,
			Intro: title + " intro",
			Body:  []models.Block{{Kind: models.BlockParagraph, Value: "<p>" + title + " body</p>"}},
		}
	case models.PageTypePortfolioPost:
		p.ParentID = &env.Roots.Portfolio.ID
		p.Portfolio = &models.PortfolioPostDetail{Intro: title + " intro", GithubLink: "https://github.com/example/project"}
	}
	created, err := env.Pages.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("create %s %q: %v", pt, title, err)
	}
	return created
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
