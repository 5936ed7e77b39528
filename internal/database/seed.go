package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"folio/internal/models"
)

// PageWriter is the part of the page store Seed builds the tree with.
// *store.PageStore satisfies it.
type PageWriter interface {
	FirstByType(ctx context.Context, t models.PageType) (*models.Page, error)
	Create(ctx context.Context, p *models.Page) (*models.Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Seed populates an empty database with the page tree the site needs to
// boot: a home page, the blog and portfolio indexes and a few sample posts.
// Every page goes through the store, so it is validated like any other.
// It does nothing if a home page already exists. When a page fails, the
// partial tree is removed again.
func Seed(ctx context.Context, pages PageWriter) (err error) {
	existing, err := pages.FirstByType(ctx, models.PageTypeHome)
	if err != nil {
		return fmt.Errorf("seed check pages: %w", err)
	}
	if existing != nil {
		slog.Info("database already seeded, skipping")
		return nil
	}

	now := time.Now()
	home, err := createSeedPage(ctx, pages, &models.Page{
		Type: models.PageTypeHome, Title: "Home", Slug: "home",
		Home: &models.HomeDetail{
			AuthorName: "Site Owner",
			Tagline:    "Notes on software, systems and side projects.",
			Bio:        "<p>I write about the things I build.</p>",
		},
	}, now)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if derr := pages.Delete(context.WithoutCancel(ctx), home.ID); derr != nil {
				slog.Error("seed rollback failed", "home", home.ID.String(), "error", derr)
			}
		}
	}()

	blog, err := createSeedPage(ctx, pages, &models.Page{
		Type: models.PageTypeBlogIndex, ParentID: &home.ID, Title: "Blog", Slug: "blog",
	}, now)
	if err != nil {
		return err
	}
	portfolio, err := createSeedPage(ctx, pages, &models.Page{
		Type: models.PageTypePortfolioIndex, ParentID: &home.ID, Title: "Portfolio", Slug: "portfolio",
	}, now)
	if err != nil {
		return err
	}

	base := time.Date(now.Year(), time.January, 1, 9, 0, 0, 0, time.UTC)
	posts := []*models.Page{
		{Title: "Hello, world", BlogPost: &models.BlogPostDetail{
			Date: base, Intro: "Why this site exists.", ReadingMinutes: 2,
			Body: []models.Block{
				{Kind: models.BlockHeading, Value: "Hello"},
				{Kind: models.BlockParagraph, Value: "<p>The first post.</p>"},
			},
		}},
		{Title: "Paginating listings", BlogPost: &models.BlogPostDetail{
			Date: base.AddDate(0, 0, 1), Intro: "Falling back gracefully on bad page numbers.",
			Body: []models.Block{
				{Kind: models.BlockParagraph, Value: "<p>Out of range pages clamp to the last one.</p>"},
				{Kind: models.BlockCode, Language: "go", Value: "page := listing.Paginate(posts, 1, r.URL.Query().Get(\"page\"))"},
			},
		}},
		{Title: "Caching rendered pages", BlogPost: &models.BlogPostDetail{
			Date: base.AddDate(0, 0, 2), Intro: "Keeping full pages in Valkey.", ReadingMinutes: 4,
			Body: []models.Block{{Kind: models.BlockParagraph, Value: "<p>Short TTLs keep things fresh.</p>"}},
		}},
	}
	for _, p := range posts {
		p.Type, p.ParentID = models.PageTypeBlogPost, &blog.ID
		if _, err = createSeedPage(ctx, pages, p, p.BlogPost.Date); err != nil {
			return err
		}
	}

	projects := []*models.Page{
		{Title: "folio", Portfolio: &models.PortfolioPostDetail{
			Intro: "This site.", GithubLink: "https://github.com/example/folio",
		}},
		{Title: "Feed reader", Portfolio: &models.PortfolioPostDetail{
			Intro: "A terminal RSS reader.", GithubLink: "https://github.com/example/feed-reader",
		}},
	}
	for i, p := range projects {
		p.Type, p.ParentID = models.PageTypePortfolioPost, &portfolio.ID
		if _, err = createSeedPage(ctx, pages, p, base.AddDate(0, 0, 3*i)); err != nil {
			return err
		}
	}

	slog.Info("database seeded with sample pages",
		"blog_posts", len(posts),
		"portfolio_posts", len(projects),
	)
	return nil
}

// createSeedPage stores one live, public page first published at the
// given time.
func createSeedPage(ctx context.Context, pages PageWriter, p *models.Page, published time.Time) (*models.Page, error) {
	p.Live = true
	p.FirstPublishedAt = &published
	created, err := pages.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("seed %s %q: %w", p.Type, p.Title, err)
	}
	return created, nil
}
