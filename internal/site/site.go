// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package site assembles the render context of every public page. Each
// page type has its own builder function; they share a Site holding the
// data sources, the root pages resolved at startup and the listing sizes.
package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"folio/internal/models"
)

// ErrNotFound is returned when a requested page does not exist or is not
// visible to the public.
var ErrNotFound = errors.New("page not found")

// PageSource is the page tree as seen by the context builders.
// *store.PageStore satisfies it.
type PageSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Page, error)
	FindVisibleChild(ctx context.Context, parentID uuid.UUID, t models.PageType, slug string) (*models.Page, error)
	ChildrenOf(ctx context.Context, parentID uuid.UUID, t models.PageType) ([]models.Page, error)
	Search(ctx context.Context, query string, indexed []models.PageType) ([]models.Page, error)
}

// ImageSource batch-loads image metadata. *store.ImageStore satisfies it.
type ImageSource interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Image, error)
}

// FileURLer builds public URLs for stored objects. *storage.Client
// satisfies it.
type FileURLer interface {
	FileURL(key string) string
}

// Ref identifies a singleton page without holding its content.
type Ref struct {
	ID    uuid.UUID
	Slug  string
	Title string
}

// Roots are the singleton pages of the site.
type Roots struct {
	Home      Ref
	Blog      Ref
	Portfolio Ref
}

// rootFinder is the one lookup ResolveRoots needs.
type rootFinder interface {
	FirstByType(ctx context.Context, t models.PageType) (*models.Page, error)
}

// ResolveRoots looks up the home, blog index and portfolio index pages
// once. A missing root is an error: the site cannot route without it.
func ResolveRoots(ctx context.Context, f rootFinder) (*Roots, error) {
	var roots Roots
	for _, r := range []struct {
		t   models.PageType
		dst *Ref
	}{
		{models.PageTypeHome, &roots.Home},
		{models.PageTypeBlogIndex, &roots.Blog},
		{models.PageTypePortfolioIndex, &roots.Portfolio},
	} {
		p, err := f.FirstByType(ctx, r.t)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", r.t, err)
		}
		if p == nil {
			return nil, fmt.Errorf("resolve %s: no page of this type exists", r.t)
		}
		*r.dst = Ref{ID: p.ID, Slug: p.Slug, Title: p.Title}
	}

	slog.Info("site roots resolved",
		"home", roots.Home.ID.String(),
		"blog", "/"+roots.Blog.Slug,
		"portfolio", "/"+roots.Portfolio.Slug,
	)
	return &roots, nil
}

// Settings are the listing sizes and site-wide labels.
type Settings struct {
	SiteName           string
	BlogPageSize       int
	HomeBlogLimit      int
	HomePortfolioLimit int
	SearchPageSize     int
}

// Site bundles everything the builders need. It holds no per-request
// state and is safe for concurrent use.
type Site struct {
	pages    PageSource
	images   ImageSource
	urls     FileURLer
	roots    Roots
	settings Settings
}

// New creates a Site. images and urls may be nil when image storage is not
// configured; pages then render without pictures.
func New(pages PageSource, images ImageSource, urls FileURLer, roots Roots, settings Settings) *Site {
	return &Site{
		pages:    pages,
		images:   images,
		urls:     urls,
		roots:    roots,
		settings: settings,
	}
}

// Roots returns the singleton pages the site was built with.
func (s *Site) Roots() Roots {
	return s.roots
}

// maxDepth bounds the ancestor walk in openPage.
const maxDepth = 16

// openPage loads the page with the given id if it and every ancestor above
// it are live and public, and returns nil otherwise. An unpublished or
// restricted page hides the whole branch below it.
func (s *Site) openPage(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	var page *models.Page
	next := id
	for range maxDepth {
		p, err := s.pages.FindByID(ctx, next)
		if err != nil {
			return nil, err
		}
		if p == nil || !p.IsVisible() {
			return nil, nil
		}
		if page == nil {
			page = p
		}
		if p.ParentID == nil {
			return page, nil
		}
		next = *p.ParentID
	}
	return nil, fmt.Errorf("page %s: more than %d ancestors", id, maxDepth)
}

// openSections reports, per post type, whether its section index can be
// reached by the public.
func (s *Site) openSections(ctx context.Context) (map[models.PageType]bool, error) {
	open := make(map[models.PageType]bool, 2)
	for t, ref := range map[models.PageType]Ref{
		models.PageTypeBlogPost:      s.roots.Blog,
		models.PageTypePortfolioPost: s.roots.Portfolio,
	} {
		p, err := s.openPage(ctx, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", t, err)
		}
		open[t] = p != nil
	}
	return open, nil
}

// BlogPath returns the URL path of the blog index.
func (s *Site) BlogPath() string {
	return "/" + s.roots.Blog.Slug
}

// PortfolioPath returns the URL path of the portfolio index.
func (s *Site) PortfolioPath() string {
	return "/" + s.roots.Portfolio.Slug
}

// URLFor returns the public path of a page. Posts are addressed below
// their section index.
func (s *Site) URLFor(p *models.Page) string {
	switch p.Type {
	case models.PageTypeHome:
		return "/"
	case models.PageTypeBlogIndex:
		return s.BlogPath()
	case models.PageTypePortfolioIndex:
		return s.PortfolioPath()
	case models.PageTypeBlogPost:
		return s.BlogPath() + "/" + p.Slug
	case models.PageTypePortfolioPost:
		return s.PortfolioPath() + "/" + p.Slug
	}
	return "/"
}
