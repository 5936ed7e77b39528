// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package site

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"folio/internal/blocks"
	"folio/internal/listing"
	"folio/internal/models"
)

// SearchTemplate is the template name of the search results view, which
// has no page of its own.
const SearchTemplate = "search"

// View is a built render context together with the template it targets.
type View struct {
	Template string
	Data     any
	// Number is the listing page that was actually served, or 0 for views
	// that are not paginated. Callers use it to key cached output.
	Number int
}

// Base is embedded in every context and carries the site chrome.
type Base struct {
	SiteName       string
	Title          string
	Page           *models.Page
	BlogTitle      string
	BlogURL        string
	PortfolioTitle string
	PortfolioURL   string
	Year           int
}

// Card is a post as shown in a listing.
type Card struct {
	Title          string
	URL            string
	Intro          string
	Published      *time.Time
	ReadingMinutes int
	GithubLink     string
	Image          *blocks.ImageRef
}

// HomeContext is the context of the landing page.
type HomeContext struct {
	Base
	AuthorName      string
	Tagline         string
	Bio             template.HTML
	LatestBlogPosts []Card
	PortfolioPosts  []Card
}

// BlogIndexContext is the context of the paginated blog listing.
type BlogIndexContext struct {
	Base
	Posts listing.Page[Card]
}

// PortfolioIndexContext is the context of the portfolio listing.
type PortfolioIndexContext struct {
	Base
	Posts []Card
}

// PostContext is the context of a single blog or portfolio post.
type PostContext struct {
	Base
	Post      Card
	Body      template.HTML
	ParentURL string
}

// SearchContext is the context of the search results view.
type SearchContext struct {
	Base
	Query   string
	Results listing.Page[Card]
}

// Builder assembles the view of one page type.
type Builder func(ctx context.Context, s *Site, page *models.Page, query url.Values) (*View, error)

// Contexts maps every routable page type to its builder.
var Contexts = map[models.PageType]Builder{
	models.PageTypeHome:           buildHome,
	models.PageTypeBlogIndex:      buildBlogIndex,
	models.PageTypePortfolioIndex: buildPortfolioIndex,
	models.PageTypeBlogPost:       buildPost,
	models.PageTypePortfolioPost:  buildPost,
}

// Root builds the view of one of the singleton pages. The page is read
// fresh on every call so edits show without a restart.
func (s *Site) Root(ctx context.Context, t models.PageType, query url.Values) (*View, error) {
	var ref Ref
	switch t {
	case models.PageTypeHome:
		ref = s.roots.Home
	case models.PageTypeBlogIndex:
		ref = s.roots.Blog
	case models.PageTypePortfolioIndex:
		ref = s.roots.Portfolio
	default:
		return nil, fmt.Errorf("root %s: not a singleton page type", t)
	}

	page, err := s.openPage(ctx, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("root %s: %w", t, err)
	}
	if page == nil {
		return nil, ErrNotFound
	}
	return s.build(ctx, page, query)
}

// Post builds the view of a visible post below its section index. Posts of
// a section whose index or home is hidden are not found.
func (s *Site) Post(ctx context.Context, t models.PageType, slug string, query url.Values) (*View, error) {
	var parent uuid.UUID
	switch t {
	case models.PageTypeBlogPost:
		parent = s.roots.Blog.ID
	case models.PageTypePortfolioPost:
		parent = s.roots.Portfolio.ID
	default:
		return nil, fmt.Errorf("post %s: not a post type", t)
	}

	section, err := s.openPage(ctx, parent)
	if err != nil {
		return nil, fmt.Errorf("post %s/%s: %w", t, slug, err)
	}
	if section == nil {
		return nil, ErrNotFound
	}

	page, err := s.pages.FindVisibleChild(ctx, parent, t, slug)
	if err != nil {
		return nil, fmt.Errorf("post %s/%s: %w", t, slug, err)
	}
	if page == nil {
		return nil, ErrNotFound
	}
	return s.build(ctx, page, query)
}

// build dispatches to the builder registered for the page type.
func (s *Site) build(ctx context.Context, page *models.Page, query url.Values) (*View, error) {
	b, ok := Contexts[page.Type]
	if !ok {
		return nil, fmt.Errorf("no context builder for page type %q", page.Type)
	}
	return b(ctx, s, page, query)
}

// base fills the chrome shared by all views.
func (s *Site) base(title string, page *models.Page) Base {
	return Base{
		SiteName:       s.settings.SiteName,
		Title:          title,
		Page:           page,
		BlogTitle:      s.roots.Blog.Title,
		BlogURL:        s.BlogPath(),
		PortfolioTitle: s.roots.Portfolio.Title,
		PortfolioURL:   s.PortfolioPath(),
		Year:           time.Now().Year(),
	}
}

func buildHome(ctx context.Context, s *Site, page *models.Page, _ url.Values) (*View, error) {
	open, err := s.openSections(ctx)
	if err != nil {
		return nil, fmt.Errorf("home highlights: %w", err)
	}

	var blog, portfolio []models.Page
	if open[models.PageTypeBlogPost] {
		blog, err = s.pages.ChildrenOf(ctx, s.roots.Blog.ID, models.PageTypeBlogPost)
		if err != nil {
			return nil, fmt.Errorf("home blog highlights: %w", err)
		}
	}
	if open[models.PageTypePortfolioPost] {
		portfolio, err = s.pages.ChildrenOf(ctx, s.roots.Portfolio.ID, models.PageTypePortfolioPost)
		if err != nil {
			return nil, fmt.Errorf("home portfolio highlights: %w", err)
		}
	}

	latestBlog := listing.Latest(blog, s.settings.HomeBlogLimit)
	latestPortfolio := listing.Latest(portfolio, s.settings.HomePortfolioLimit)

	cards, err := s.cards(ctx, slices.Concat(latestBlog, latestPortfolio))
	if err != nil {
		return nil, err
	}

	data := HomeContext{
		Base:            s.base(page.Title, page),
		LatestBlogPosts: cards[:len(latestBlog)],
		PortfolioPosts:  cards[len(latestBlog):],
	}
	if page.Home != nil {
		data.AuthorName = page.Home.AuthorName
		data.Tagline = page.Home.Tagline
		data.Bio = template.HTML(page.Home.Bio)
	}
	return &View{Template: string(page.Type), Data: data}, nil
}

func buildBlogIndex(ctx context.Context, s *Site, page *models.Page, query url.Values) (*View, error) {
	children, err := s.pages.ChildrenOf(ctx, page.ID, models.PageTypeBlogPost)
	if err != nil {
		return nil, fmt.Errorf("blog index: %w", err)
	}

	raw := query.Get("page")
	posts := listing.Paginate(listing.Ordered(children), s.settings.BlogPageSize, raw)
	slog.Debug("blog listing resolved",
		"requested", raw,
		"page", posts.Number,
		"pages", posts.NumPages,
		"count", posts.Count,
	)

	cards, err := s.cards(ctx, posts.Items)
	if err != nil {
		return nil, err
	}
	return &View{
		Template: string(page.Type),
		Data:     BlogIndexContext{Base: s.base(page.Title, page), Posts: withItems(posts, cards)},
		Number:   posts.Number,
	}, nil
}

func buildPortfolioIndex(ctx context.Context, s *Site, page *models.Page, _ url.Values) (*View, error) {
	children, err := s.pages.ChildrenOf(ctx, page.ID, models.PageTypePortfolioPost)
	if err != nil {
		return nil, fmt.Errorf("portfolio index: %w", err)
	}
	cards, err := s.cards(ctx, listing.Ordered(children))
	if err != nil {
		return nil, err
	}
	return &View{
		Template: string(page.Type),
		Data:     PortfolioIndexContext{Base: s.base(page.Title, page), Posts: cards},
	}, nil
}

func buildPost(ctx context.Context, s *Site, page *models.Page, _ url.Values) (*View, error) {
	var ids []uuid.UUID
	if id := page.FeedImageID(); id != nil {
		ids = append(ids, *id)
	}
	if page.BlogPost != nil {
		for _, blk := range page.BlogPost.Body {
			if blk.Kind == models.BlockImage && blk.ImageID != nil {
				ids = append(ids, *blk.ImageID)
			}
		}
	}
	refs, err := s.imageRefs(ctx, ids)
	if err != nil {
		return nil, err
	}

	data := PostContext{
		Base: s.base(page.Title, page),
		Post: s.card(page, refs),
	}
	if page.BlogPost != nil {
		data.ParentURL = s.BlogPath()
		data.Body, err = blocks.Render(page.BlogPost.Body, resolver(refs))
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", page.Slug, err)
		}
	} else {
		data.ParentURL = s.PortfolioPath()
	}
	return &View{Template: string(page.Type), Data: data}, nil
}

// Search builds the search results view. Only visible posts below visible
// section roots are listed, newest first, paginated like the blog.
func (s *Site) Search(ctx context.Context, query url.Values) (*View, error) {
	q := strings.TrimSpace(query.Get("q"))

	var hits []models.Page
	if q != "" {
		found, err := s.pages.Search(ctx, q, models.Searchable())
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		if len(found) > 0 {
			open, err := s.openSections(ctx)
			if err != nil {
				return nil, fmt.Errorf("search: %w", err)
			}
			for _, p := range found {
				if open[p.Type] && s.routable(&p) {
					hits = append(hits, p)
				}
			}
		}
	}

	results := listing.Paginate(listing.Ordered(hits), s.settings.SearchPageSize, query.Get("page"))
	cards, err := s.cards(ctx, results.Items)
	if err != nil {
		return nil, err
	}

	title := "Search"
	if q != "" {
		title = "Search: " + q
	}
	return &View{
		Template: SearchTemplate,
		Data:     SearchContext{Base: s.base(title, nil), Query: q, Results: withItems(results, cards)},
		Number:   results.Number,
	}, nil
}

// routable reports whether a page sits directly below the root of its
// section and therefore has a URL.
func (s *Site) routable(p *models.Page) bool {
	if p.ParentID == nil {
		return false
	}
	switch p.Type {
	case models.PageTypeBlogPost:
		return *p.ParentID == s.roots.Blog.ID
	case models.PageTypePortfolioPost:
		return *p.ParentID == s.roots.Portfolio.ID
	}
	return false
}

// withItems carries the pagination state of p over to a page of other
// items, which must correspond one to one with p.Items.
func withItems[T, U any](p listing.Page[T], items []U) listing.Page[U] {
	return listing.Page[U]{
		Items:    items,
		Number:   p.Number,
		NumPages: p.NumPages,
		Count:    p.Count,
		Size:     p.Size,
	}
}
