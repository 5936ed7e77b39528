// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"folio/internal/cache"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/render"
	"folio/internal/site"
	"folio/internal/slug"
)

// Public groups the handlers of the public site. Each handler checks the
// L2 Valkey page cache before building the page context, and stores the
// rendered result on a miss.
type Public struct {
	site      *site.Site
	renderer  *render.Renderer
	pageCache *cache.PageCache
	siteName  string
}

// NewPublic creates a new Public handler group.
func NewPublic(s *site.Site, renderer *render.Renderer, pageCache *cache.PageCache, siteName string) *Public {
	return &Public{
		site:      s,
		renderer:  renderer,
		pageCache: pageCache,
		siteName:  siteName,
	}
}

// buildFunc builds a view and returns the cache key of what it actually
// built. An empty key means the result is never cached.
type buildFunc func(ctx context.Context) (view *site.View, servedKey string, err error)

// Home renders the landing page with the latest blog and portfolio posts.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	key := cache.HomepageKey()
	p.serve(w, r, key, func(ctx context.Context) (*site.View, string, error) {
		v, err := p.site.Root(ctx, models.PageTypeHome, r.URL.Query())
		return v, key, err
	})
}

// BlogIndex renders one page of the blog listing. Only requests for a page
// in canonical form are cached, and only when that page was actually
// served: "?page=99" on a three page blog renders page 3 uncached.
func (p *Public) BlogIndex(w http.ResponseWriter, r *http.Request) {
	section := p.site.Roots().Blog.Slug
	key, ok := cache.CanonicalListingKey(section, r.URL.Query().Get("page"))
	if !ok {
		key = ""
	}
	p.serve(w, r, key, func(ctx context.Context) (*site.View, string, error) {
		v, err := p.site.Root(ctx, models.PageTypeBlogIndex, r.URL.Query())
		if err != nil {
			return nil, "", err
		}
		return v, cache.ListingKey(section, v.Number), nil
	})
}

// PortfolioIndex renders the full portfolio listing.
func (p *Public) PortfolioIndex(w http.ResponseWriter, r *http.Request) {
	key := cache.IndexKey(p.site.Roots().Portfolio.Slug)
	p.serve(w, r, key, func(ctx context.Context) (*site.View, string, error) {
		v, err := p.site.Root(ctx, models.PageTypePortfolioIndex, r.URL.Query())
		return v, key, err
	})
}

// BlogPost renders a single blog post by its slug.
func (p *Public) BlogPost(w http.ResponseWriter, r *http.Request) {
	p.post(w, r, models.PageTypeBlogPost, p.site.Roots().Blog.Slug)
}

// PortfolioPost renders a single portfolio entry by its slug.
func (p *Public) PortfolioPost(w http.ResponseWriter, r *http.Request) {
	p.post(w, r, models.PageTypePortfolioPost, p.site.Roots().Portfolio.Slug)
}

func (p *Public) post(w http.ResponseWriter, r *http.Request, t models.PageType, section string) {
	slugParam := chi.URLParam(r, "slug")
	if !slug.Valid(slugParam) {
		p.NotFound(w, r)
		return
	}
	key := cache.PostKey(section, slugParam)
	p.serve(w, r, key, func(ctx context.Context) (*site.View, string, error) {
		v, err := p.site.Post(ctx, t, slugParam, r.URL.Query())
		return v, key, err
	})
}

// Search renders the search results. Results depend on free-form input
// and are never cached.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, "", func(ctx context.Context) (*site.View, string, error) {
		v, err := p.site.Search(ctx, r.URL.Query())
		return v, "", err
	})
}

// NotFound renders the 404 page for unmatched routes.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.renderError(w, http.StatusNotFound, "The page you are looking for does not exist.")
}

// InternalError renders the 500 page. The router uses it for recovered
// panics.
func (p *Public) InternalError(w http.ResponseWriter, r *http.Request) {
	p.renderError(w, http.StatusInternalServerError, "Something went wrong while loading this page.")
}

// TooManyRequests renders the 429 page shown to rate-limited clients.
func (p *Public) TooManyRequests(w http.ResponseWriter, r *http.Request) {
	p.renderError(w, http.StatusTooManyRequests, "Too many requests. Please slow down and try again shortly.")
}

// serve answers from the page cache when key is set and present, and
// otherwise builds, renders and writes the page. The result is stored only
// when the key it was built for matches the requested one.
func (p *Public) serve(w http.ResponseWriter, r *http.Request, key string, build buildFunc) {
	ctx := r.Context()

	if key != "" {
		if cached, ok := p.pageCache.Get(ctx, key); ok {
			w.Header().Set(middleware.CacheHeader, "HIT")
			writeHTML(w, cached)
			return
		}
	}

	view, servedKey, err := build(ctx)
	if errors.Is(err, site.ErrNotFound) {
		p.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("build page failed", "error", err, "path", r.URL.Path)
		p.renderError(w, http.StatusInternalServerError, "Something went wrong while loading this page.")
		return
	}

	var buf bytes.Buffer
	if err := p.renderer.Render(&buf, view.Template, view.Data); err != nil {
		slog.Error("render page failed", "error", err, "template", view.Template, "path", r.URL.Path)
		p.renderError(w, http.StatusInternalServerError, "Something went wrong while rendering this page.")
		return
	}

	if key != "" && servedKey == key {
		p.pageCache.Set(ctx, key, buf.Bytes())
	}
	if key != "" {
		w.Header().Set(middleware.CacheHeader, "MISS")
	}
	writeHTML(w, buf.Bytes())
}

// renderError writes the standalone error page, falling back to plain text if
// the template itself fails.
func (p *Public) renderError(w http.ResponseWriter, status int, message string) {
	var buf bytes.Buffer
	err := p.renderer.Render(&buf, "error", render.ErrorData{
		SiteName: p.siteName,
		Status:   status,
		Message:  message,
	})
	if err != nil {
		slog.Error("render error page failed", "error", err, "status", status)
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}
