// Package router sets up all HTTP routes and middleware chains for the
// public site.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"folio/internal/handlers"
	"folio/internal/middleware"
)

// Options holds the values the routes are built from.
type Options struct {
	// BlogPath and PortfolioPath are the section paths, e.g. "/blog".
	BlogPath      string
	PortfolioPath string
	// ImageBase is the public URL of image storage, allowed by the CSP.
	ImageBase string
	// Static is served at /static/. It may be nil.
	Static fs.FS
	// Limiter rate-limits the page routes. It may be nil.
	Limiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and routes wired up.
func New(public *handlers.Public, health http.Handler, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(middleware.Recover(http.HandlerFunc(public.InternalError)))
	r.Use(middleware.Logger)
	r.Use(chimw.CleanPath)
	r.Use(chimw.StripSlashes)

	// Health check, never rate limited.
	r.Method(http.MethodGet, "/health", health)

	if opts.Static != nil {
		r.Group(func(r chi.Router) {
			r.Use(chimw.SetHeader("Cache-Control", "public, max-age=86400"))
			r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(opts.Static)))
		})
	}

	// Public pages.
	r.Group(func(r chi.Router) {
		r.Use(middleware.SecureHeaders(opts.ImageBase))
		if opts.Limiter != nil {
			r.Use(opts.Limiter.Middleware)
		}
		r.Use(chimw.Timeout(30 * time.Second))

		r.Get("/", public.Home)
		r.Get("/search", public.Search)
		r.Get(opts.BlogPath, public.BlogIndex)
		r.Get(opts.BlogPath+"/{slug}", public.BlogPost)
		r.Get(opts.PortfolioPath, public.PortfolioIndex)
		r.Get(opts.PortfolioPath+"/{slug}", public.PortfolioPost)
	})

	r.NotFound(public.NotFound)

	return r
}
