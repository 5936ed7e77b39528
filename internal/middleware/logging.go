// Package middleware provides HTTP middleware for the public site.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// CacheHeader reports whether a page came from the page cache ("HIT") or
// was rendered for this request ("MISS").
const CacheHeader = "X-Cache"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// WriteHeader captures the status code before writing it.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Write ensures a default 200 status if WriteHeader was never called.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// Logger records one structured line per request. Server errors are
// logged at error level, client errors at warn.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		level := slog.LevelInfo
		switch {
		case wrapped.statusCode >= 500:
			level = slog.LevelError
		case wrapped.statusCode >= 400:
			level = slog.LevelWarn
		}

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start).String(),
			"remote", r.RemoteAddr,
		}
		if q := r.URL.RawQuery; q != "" {
			attrs = append(attrs, "query", q)
		}
		if c := w.Header().Get(CacheHeader); c != "" {
			attrs = append(attrs, "cache", c)
		}
		if id := chimw.GetReqID(r.Context()); id != "" {
			attrs = append(attrs, "request_id", id)
		}
		slog.Log(r.Context(), level, "http request", attrs...)
	})
}
