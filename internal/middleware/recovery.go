// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recover catches panics in downstream handlers, logs them with their
// stack and answers with onPanic, or a plain 500 when onPanic is nil.
// Nothing is written if the handler had already started its response.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recover(onPanic http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", chimw.GetReqID(r.Context()),
					"response_started", wrapped.written,
					"stack", string(debug.Stack()),
				)
				if wrapped.written {
					return
				}
				if onPanic == nil {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				onPanic.ServeHTTP(w, r)
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}
