// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// limiterEntry holds the request times of one client inside the window.
type limiterEntry struct {
	mu         sync.Mutex
	timestamps []time.Time
}

// RateLimiter limits each client to a number of requests per sliding
// window. Clients are keyed by the host part of RemoteAddr; put chi's
// RealIP in front of it when the site runs behind a proxy.
type RateLimiter struct {
	mu       sync.RWMutex
	clients  map[string]*limiterEntry
	limit    int
	window   time.Duration
	rejected http.Handler
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// RateLimitOption configures a RateLimiter.
type RateLimitOption func(*RateLimiter)

// WithRejectHandler serves h instead of a plain text 429 to clients over
// the limit. h is responsible for writing the 429 status.
func WithRejectHandler(h http.Handler) RateLimitOption {
	return func(rl *RateLimiter) { rl.rejected = h }
}

// NewRateLimiter creates a limiter allowing limit requests per window and
// starts the goroutine that forgets idle clients. A limit below 1 lets
// every request through.
func NewRateLimiter(limit int, window time.Duration, opts ...RateLimitOption) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*limiterEntry),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rl)
	}

	go func() {
		ticker := time.NewTicker(max(window, time.Minute))
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) entry(key string) *limiterEntry {
	rl.mu.RLock()
	e, ok := rl.clients[key]
	rl.mu.RUnlock()
	if ok {
		return e
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if e, ok = rl.clients[key]; !ok {
		e = &limiterEntry{}
		rl.clients[key] = e
	}
	return e
}

// allow records a request for key. When the key is over the limit the
// request is not recorded and retryAfter is the time until the oldest
// request leaves the window.
func (rl *RateLimiter) allow(key string) (ok bool, retryAfter time.Duration) {
	if rl.limit < 1 {
		return true, 0
	}

	e := rl.entry(key)
	now := rl.now()
	cutoff := now.Add(-rl.window)

	e.mu.Lock()
	defer e.mu.Unlock()

	valid := e.timestamps[:0]
	for _, ts := range e.timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}
	e.timestamps = valid

	if len(e.timestamps) >= rl.limit {
		return false, e.timestamps[0].Sub(cutoff)
	}

	e.timestamps = append(e.timestamps, now)
	return true, 0
}

// cleanup forgets clients with no request inside the window.
func (rl *RateLimiter) cleanup() {
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, e := range rl.clients {
		e.mu.Lock()
		n := len(e.timestamps)
		idle := n == 0 || !e.timestamps[n-1].After(cutoff)
		e.mu.Unlock()

		if idle {
			delete(rl.clients, key)
		}
	}
}

// Middleware rate-limits requests by client address. Rejected requests
// get a Retry-After header in whole seconds.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		ok, retry := rl.allow(ip)
		if ok {
			next.ServeHTTP(w, r)
			return
		}

		secs := int(retry.Round(time.Second) / time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
		slog.Warn("rate limit exceeded", "remote", ip, "path", r.URL.Path)
		if rl.rejected != nil {
			rl.rejected.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
	})
}

// clientIP returns the host part of RemoteAddr, or RemoteAddr itself when
// it carries no port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
