// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"
)

// Check probes one backing service.
type Check func(ctx context.Context) error

// Health reports whether the backing services answer. It replies 200 with
// {"status":"ok"} or 503 with the names of the failing checks.
type Health struct {
	checks  map[string]Check
	timeout time.Duration
}

// NewHealth creates a health handler running the given checks.
func NewHealth(checks map[string]Check) *Health {
	return &Health{checks: checks, timeout: 2 * time.Second}
}

type healthResponse struct {
	Status string   `json:"status"`
	Failed []string `json:"failed,omitempty"`
}

func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			slog.Warn("health check failed", "check", name, "error", err)
			resp.Failed = append(resp.Failed, name)
		}
	}

	status := http.StatusOK
	if len(resp.Failed) > 0 {
		slices.Sort(resp.Failed)
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
