// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package listing turns a set of candidate pages into what a listing shows:
// it keeps the visible ones, orders them newest first and cuts them into
// fixed-size pages. Everything here is a pure function of its inputs.
package listing

import (
	"bytes"
	"slices"

	"folio/internal/models"
)

// Select returns the candidates that are live and public, preserving
// their input order. The result never aliases the input slice.
func Select(candidates []models.Page) []models.Page {
	out := make([]models.Page, 0, len(candidates))
	for _, p := range candidates {
		if p.IsVisible() {
			out = append(out, p)
		}
	}
	return out
}

// SortByRecency orders pages by first publication, newest first. Pages
// that were never published sort last. Equal timestamps fall back to the
// page ID so repeated calls always agree.
func SortByRecency(pages []models.Page) {
	slices.SortStableFunc(pages, func(a, b models.Page) int {
		switch {
		case a.FirstPublishedAt == nil && b.FirstPublishedAt == nil:
		case a.FirstPublishedAt == nil:
			return 1
		case b.FirstPublishedAt == nil:
			return -1
		default:
			if c := b.FirstPublishedAt.Compare(*a.FirstPublishedAt); c != 0 {
				return c
			}
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
}

// Ordered selects the visible candidates and sorts them by recency.
func Ordered(candidates []models.Page) []models.Page {
	out := Select(candidates)
	SortByRecency(out)
	return out
}

// Latest returns at most n of the most recent visible candidates. It backs
// the unpaginated highlight lists; n < 1 yields an empty list.
func Latest(candidates []models.Page, n int) []models.Page {
	out := Ordered(candidates)
	if n < 1 {
		return out[:0]
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}
