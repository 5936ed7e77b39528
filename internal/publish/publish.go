// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package publish changes what the public site shows. It flips the live and
// restricted flags of pages, keeps the image library, and drops the cached
// pages each change affects.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"folio/internal/cache"
	"folio/internal/models"
)

var (
	// ErrPageNotFound is returned when the page to change does not exist.
	ErrPageNotFound = errors.New("page not found")
	// ErrImageNotFound is returned when the image does not exist.
	ErrImageNotFound = errors.New("image not found")
)

// Pages is the part of the page store the publisher changes.
// *store.PageStore satisfies it.
type Pages interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Page, error)
	SetLive(ctx context.Context, id uuid.UUID, live bool) error
	SetRestricted(ctx context.Context, id uuid.UUID, restricted bool) error
}

// Invalidator drops rendered pages. *cache.PageCache satisfies it.
type Invalidator interface {
	Invalidate(ctx context.Context, key string)
	InvalidateHomepage(ctx context.Context)
	InvalidateListing(ctx context.Context, section string)
	InvalidateAll(ctx context.Context)
}

// Publisher toggles page visibility.
type Publisher struct {
	pages Pages
	cache Invalidator
}

// NewPublisher creates a Publisher.
func NewPublisher(pages Pages, c Invalidator) *Publisher {
	return &Publisher{pages: pages, cache: c}
}

// SetLive publishes or unpublishes a page and returns it as stored
// afterwards. The first publication time is kept by the store.
func (p *Publisher) SetLive(ctx context.Context, id uuid.UUID, live bool) (*models.Page, error) {
	return p.apply(ctx, id, "live", live, p.pages.SetLive)
}

// SetRestricted adds or lifts the view restriction of a page. A restricted
// section index hides every post below it.
func (p *Publisher) SetRestricted(ctx context.Context, id uuid.UUID, restricted bool) (*models.Page, error) {
	return p.apply(ctx, id, "restricted", restricted, p.pages.SetRestricted)
}

func (p *Publisher) apply(ctx context.Context, id uuid.UUID, flag string, value bool,
	set func(context.Context, uuid.UUID, bool) error) (*models.Page, error) {
	page, err := p.pages.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", flag, err)
	}
	if page == nil {
		return nil, ErrPageNotFound
	}
	if err := set(ctx, id, value); err != nil {
		return nil, err
	}
	if err := p.invalidate(ctx, page); err != nil {
		return nil, fmt.Errorf("set %s: %w", flag, err)
	}

	updated, err := p.pages.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", flag, err)
	}
	if updated == nil {
		return nil, ErrPageNotFound
	}
	slog.Info("page visibility changed", "page", id.String(), "slug", updated.Slug, flag, value)
	return updated, nil
}

// invalidate drops the cached pages that can show the given page.
func (p *Publisher) invalidate(ctx context.Context, page *models.Page) error {
	switch page.Type {
	case models.PageTypeBlogPost, models.PageTypePortfolioPost:
	default:
		// Roots hide or reveal a whole branch.
		p.cache.InvalidateAll(ctx)
		return nil
	}

	if page.ParentID == nil {
		p.cache.InvalidateAll(ctx)
		return nil
	}
	parent, err := p.pages.FindByID(ctx, *page.ParentID)
	if err != nil {
		return err
	}
	if parent == nil {
		p.cache.InvalidateAll(ctx)
		return nil
	}
	p.cache.Invalidate(ctx, cache.PostKey(parent.Slug, page.Slug))
	p.cache.InvalidateListing(ctx, parent.Slug)
	p.cache.InvalidateHomepage(ctx)
	return nil
}
