// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package site

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"folio/internal/blocks"
	"folio/internal/models"
)

// cards converts pages to listing cards, loading all their feed images in
// one batch.
func (s *Site) cards(ctx context.Context, pages []models.Page) ([]Card, error) {
	var ids []uuid.UUID
	for i := range pages {
		if id := pages[i].FeedImageID(); id != nil {
			ids = append(ids, *id)
		}
	}
	refs, err := s.imageRefs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]Card, len(pages))
	for i := range pages {
		out[i] = s.card(&pages[i], refs)
	}
	return out, nil
}

func (s *Site) card(p *models.Page, refs map[uuid.UUID]blocks.ImageRef) Card {
	c := Card{
		Title:     p.Title,
		URL:       s.URLFor(p),
		Intro:     p.Intro(),
		Published: p.FirstPublishedAt,
	}
	if p.BlogPost != nil {
		c.ReadingMinutes = p.BlogPost.ReadingMinutes
	}
	if p.Portfolio != nil {
		c.GithubLink = p.Portfolio.GithubLink
	}
	if id := p.FeedImageID(); id != nil {
		if ref, ok := refs[*id]; ok {
			c.Image = &ref
		}
	}
	return c
}

// imageRefs resolves image IDs to public URLs. Without image storage every
// lookup comes back empty and pages render without pictures.
func (s *Site) imageRefs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]blocks.ImageRef, error) {
	if len(ids) == 0 || s.images == nil || s.urls == nil {
		return nil, nil
	}
	images, err := s.images.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	refs := make(map[uuid.UUID]blocks.ImageRef, len(images))
	for id, img := range images {
		refs[id] = blocks.ImageRef{URL: s.urls.FileURL(img.S3Key), Alt: img.AltText()}
	}
	return refs, nil
}

// resolver adapts a batch of loaded references to the body renderer.
func resolver(refs map[uuid.UUID]blocks.ImageRef) blocks.ImageResolver {
	if refs == nil {
		return nil
	}
	return func(id uuid.UUID) (blocks.ImageRef, bool) {
		ref, ok := refs[id]
		return ref, ok
	}
}
