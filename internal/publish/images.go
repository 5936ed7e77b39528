// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"folio/internal/models"
)

// Images is the image metadata store. *store.ImageStore satisfies it.
type Images interface {
	Create(ctx context.Context, img *models.Image) (*models.Image, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Image, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Library registers images whose files were uploaded to the bucket.
type Library struct {
	images Images
	cache  Invalidator
}

// NewLibrary creates a Library.
func NewLibrary(images Images, c Invalidator) *Library {
	return &Library{images: images, cache: c}
}

// Add records an uploaded object as an image. The title and key are
// required; the alt text is optional.
func (l *Library) Add(ctx context.Context, img *models.Image) (*models.Image, error) {
	var problems []string
	switch title := strings.TrimSpace(img.Title); {
	case title == "":
		problems = append(problems, "title is required")
	case utf8.RuneCountInString(title) > 255:
		problems = append(problems, "title is too long (max 255 characters)")
	}
	switch key := strings.Trim(img.S3Key, "/ "); {
	case key == "":
		problems = append(problems, "object key is required")
	case len(key) > 500:
		problems = append(problems, "object key is too long (max 500 bytes)")
	}
	if img.Width < 0 || img.Height < 0 {
		problems = append(problems, "dimensions cannot be negative")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("add image: %s", strings.Join(problems, "; "))
	}

	in := *img
	in.Title = strings.TrimSpace(img.Title)
	in.S3Key = strings.Trim(img.S3Key, "/ ")
	if in.Alt != nil && strings.TrimSpace(*in.Alt) == "" {
		in.Alt = nil
	}
	created, err := l.images.Create(ctx, &in)
	if err != nil {
		return nil, err
	}
	slog.Info("image added", "image", created.ID.String(), "key", created.S3Key)
	return created, nil
}

// Get returns one image.
func (l *Library) Get(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	img, err := l.images.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, ErrImageNotFound
	}
	return img, nil
}

// Remove deletes an image record. Pages that referenced it render without
// the picture; every cached page is dropped since any of them may embed it.
func (l *Library) Remove(ctx context.Context, id uuid.UUID) error {
	img, err := l.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := l.images.Delete(ctx, id); err != nil {
		return err
	}
	l.cache.InvalidateAll(ctx)
	slog.Info("image removed", "image", id.String(), "key", img.S3Key)
	return nil
}
