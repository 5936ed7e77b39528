// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"folio/internal/models"
)

// ImageStore handles image metadata. The files themselves live in the
// public S3 bucket under S3Key.
type ImageStore struct {
	db *sql.DB
}

// NewImageStore creates a new ImageStore with the given database connection.
func NewImageStore(db *sql.DB) *ImageStore {
	return &ImageStore{db: db}
}

// Create inserts image metadata and returns it with the generated ID.
func (s *ImageStore) Create(ctx context.Context, img *models.Image) (*models.Image, error) {
	out := &models.Image{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO images (title, s3_key, alt, width, height)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, s3_key, alt, width, height
	`, img.Title, img.S3Key, img.Alt, img.Width, img.Height).Scan(
		&out.ID, &out.Title, &out.S3Key, &out.Alt, &out.Width, &out.Height,
	)
	if err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}
	return out, nil
}

// FindByID retrieves one image. Returns nil if not found.
func (s *ImageStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	img := &models.Image{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, s3_key, alt, width, height FROM images WHERE id = $1
	`, id).Scan(&img.ID, &img.Title, &img.S3Key, &img.Alt, &img.Width, &img.Height)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find image by id: %w", err)
	}
	return img, nil
}

// FindByIDs batch-loads images for a listing. Missing IDs are simply
// absent from the returned map.
func (s *ImageStore) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Image, error) {
	result := make(map[uuid.UUID]*models.Image, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, s3_key, alt, width, height
		FROM images
		WHERE id IN (`+placeholders(1, len(ids))+`)
	`, toArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("find images by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		img := &models.Image{}
		if err := rows.Scan(&img.ID, &img.Title, &img.S3Key, &img.Alt, &img.Width, &img.Height); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		result[img.ID] = img
	}
	return result, rows.Err()
}

// Delete removes image metadata by ID.
func (s *ImageStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// placeholders returns "$from, $from+1, ..." for n positional parameters.
func placeholders(from, n int) string {
	var b strings.Builder
	for i := range n {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", from+i)
	}
	return b.String()
}

func toArgs[T any](vals []T) []any {
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return args
}
