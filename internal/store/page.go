// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"folio/internal/models"
	"folio/internal/slug"
)

// pageColumns is the column list every page query selects, in scan order.
const pageColumns = `id, type, parent_id, title, slug, live, restricted,
	first_published_at, detail, created_at, updated_at`

// PageStore handles all page tree database operations. Lookups used by
// listings return every candidate of a type; visibility filtering and
// ordering are left to the listing package.
type PageStore struct {
	db *sql.DB
}

// NewPageStore creates a new PageStore with the given database connection.
func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (*models.Page, error) {
	p := &models.Page{}
	var detail []byte
	if err := row.Scan(
		&p.ID, &p.Type, &p.ParentID, &p.Title, &p.Slug, &p.Live, &p.Restricted,
		&p.FirstPublishedAt, &detail, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := p.UnmarshalDetail(detail); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PageStore) queryPages(ctx context.Context, op, query string, args ...any) ([]models.Page, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var pages []models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

// Create validates a page against its schema and parent, then inserts it.
// An empty slug is derived from the title and the result must be a valid
// slug. Live pages without a first publication time are stamped with the
// current time.
func (s *PageStore) Create(ctx context.Context, p *models.Page) (*models.Page, error) {
	var parent *models.Page
	if p.ParentID != nil {
		var err error
		parent, err = s.FindByID(ctx, *p.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("create page: parent %s not found", *p.ParentID)
		}
	}
	if p.BlogPost != nil && p.BlogPost.ReadingMinutes == 0 {
		p.BlogPost.ReadingMinutes = models.DefaultReadingMinutes
	}
	if err := models.Validate(p, parent); err != nil {
		return nil, err
	}

	if strings.TrimSpace(p.Slug) == "" {
		p.Slug = slug.Generate(p.Title)
	}
	if !slug.Valid(p.Slug) {
		return nil, &models.ValidationError{Problems: []string{fmt.Sprintf("slug %q is not a valid URL segment", p.Slug)}}
	}
	if p.Live && p.FirstPublishedAt == nil {
		now := time.Now()
		p.FirstPublishedAt = &now
	}

	detail, err := p.MarshalDetail()
	if err != nil {
		return nil, fmt.Errorf("encode page detail: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO pages (type, parent_id, title, slug, live, restricted, first_published_at, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+pageColumns,
		p.Type, p.ParentID, p.Title, p.Slug, p.Live, p.Restricted, p.FirstPublishedAt, detail,
	)
	created, err := scanPage(row)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return created, nil
}

// FindByID retrieves a page by its UUID regardless of visibility.
// Returns nil if not found.
func (s *PageStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = $1`, id)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by id: %w", err)
	}
	return p, nil
}

// FindVisibleChild retrieves a live, public child of parentID by slug and
// type. Used to serve individual posts. Returns nil if not found.
func (s *PageStore) FindVisibleChild(ctx context.Context, parentID uuid.UUID, t models.PageType, pageSlug string) (*models.Page, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+pageColumns+`
		FROM pages
		WHERE parent_id = $1 AND type = $2 AND slug = $3
		  AND live AND NOT restricted
	`, parentID, t, pageSlug)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find child by slug: %w", err)
	}
	return p, nil
}

// FirstByType returns the oldest page of the given type. It resolves the
// singleton pages (home, blog index, portfolio index) once at startup.
// Returns nil if none exists.
func (s *PageStore) FirstByType(ctx context.Context, t models.PageType) (*models.Page, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+pageColumns+`
		FROM pages
		WHERE type = $1
		ORDER BY created_at, id
		LIMIT 1
	`, t)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first page of type: %w", err)
	}
	return p, nil
}

// ChildrenOf returns every direct child of parentID with the given type,
// drafts and restricted pages included.
func (s *PageStore) ChildrenOf(ctx context.Context, parentID uuid.UUID, t models.PageType) ([]models.Page, error) {
	return s.queryPages(ctx, "list children", `
		SELECT `+pageColumns+`
		FROM pages
		WHERE parent_id = $1 AND type = $2
	`, parentID, t)
}

// bodyTextMatch matches $1 against the text of the body blocks only, with
// markup stripped, so block kinds and JSON keys never match.
const bodyTextMatch = `
	SELECT 1
	FROM jsonb_array_elements(
		CASE jsonb_typeof(detail->'body') WHEN 'array' THEN detail->'body' ELSE '[]'::jsonb END
	) AS block
	WHERE regexp_replace(block->>'value', '<[^>]*>', '', 'g') ILIKE $1`

// Search returns pages whose title contains query, plus pages of the
// indexed types whose intro or body text contains it. Matching is case
// insensitive. Visibility is not checked here.
func (s *PageStore) Search(ctx context.Context, query string, indexed []models.PageType) ([]models.Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	pattern := "%" + escapeLike(query) + "%"
	if len(indexed) == 0 {
		return s.queryPages(ctx, "search pages", `
			SELECT `+pageColumns+` FROM pages WHERE title ILIKE $1
		`, pattern)
	}
	args := append([]any{pattern}, toArgs(indexed)...)
	return s.queryPages(ctx, "search pages", `
		SELECT `+pageColumns+`
		FROM pages
		WHERE title ILIKE $1
		   OR (type IN (`+placeholders(2, len(indexed))+`)
		       AND (detail->>'intro' ILIKE $1 OR EXISTS (`+bodyTextMatch+`)))
	`, args...)
}

// SetLive publishes or unpublishes a page. The first publication time is
// kept across later republishing.
func (s *PageStore) SetLive(ctx context.Context, id uuid.UUID, live bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE pages SET
			live = $1,
			first_published_at = CASE WHEN $1 THEN COALESCE(first_published_at, NOW()) ELSE first_published_at END,
			updated_at = NOW()
		WHERE id = $2
	`, live, id)
	if err != nil {
		return fmt.Errorf("set page live: %w", err)
	}
	return nil
}

// SetRestricted adds or removes the view restriction of a page.
func (s *PageStore) SetRestricted(ctx context.Context, id uuid.UUID, restricted bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE pages SET restricted = $1, updated_at = NOW() WHERE id = $2
	`, restricted, id)
	if err != nil {
		return fmt.Errorf("set page restricted: %w", err)
	}
	return nil
}

// Delete removes a page and, through the foreign key, its descendants.
func (s *PageStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}

// escapeLike escapes the LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
