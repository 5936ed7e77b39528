// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PageType tags a row in the page tree with the schema it follows.
type PageType string

const (
	PageTypeHome           PageType = "home"
	PageTypeBlogIndex      PageType = "blog_index"
	PageTypeBlogPost       PageType = "blog_post"
	PageTypePortfolioIndex PageType = "portfolio_index"
	PageTypePortfolioPost  PageType = "portfolio_post"
)

// Page is a node of the site tree. Every page type shares these columns;
// type-specific fields live in exactly one of the detail pointers and are
// persisted as JSONB.
type Page struct {
	ID               uuid.UUID  `json:"id"`
	Type             PageType   `json:"type"`
	ParentID         *uuid.UUID `json:"parent_id,omitempty"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Live             bool       `json:"live"`
	Restricted       bool       `json:"restricted"`
	FirstPublishedAt *time.Time `json:"first_published_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Home      *HomeDetail          `json:"home,omitempty"`
	BlogPost  *BlogPostDetail      `json:"blog_post,omitempty"`
	Portfolio *PortfolioPostDetail `json:"portfolio,omitempty"`
}

// IsPublic reports whether anonymous visitors may view the page.
func (p *Page) IsPublic() bool {
	return !p.Restricted
}

// IsVisible reports whether the page is both live and public.
func (p *Page) IsVisible() bool {
	return p.Live && p.IsPublic()
}

// HomeDetail holds the fields of the landing page.
type HomeDetail struct {
	AuthorName string `json:"author_name"`
	Tagline    string `json:"tagline"`
	Bio        string `json:"bio,omitempty"` // rich text (HTML)
}

// BlogPostDetail holds the fields of a single blog post.
type BlogPostDetail struct {
	Date           time.Time  `json:"date"`
	Intro          string     `json:"intro"`
	ReadingMinutes int        `json:"reading_minutes"`
	FeedImageID    *uuid.UUID `json:"feed_image_id,omitempty"`
	Body           []Block    `json:"body"`
}

// DefaultReadingMinutes is used when a post is created without an estimate.
const DefaultReadingMinutes = 5

// PortfolioPostDetail holds the fields of a single portfolio entry.
type PortfolioPostDetail struct {
	Intro       string     `json:"intro"`
	GithubLink  string     `json:"github_link"`
	FeedImageID *uuid.UUID `json:"feed_image_id,omitempty"`
}

// FeedImageID returns the listing image of a post, or nil for page types
// that have none.
func (p *Page) FeedImageID() *uuid.UUID {
	switch {
	case p.BlogPost != nil:
		return p.BlogPost.FeedImageID
	case p.Portfolio != nil:
		return p.Portfolio.FeedImageID
	}
	return nil
}

// Intro returns the teaser text of a post, or "" for other page types.
func (p *Page) Intro() string {
	switch {
	case p.BlogPost != nil:
		return p.BlogPost.Intro
	case p.Portfolio != nil:
		return p.Portfolio.Intro
	}
	return ""
}

// MarshalDetail encodes the detail payload that matches the page type.
// Index pages carry no detail and encode as an empty object.
func (p *Page) MarshalDetail() ([]byte, error) {
	var v any
	switch p.Type {
	case PageTypeHome:
		v = p.Home
	case PageTypeBlogPost:
		v = p.BlogPost
	case PageTypePortfolioPost:
		v = p.Portfolio
	}
	if v == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v)
}

// UnmarshalDetail decodes a JSONB payload into the detail pointer that
// matches the page type.
func (p *Page) UnmarshalDetail(raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	var err error
	switch p.Type {
	case PageTypeHome:
		p.Home = &HomeDetail{}
		err = json.Unmarshal(raw, p.Home)
	case PageTypeBlogPost:
		p.BlogPost = &BlogPostDetail{}
		err = json.Unmarshal(raw, p.BlogPost)
	case PageTypePortfolioPost:
		p.Portfolio = &PortfolioPostDetail{}
		err = json.Unmarshal(raw, p.Portfolio)
	}
	if err != nil {
		return fmt.Errorf("decode %s detail: %w", p.Type, err)
	}
	return nil
}
