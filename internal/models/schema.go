// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"
)

// FieldKind describes how a page field is stored and edited.
type FieldKind string

const (
	FieldChar     FieldKind = "char"
	FieldRichText FieldKind = "rich_text"
	FieldDate     FieldKind = "date"
	FieldInteger  FieldKind = "integer"
	FieldURL      FieldKind = "url"
	FieldImage    FieldKind = "image"
	FieldStream   FieldKind = "stream"
)

// Field is one editable attribute of a page type.
type Field struct {
	Name      string
	Kind      FieldKind
	MaxLength int // 0 means unbounded
	Required  bool
}

// TypeSpec declares a page type: its fields, where it may live in the tree
// and which fields feed the search index.
type TypeSpec struct {
	Type         PageType
	Label        string
	Fields       []Field
	ParentTypes  []PageType // empty means "anywhere"
	SubpageTypes []PageType
	SearchFields []string
	// RichTextFeatures restricts the editor toolbar for rich text fields.
	RichTextFeatures []string
}

// Schema is the registry of every page type the site knows about.
var Schema = map[PageType]TypeSpec{
	PageTypeHome: {
		Type:  PageTypeHome,
		Label: "Home page",
		Fields: []Field{
			{Name: "author_name", Kind: FieldChar, MaxLength: 30, Required: true},
			{Name: "tagline", Kind: FieldChar, MaxLength: 100, Required: true},
			{Name: "bio", Kind: FieldRichText},
		},
		SubpageTypes:     []PageType{PageTypeBlogIndex, PageTypePortfolioIndex},
		SearchFields:     []string{"title"},
		RichTextFeatures: []string{"h2", "h3", "bold", "italic", "link"},
	},
	PageTypeBlogIndex: {
		Type:         PageTypeBlogIndex,
		Label:        "Blog page",
		SubpageTypes: []PageType{PageTypeBlogPost},
		SearchFields: []string{"title"},
	},
	PageTypeBlogPost: {
		Type:  PageTypeBlogPost,
		Label: "Blog post",
		Fields: []Field{
			{Name: "date", Kind: FieldDate, Required: true},
			{Name: "intro", Kind: FieldChar, MaxLength: 250, Required: true},
			{Name: "reading_minutes", Kind: FieldInteger},
			{Name: "feed_image", Kind: FieldImage},
			{Name: "body", Kind: FieldStream},
		},
		ParentTypes:  []PageType{PageTypeBlogIndex},
		SearchFields: []string{"title", "intro", "body"},
	},
	PageTypePortfolioIndex: {
		Type:         PageTypePortfolioIndex,
		Label:        "Portfolio page",
		SubpageTypes: []PageType{PageTypePortfolioPost},
		SearchFields: []string{"title"},
	},
	PageTypePortfolioPost: {
		Type:  PageTypePortfolioPost,
		Label: "Portfolio post",
		Fields: []Field{
			{Name: "intro", Kind: FieldChar, MaxLength: 250, Required: true},
			{Name: "github_link", Kind: FieldURL, Required: true},
			{Name: "feed_image", Kind: FieldImage},
		},
		ParentTypes:  []PageType{PageTypePortfolioIndex},
		SearchFields: []string{"title"},
	},
}

// SpecFor returns the declaration for a page type.
func SpecFor(t PageType) (TypeSpec, bool) {
	s, ok := Schema[t]
	return s, ok
}

// AllowsChild reports whether a page of type child may sit under this type.
// Both sides of the relation must agree.
func (s TypeSpec) AllowsChild(child PageType) bool {
	if !slices.Contains(s.SubpageTypes, child) {
		return false
	}
	cs, ok := Schema[child]
	if !ok {
		return false
	}
	return len(cs.ParentTypes) == 0 || slices.Contains(cs.ParentTypes, s.Type)
}

// Searchable returns the page types that index more than their title.
func Searchable() []PageType {
	var out []PageType
	for t, s := range Schema {
		if len(s.SearchFields) > 1 {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return out
}

// ValidationError collects every problem found on a page.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid page: " + strings.Join(e.Problems, "; ")
}

// Validate checks a page against its schema. parent may be nil for a root
// page. Returns a *ValidationError when anything is wrong.
func Validate(p *Page, parent *Page) error {
	spec, ok := Schema[p.Type]
	if !ok {
		return &ValidationError{Problems: []string{fmt.Sprintf("unknown page type %q", p.Type)}}
	}

	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(p.Title) == "" {
		add("title is required")
	}
	if utf8.RuneCountInString(p.Title) > 255 {
		add("title is too long (max 255 characters)")
	}

	if parent != nil {
		pspec, ok := Schema[parent.Type]
		if !ok || !pspec.AllowsChild(p.Type) {
			add("%s cannot be placed under %s", p.Type, parent.Type)
		}
	} else if len(spec.ParentTypes) > 0 {
		add("%s needs a parent page", p.Type)
	}

	values := fieldValues(p)
	for _, f := range spec.Fields {
		v, set := values[f.Name]
		if f.Required && (!set || strings.TrimSpace(v) == "") {
			add("%s is required", f.Name)
			continue
		}
		if f.MaxLength > 0 && utf8.RuneCountInString(v) > f.MaxLength {
			add("%s is too long (max %d characters)", f.Name, f.MaxLength)
		}
		if f.Kind == FieldURL && v != "" && !isAbsoluteURL(v) {
			add("%s must be an absolute http(s) URL", f.Name)
		}
	}

	if bp := p.BlogPost; bp != nil {
		if bp.ReadingMinutes < 0 {
			add("reading_minutes must not be negative")
		}
		for i, b := range bp.Body {
			if !b.Kind.Valid() {
				add("body block %d has unknown type %q", i, b.Kind)
			}
			if b.Kind == BlockImage && b.ImageID == nil {
				add("body block %d is an image without an image id", i)
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// fieldValues flattens the detail payload into name → text for length and
// presence checks. Absent keys mean the detail payload itself is missing.
func fieldValues(p *Page) map[string]string {
	v := make(map[string]string)
	switch {
	case p.Home != nil:
		v["author_name"] = p.Home.AuthorName
		v["tagline"] = p.Home.Tagline
		v["bio"] = p.Home.Bio
	case p.BlogPost != nil:
		if !p.BlogPost.Date.IsZero() {
			v["date"] = p.BlogPost.Date.Format("2006-01-02")
		}
		v["intro"] = p.BlogPost.Intro
	case p.Portfolio != nil:
		v["intro"] = p.Portfolio.Intro
		v["github_link"] = p.Portfolio.GithubLink
	}
	return v
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
