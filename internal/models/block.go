// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/google/uuid"

// BlockKind identifies one entry of a blog post body stream.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockImage     BlockKind = "image"
	BlockCode      BlockKind = "code"
)

// Block is a single element of a body stream. Value holds the heading text,
// the paragraph rich text or the code source depending on Kind.
type Block struct {
	Kind     BlockKind  `json:"type"`
	Value    string     `json:"value,omitempty"`
	ImageID  *uuid.UUID `json:"image_id,omitempty"`
	Language string     `json:"language,omitempty"`
}

// Valid reports whether the block kind is one the body stream accepts.
func (b BlockKind) Valid() bool {
	switch b {
	case BlockHeading, BlockParagraph, BlockImage, BlockCode:
		return true
	}
	return false
}

// Image is an uploaded picture referenced by feed images and image blocks.
type Image struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	S3Key  string    `json:"s3_key"`
	Alt    *string   `json:"alt,omitempty"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
}

// AltText returns the alt text, falling back to the image title.
func (i *Image) AltText() string {
	if i.Alt != nil && *i.Alt != "" {
		return *i.Alt
	}
	return i.Title
}
