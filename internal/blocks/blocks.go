// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blocks renders the body stream of a blog post to HTML. Headings
// are escaped, paragraphs carry editor HTML through unchanged, images are
// resolved to their public URL and code is highlighted with goldmark.
package blocks

import (
	"fmt"
	"html"
	"html/template"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"folio/internal/models"
)

// ImageRef is what an image block needs to render an <img> tag.
type ImageRef struct {
	URL string
	Alt string
}

// ImageResolver maps an image ID to its public reference. Unknown images
// resolve to ok == false and their block is skipped.
type ImageResolver func(id uuid.UUID) (ref ImageRef, ok bool)

// Render converts a body stream to HTML. Blocks of an unknown kind and
// images that cannot be resolved are skipped with a warning.
func Render(body []models.Block, images ImageResolver) (template.HTML, error) {
	var b strings.Builder
	for i, blk := range body {
		switch blk.Kind {
		case models.BlockHeading:
			fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(blk.Value))

		case models.BlockParagraph:
			b.WriteString(blk.Value)
			b.WriteByte('\n')

		case models.BlockImage:
			if blk.ImageID == nil || images == nil {
				continue
			}
			ref, ok := images(*blk.ImageID)
			if !ok {
				slog.Warn("body image not found", "block", i, "image_id", blk.ImageID.String())
				continue
			}
			fmt.Fprintf(&b, `<figure><img src="%s" alt="%s" loading="lazy"></figure>`+"\n",
				html.EscapeString(ref.URL), html.EscapeString(ref.Alt))

		case models.BlockCode:
			out, err := Code(blk.Language, blk.Value)
			if err != nil {
				return "", fmt.Errorf("render code block %d: %w", i, err)
			}
			b.WriteString(out)

		default:
			slog.Warn("unknown body block skipped", "block", i, "type", blk.Kind)
		}
	}
	return template.HTML(b.String()), nil
}
