// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blocks

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(), // paragraph blocks already hold editor HTML
	),
)

// Markdown converts Markdown source into HTML. Raw HTML embedded in the
// source is passed through unchanged.
func Markdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Code renders a source snippet as a syntax highlighted block. An unknown
// or empty language falls back to plain preformatted text.
func Code(language, source string) (string, error) {
	fence := "```"
	for strings.Contains(source, fence) {
		fence += "`"
	}
	var b strings.Builder
	b.WriteString(fence)
	b.WriteString(infoString(language))
	b.WriteByte('\n')
	b.WriteString(source)
	if !strings.HasSuffix(source, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(fence)
	b.WriteByte('\n')
	return Markdown(b.String())
}

// infoString reduces a language label to a single fence info word.
// Backticks are not allowed there and would turn the fence into text.
func infoString(language string) string {
	fields := strings.Fields(strings.ReplaceAll(language, "`", ""))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
