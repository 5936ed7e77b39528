// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives the URL segment of a page from its title.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength matches the width of the pages.slug column.
const MaxLength = 255

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// fold decomposes s and drops combining marks, so "Brücke" becomes
// "Brucke" instead of losing the letter entirely.
func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Generate creates a URL-friendly slug from the given string.
// Example: "Café au lait, 2026!" → "cafe-au-lait-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(fold(s)))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > MaxLength {
		result = strings.TrimRight(result[:MaxLength], "-")
	}
	return result
}

// Valid reports whether s is already in the form Generate produces.
func Valid(s string) bool {
	return s != "" && Generate(s) == s
}
