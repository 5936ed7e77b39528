// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package listing

import (
	"errors"
	"strconv"
	"strings"
)

// Page is one window over an ordered result set.
type Page[T any] struct {
	Items    []T
	Number   int // 1-based, always within [1, NumPages]
	NumPages int // at least 1, even for an empty result set
	Count    int // total items across all pages
	Size     int
}

// HasPrevious reports whether a page exists before this one.
func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a page exists after this one.
func (p Page[T]) HasNext() bool { return p.Number < p.NumPages }

// PreviousNumber returns the number of the previous page, or 0 if none.
func (p Page[T]) PreviousNumber() int {
	if !p.HasPrevious() {
		return 0
	}
	return p.Number - 1
}

// NextNumber returns the number of the next page, or 0 if none.
func (p Page[T]) NextNumber() int {
	if !p.HasNext() {
		return 0
	}
	return p.Number + 1
}

// StartIndex is the 1-based position of the first item on this page, or 0
// when the page is empty.
func (p Page[T]) StartIndex() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Number-1)*p.Size + 1
}

// EndIndex is the 1-based position of the last item on this page.
func (p Page[T]) EndIndex() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.StartIndex() + len(p.Items) - 1
}

// NumPages returns how many pages of the given size count items fill.
// An empty set still has one (empty) page.
func NumPages(count, size int) int {
	if size < 1 {
		size = 1
	}
	if count == 0 {
		return 1
	}
	return (count + size - 1) / size
}

// ResolvePage turns the raw page indicator of a request into a page number
// in [1, numPages]:
//   - absent, empty or not an integer → 1
//   - an integer below 1 or above numPages → numPages
//   - otherwise the integer itself
func ResolvePage(raw string, numPages int) int {
	if numPages < 1 {
		numPages = 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return numPages
		}
		return 1
	}
	if n < 1 || n > numPages {
		return numPages
	}
	return n
}

// Paginate cuts items into pages of size and returns the page named by the
// raw request value. A size below 1 is treated as 1. Malformed or out of
// range values never fail; see ResolvePage for the fallbacks.
func Paginate[T any](items []T, size int, raw string) Page[T] {
	if size < 1 {
		size = 1
	}
	numPages := NumPages(len(items), size)
	number := ResolvePage(raw, numPages)

	start := (number - 1) * size
	end := min(start+size, len(items))

	return Page[T]{
		Items:    items[start:end:end],
		Number:   number,
		NumPages: numPages,
		Count:    len(items),
		Size:     size,
	}
}
