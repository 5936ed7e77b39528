// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed full-page HTML cache. A rendered public
// page is stored under its canonical key so later requests skip the page
// tree queries and template execution entirely.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages full-page HTML caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get retrieves cached HTML for a page key. Returns false on a miss or
// when Valkey is unreachable.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Set stores rendered HTML for a page key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if err := pc.client.Set(ctx, pageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a single page from the cache.
func (pc *PageCache) Invalidate(ctx context.Context, key string) {
	if err := pc.client.Del(ctx, pageKeyPrefix+key).Err(); err != nil {
		slog.Warn("page cache invalidate error", "key", key, "error", err)
	}
	slog.Debug("page cache invalidated", "key", key)
}

// InvalidateHomepage removes the cached homepage.
func (pc *PageCache) InvalidateHomepage(ctx context.Context) {
	pc.Invalidate(ctx, HomepageKey())
}

// InvalidateListing removes the section index and every cached page of
// its listing. Section slugs never contain glob characters.
func (pc *PageCache) InvalidateListing(ctx context.Context, section string) {
	pc.Invalidate(ctx, IndexKey(section))
	if n := pc.deleteMatching(ctx, pageKeyPrefix+section+`\?page=*`); n > 0 {
		slog.Debug("page cache listing cleared", "section", section, "deleted", n)
	}
}

// InvalidateAll removes all cached pages by scanning for the prefix.
// Called at startup and whenever a whole branch of the site changes.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	if n := pc.deleteMatching(ctx, pageKeyPrefix+"*"); n > 0 {
		slog.Info("page cache fully cleared", "deleted", n)
	}
}

// deleteMatching deletes every key matching the SCAN pattern and returns
// how many were found.
func (pc *PageCache) deleteMatching(ctx context.Context, pattern string) int {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "pattern", pattern, "error", err)
			return deleted
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			return deleted
		}
	}
}

// HomepageKey returns the cache key for the homepage.
func HomepageKey() string {
	return "_homepage"
}

// IndexKey returns the cache key for an unpaginated section index.
func IndexKey(section string) string {
	return section
}

// ListingKey returns the cache key for one page of a paginated listing.
func ListingKey(section string, page int) string {
	return section + "?page=" + strconv.Itoa(page)
}

// CanonicalListingKey returns the listing key for a raw page value, and
// false when the value is not in canonical form ("" or a positive integer
// without sign, padding or leading zeros). Only canonical requests are
// cached, so arbitrary query strings cannot grow the cache.
func CanonicalListingKey(section, raw string) (string, bool) {
	if raw == "" {
		return ListingKey(section, 1), true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || strconv.Itoa(n) != raw {
		return "", false
	}
	return ListingKey(section, n), true
}

// PostKey returns the cache key for a single post within a section.
func PostKey(section, slug string) string {
	return fmt.Sprintf("%s/%s", section, slug)
}
