// Package cache keeps rendered public pages in Valkey (Redis-compatible)
// so repeat visits skip the database and the templates.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectValkey opens a client for the page cache and pings it. Reads and
// writes use short timeouts: a slow cache is treated like a miss.
func ConnectValkey(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", addr, err)
	}

	slog.Info("valkey connected", "addr", addr)
	return client, nil
}
