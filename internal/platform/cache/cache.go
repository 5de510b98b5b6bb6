// Package cache connects to the Redis (or Dragonfly) instance that can hold
// quiz progress, and owns the key namespace used there.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures Open.
type Options struct {
	URL    string
	Prefix string // prepended to every key built with Key
}

// Cache is a connected client plus its key prefix.
type Cache struct {
	Client *redis.Client
	Prefix string
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// Open connects and fails unless the server answers a ping.
func Open(ctx context.Context, opts Options) (*Cache, error) {
	ro, err := ParseURL(opts.URL)
	if err != nil {
		return nil, err
	}
	ro.DialTimeout = 5 * time.Second
	ro.ReadTimeout = 3 * time.Second
	ro.WriteTimeout = 3 * time.Second

	client := redis.NewClient(ro)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping cache: %w", err)
	}
	return &Cache{Client: client, Prefix: opts.Prefix}, nil
}

// Key joins parts with ':' under the prefix: Key("a", "b") is "prefix:a:b".
func (c *Cache) Key(parts ...string) string {
	key := strings.Join(parts, ":")
	if c.Prefix == "" {
		return key
	}
	return c.Prefix + ":" + key
}

// Ready is the readiness probe for the cache.
func (c *Cache) Ready(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache unreachable: %w", err)
	}
	return nil
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.Client.Close()
}
