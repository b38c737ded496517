// Package cache holds the Redis-backed state: rate-limit windows, ban and
// dashboard caches, alert dedupe claims, market series and the leaderboard.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides Redis cache access methods.
type Cache struct {
	client *redis.Client
}

// New connects to redisURL. poolSize <= 0 keeps the driver default.
func New(ctx context.Context, redisURL string, poolSize int) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.ClientName = "organizai"
	if poolSize > 0 {
		opt.PoolSize = poolSize
		opt.MinIdleConns = max(1, poolSize/5)
	}
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	c := NewFromClient(redis.NewClient(opt))

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return c, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the connection for the stream publisher and worker.
func (c *Cache) Client() *redis.Client {
	return c.client
}
