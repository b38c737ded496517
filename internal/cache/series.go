package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/organizai/organizai/internal/benchmark"
)

const (
	// seriesPrefix is the Redis key prefix for cached price series.
	seriesPrefix = "series:"
	// seriesTTL is how long fetched market data is reused.
	seriesTTL = time.Hour
)

// GetSeries returns a cached price series, or nil on a miss.
func (c *Cache) GetSeries(ctx context.Context, symbol, rng string) ([]benchmark.Point, error) {
	data, err := c.client.Get(ctx, seriesKey(symbol, rng)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get series: %w", err)
	}

	var points []benchmark.Point
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, nil //nolint:nilerr
	}
	return points, nil
}

// SetSeries caches a price series.
func (c *Cache) SetSeries(ctx context.Context, symbol, rng string, points []benchmark.Point) error {
	data, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("marshal series: %w", err)
	}
	return c.client.Set(ctx, seriesKey(symbol, rng), data, seriesTTL).Err()
}

func seriesKey(symbol, rng string) string {
	return seriesPrefix + symbol + ":" + rng
}
