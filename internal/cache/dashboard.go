package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// dashboardPrefix is the Redis key prefix for cached dashboards.
	dashboardPrefix = "dashboard:"
	// DashboardTTL is how long a computed dashboard is served from cache.
	DashboardTTL = 60 * time.Second
)

// GetDashboard decodes the cached dashboard for a user into dest.
// Returns false on a cache miss or a corrupted entry.
func (c *Cache) GetDashboard(ctx context.Context, userID string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, dashboardPrefix+userID).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get dashboard: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, nil //nolint:nilerr
	}
	return true, nil
}

// SetDashboard caches a computed dashboard.
func (c *Cache) SetDashboard(ctx context.Context, userID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal dashboard: %w", err)
	}
	return c.client.Set(ctx, dashboardPrefix+userID, data, DashboardTTL).Err()
}

// InvalidateDashboard drops a user's cached dashboard.
func (c *Cache) InvalidateDashboard(ctx context.Context, userID string) error {
	return c.client.Del(ctx, dashboardPrefix+userID).Err()
}
