package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/organizai/organizai/internal/model"
)

const (
	// banCachePrefix is the Redis key prefix for cached ban state.
	banCachePrefix = "ban:"
	// banCacheTTL bounds how long a ban change takes to reach the auth middleware.
	banCacheTTL = 5 * time.Minute
	// notBanned marks a user known to have no active ban.
	notBanned = "none"
)

// GetBan returns the cached ban state for a user. found is false on a
// cache miss; a nil ban with found=true means the user is not banned.
func (c *Cache) GetBan(ctx context.Context, userID string) (ban *model.Ban, found bool, err error) {
	data, err := c.client.Get(ctx, banCachePrefix+userID).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get ban: %w", err)
	}
	if string(data) == notBanned {
		return nil, true, nil
	}

	var cached model.Ban
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, false, nil //nolint:nilerr
	}
	return &cached, true, nil
}

// SetBan caches a user's ban state. A nil ban records "not banned".
// The entry never outlives the ban itself.
func (c *Cache) SetBan(ctx context.Context, userID string, ban *model.Ban) error {
	if ban == nil {
		return c.client.Set(ctx, banCachePrefix+userID, notBanned, banCacheTTL).Err()
	}

	data, err := json.Marshal(ban)
	if err != nil {
		return fmt.Errorf("marshal ban: %w", err)
	}
	ttl := banCacheTTL
	if ban.ExpiresAt != nil {
		if until := time.Until(*ban.ExpiresAt); until < ttl {
			ttl = until
		}
	}
	if ttl <= 0 {
		return c.DeleteBan(ctx, userID)
	}
	return c.client.Set(ctx, banCachePrefix+userID, data, ttl).Err()
}

// DeleteBan drops the cached ban state so the next request reloads it.
func (c *Cache) DeleteBan(ctx context.Context, userID string) error {
	return c.client.Del(ctx, banCachePrefix+userID).Err()
}
