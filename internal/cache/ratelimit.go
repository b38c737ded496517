package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitPrefix is the Redis key prefix for rate limit windows.
const rateLimitPrefix = "ratelimit:"

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// fixedWindowScript increments the window counter and sets its expiry on
// the first hit, atomically.
var fixedWindowScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return count
`)

// CheckRateLimit counts a hit for subject in the current fixed window of
// the given scope. The subject is hashed so raw IPs are never stored.
// Redis errors fail open.
func (c *Cache) CheckRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (*RateLimitResult, error) {
	now := time.Now()
	start, reset := windowBounds(now, window)
	key := windowKey(scope, subject, start)

	count, err := fixedWindowScript.Run(ctx, c.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return &RateLimitResult{
			Allowed:   true,
			Limit:     limit,
			Remaining: int64(limit),
			ResetAt:   reset,
		}, fmt.Errorf("rate limit script: %w", err)
	}

	return evaluateWindow(count, limit, now, reset), nil
}

// evaluateWindow turns a window hit count into a decision.
func evaluateWindow(count int64, limit int, now, reset time.Time) *RateLimitResult {
	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}
	result := &RateLimitResult{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   reset,
	}
	if !result.Allowed {
		result.RetryAfter = reset.Sub(now)
		if result.RetryAfter < time.Second {
			result.RetryAfter = time.Second
		}
	}
	return result
}

// windowBounds returns the start and end of the fixed window containing now.
func windowBounds(now time.Time, window time.Duration) (time.Time, time.Time) {
	start := now.Truncate(window)
	return start, start.Add(window)
}

func windowKey(scope, subject string, start time.Time) string {
	return fmt.Sprintf("%s%s:%s:%d", rateLimitPrefix, scope, hashSubject(subject), start.Unix())
}

// hashSubject shortens an IP or user id to 16 hex chars of its SHA-256.
func hashSubject(subject string) string {
	sum := sha256.Sum256([]byte(subject))
	return hex.EncodeToString(sum[:8])
}
