package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// leaderboardKey is the sorted set of users by XP.
const leaderboardKey = "leaderboard:xp"

// LeaderboardScore is one member of the XP ranking.
type LeaderboardScore struct {
	UserID string
	XP     int64
}

// SetLeaderboardScore records a user's total XP.
func (c *Cache) SetLeaderboardScore(ctx context.Context, userID string, xp int64) error {
	err := c.client.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(xp), Member: userID}).Err()
	if err != nil {
		return fmt.Errorf("zadd leaderboard: %w", err)
	}
	return nil
}

// TopLeaderboard returns the n users with the most XP, highest first.
func (c *Cache) TopLeaderboard(ctx context.Context, n int) ([]LeaderboardScore, error) {
	if n <= 0 {
		return nil, nil
	}
	members, err := c.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange leaderboard: %w", err)
	}

	out := make([]LeaderboardScore, 0, len(members))
	for _, m := range members {
		id, ok := m.Member.(string)
		if !ok {
			continue
		}
		out = append(out, LeaderboardScore{UserID: id, XP: int64(m.Score)})
	}
	return out, nil
}
