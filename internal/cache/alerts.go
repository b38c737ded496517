package cache

import (
	"context"
	"fmt"
	"time"
)

// budgetAlertPrefix is the Redis key prefix for sent budget alerts.
const budgetAlertPrefix = "alert:budget:"

// ClaimBudgetAlert records that an alert of kind was raised for a budget in
// the window starting at windowStart. It returns true only for the first
// claim; the marker expires with the window.
func (c *Cache) ClaimBudgetAlert(ctx context.Context, budgetID, kind string, windowStart, windowEnd time.Time) (bool, error) {
	key := budgetAlertKey(budgetID, kind, windowStart)
	ttl := time.Until(windowEnd)
	if ttl < time.Minute {
		ttl = time.Minute
	}
	ok, err := c.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim budget alert: %w", err)
	}
	return ok, nil
}

func budgetAlertKey(budgetID, kind string, windowStart time.Time) string {
	return fmt.Sprintf("%s%s:%s:%s", budgetAlertPrefix, budgetID, kind, windowStart.UTC().Format("2006-01-02"))
}
