package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/organizai/organizai/internal/model"
)

// ApplyXPEvent awards xp for an event exactly once. The stream message ID
// is the idempotency key; a redelivered event leaves everything unchanged
// and reports applied=false.
func (r *Repository) ApplyXPEvent(ctx context.Context, event *model.XPEvent, xp int64) (*model.GamificationStats, bool, error) {
	var (
		stats   *model.GamificationStats
		applied bool
	)
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			INSERT INTO xp_events (event_id, user_id, type, xp, occurred_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (event_id) DO NOTHING
		`, event.EventID, event.UserID, event.Type, xp, event.OccurredAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to record xp event: %w", err)
		}
		applied = result.RowsAffected() == 1

		if applied {
			_, err = tx.Exec(ctx, `
				UPDATE users
				SET xp = xp + $2, level = FLOOR(SQRT((xp + $2)::float8 / 100))::int + 1, updated_at = NOW()
				WHERE id = $1
			`, event.UserID, xp)
			if err != nil {
				return fmt.Errorf("failed to award xp: %w", err)
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO user_counters (user_id, event_type, count)
				VALUES ($1, $2, 1)
				ON CONFLICT (user_id, event_type) DO UPDATE SET count = user_counters.count + 1
			`, event.UserID, event.Type)
			if err != nil {
				return fmt.Errorf("failed to bump counter: %w", err)
			}
		}

		stats, err = loadGamificationStats(ctx, tx, event.UserID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return stats, applied, nil
}

// UnlockAchievements records achievement codes and returns those that were
// not already unlocked.
func (r *Repository) UnlockAchievements(ctx context.Context, userID string, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		INSERT INTO user_achievements (user_id, code)
		SELECT $1, UNNEST($2::text[])
		ON CONFLICT (user_id, code) DO NOTHING
		RETURNING code
	`, userID, pq.Array(codes))
	if err != nil {
		return nil, fmt.Errorf("failed to unlock achievements: %w", err)
	}
	defer rows.Close()

	var unlocked []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		unlocked = append(unlocked, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}
	return unlocked, nil
}

// GetGamificationStats returns the user's XP, counters and achievements.
func (r *Repository) GetGamificationStats(ctx context.Context, userID string) (*model.GamificationStats, error) {
	return loadGamificationStats(ctx, r.pool, userID)
}

// ListUserAchievements returns unlocked achievements with their unlock time.
func (r *Repository) ListUserAchievements(ctx context.Context, userID string) ([]model.UserAchievement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, code, unlocked_at FROM user_achievements
		WHERE user_id = $1 ORDER BY unlocked_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	out := []model.UserAchievement{}
	for rows.Next() {
		var a model.UserAchievement
		if err := rows.Scan(&a.UserID, &a.Code, &a.UnlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}
	return out, nil
}

func loadGamificationStats(ctx context.Context, q querier, userID string) (*model.GamificationStats, error) {
	stats := &model.GamificationStats{UserID: userID, Counters: model.Counters{}}

	var achievements pq.StringArray
	err := q.QueryRow(ctx, `
		SELECT u.xp, u.level,
		       COALESCE((SELECT ARRAY_AGG(code ORDER BY code) FROM user_achievements WHERE user_id = u.id), '{}')
		FROM users u WHERE u.id = $1
	`, userID).Scan(&stats.XP, &stats.Level, &achievements)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	stats.Achievements = []string(achievements)

	rows, err := q.Query(ctx, `SELECT event_type, count FROM user_counters WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load counters: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			t string
			n int64
		)
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("failed to scan counter: %w", err)
		}
		stats.Counters[model.XPEventType(t)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counters: %w", err)
	}
	return stats, nil
}
