package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/organizai/organizai/internal/model"
)

const banColumns = `id, user_id, reason, banned_by, expires_at, created_at`

// CreateBan inserts a ban.
func (r *Repository) CreateBan(ctx context.Context, b *model.Ban) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bans (id, user_id, reason, banned_by, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, b.ID, b.UserID, b.Reason, b.BannedBy, b.ExpiresAt, b.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to create ban: %w", err)
	}
	return nil
}

// GetActiveBan returns the most recent ban in force for the user.
func (r *Repository) GetActiveBan(ctx context.Context, userID string, now time.Time) (*model.Ban, error) {
	b, err := scanBan(r.pool.QueryRow(ctx, `
		SELECT `+banColumns+` FROM bans
		WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ban: %w", err)
	}
	return b, nil
}

// ListActiveBans returns every ban in force.
func (r *Repository) ListActiveBans(ctx context.Context, now time.Time) ([]*model.Ban, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+banColumns+` FROM bans
		WHERE expires_at IS NULL OR expires_at > $1
		ORDER BY created_at DESC
	`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list bans: %w", err)
	}
	defer rows.Close()

	bans := []*model.Ban{}
	for rows.Next() {
		b, err := scanBan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ban: %w", err)
		}
		bans = append(bans, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bans: %w", err)
	}
	return bans, nil
}

// DeleteBans lifts every ban on the user.
func (r *Repository) DeleteBans(ctx context.Context, userID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM bans WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete bans: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBan(row pgx.Row) (*model.Ban, error) {
	var b model.Ban
	err := row.Scan(&b.ID, &b.UserID, &b.Reason, &b.BannedBy, &b.ExpiresAt, &b.CreatedAt)
	return &b, err
}
