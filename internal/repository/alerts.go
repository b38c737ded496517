package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/organizai/organizai/internal/model"
)

// CreateAlert inserts an alert.
func (r *Repository) CreateAlert(ctx context.Context, a *model.Alert) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO alerts (id, user_id, type, title, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.UserID, a.Type, a.Title, a.Message, a.Read, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// ListAlerts returns the user's alerts newest first.
func (r *Repository) ListAlerts(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*model.Alert, error) {
	query := `SELECT id, user_id, type, title, message, read, created_at FROM alerts WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := []*model.Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}
	return alerts, nil
}

// MarkAlertRead marks one alert as read.
func (r *Repository) MarkAlertRead(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx, `UPDATE alerts SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllAlertsRead marks every unread alert as read and reports how many changed.
func (r *Repository) MarkAllAlertsRead(ctx context.Context, userID string) (int64, error) {
	result, err := r.pool.Exec(ctx, `UPDATE alerts SET read = TRUE WHERE user_id = $1 AND NOT read`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark alerts read: %w", err)
	}
	return result.RowsAffected(), nil
}

// DeleteAlert removes an alert.
func (r *Repository) DeleteAlert(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM alerts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnreadAlerts returns the number of unread alerts.
func (r *Repository) CountUnreadAlerts(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM alerts WHERE user_id = $1 AND NOT read`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return n, nil
}

func scanAlert(row pgx.Row) (*model.Alert, error) {
	var a model.Alert
	err := row.Scan(&a.ID, &a.UserID, &a.Type, &a.Title, &a.Message, &a.Read, &a.CreatedAt)
	return &a, err
}
