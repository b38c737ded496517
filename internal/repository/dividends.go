package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/organizai/organizai/internal/model"
)

const dividendColumns = `id, user_id, investment_id, symbol, amount, payment_date, reinvested, created_at, updated_at`

// CreateDividend inserts a dividend payout.
func (r *Repository) CreateDividend(ctx context.Context, d *model.Dividend) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO dividends (id, user_id, investment_id, symbol, amount, payment_date, reinvested, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, d.ID, d.UserID, d.InvestmentID, d.Symbol, d.Amount, d.PaymentDate, d.Reinvested, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create dividend: %w", err)
	}
	return nil
}

// GetDividend returns a dividend owned by the user.
func (r *Repository) GetDividend(ctx context.Context, userID, id string) (*model.Dividend, error) {
	d, err := scanDividend(r.pool.QueryRow(ctx,
		`SELECT `+dividendColumns+` FROM dividends WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get dividend: %w", err)
	}
	return d, nil
}

// ListDividends returns the user's dividends newest first. A zero year
// returns every year.
func (r *Repository) ListDividends(ctx context.Context, userID string, year int) ([]*model.Dividend, error) {
	query := `SELECT ` + dividendColumns + ` FROM dividends WHERE user_id = $1`
	args := []any{userID}
	if year > 0 {
		query += ` AND EXTRACT(YEAR FROM payment_date) = $2`
		args = append(args, year)
	}
	query += ` ORDER BY payment_date DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dividends: %w", err)
	}
	defer rows.Close()

	dividends := []*model.Dividend{}
	for rows.Next() {
		d, err := scanDividend(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dividend: %w", err)
		}
		dividends = append(dividends, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividends: %w", err)
	}
	return dividends, nil
}

// UpdateDividend updates a dividend's mutable fields.
func (r *Repository) UpdateDividend(ctx context.Context, d *model.Dividend) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE dividends
		SET investment_id = $3, symbol = $4, amount = $5, payment_date = $6, reinvested = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2
	`, d.ID, d.UserID, d.InvestmentID, d.Symbol, d.Amount, d.PaymentDate, d.Reinvested, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update dividend: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDividend removes a dividend.
func (r *Repository) DeleteDividend(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM dividends WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete dividend: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDividend(row pgx.Row) (*model.Dividend, error) {
	var d model.Dividend
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.InvestmentID,
		&d.Symbol,
		&d.Amount,
		&d.PaymentDate,
		&d.Reinvested,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return &d, err
}
