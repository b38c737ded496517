package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/organizai/organizai/internal/model"
)

const investmentColumns = `id, user_id, name, symbol, type, quantity, purchase_price, current_price, purchase_date, created_at, updated_at`

// CreateInvestment inserts an investment position.
func (r *Repository) CreateInvestment(ctx context.Context, inv *model.Investment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO investments (id, user_id, name, symbol, type, quantity, purchase_price, current_price, purchase_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		inv.ID,
		inv.UserID,
		inv.Name,
		inv.Symbol,
		inv.Type,
		inv.Quantity,
		inv.PurchasePrice,
		inv.CurrentPrice,
		inv.PurchaseDate,
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}
	return nil
}

// GetInvestment returns an investment owned by the user.
func (r *Repository) GetInvestment(ctx context.Context, userID, id string) (*model.Investment, error) {
	inv, err := scanInvestment(r.pool.QueryRow(ctx,
		`SELECT `+investmentColumns+` FROM investments WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}
	return inv, nil
}

// ListInvestments returns the user's positions.
func (r *Repository) ListInvestments(ctx context.Context, userID string) ([]*model.Investment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+investmentColumns+` FROM investments
		WHERE user_id = $1
		ORDER BY type, name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	defer rows.Close()

	investments := []*model.Investment{}
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investments: %w", err)
	}
	return investments, nil
}

// UpdateInvestment updates an investment's mutable fields.
func (r *Repository) UpdateInvestment(ctx context.Context, inv *model.Investment) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE investments
		SET name = $3, symbol = $4, type = $5, quantity = $6, purchase_price = $7,
		    current_price = $8, purchase_date = $9, updated_at = $10
		WHERE id = $1 AND user_id = $2
	`,
		inv.ID,
		inv.UserID,
		inv.Name,
		inv.Symbol,
		inv.Type,
		inv.Quantity,
		inv.PurchasePrice,
		inv.CurrentPrice,
		inv.PurchaseDate,
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update investment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteInvestment removes an investment and its return snapshots.
func (r *Repository) DeleteInvestment(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM investments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddInvestmentReturn records a value snapshot for an investment.
func (r *Repository) AddInvestmentReturn(ctx context.Context, ret *model.InvestmentReturn) error {
	result, err := r.pool.Exec(ctx, `
		INSERT INTO investment_returns (id, investment_id, user_id, date, value, note, created_at)
		SELECT $1, i.id, i.user_id, $4, $5, $6, $7
		FROM investments i
		WHERE i.id = $2 AND i.user_id = $3
	`, ret.ID, ret.InvestmentID, ret.UserID, ret.Date, ret.Value, ret.Note, ret.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add investment return: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListInvestmentReturns returns an investment's snapshots in date order.
func (r *Repository) ListInvestmentReturns(ctx context.Context, userID, investmentID string) ([]*model.InvestmentReturn, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, investment_id, user_id, date, value, note, created_at
		FROM investment_returns
		WHERE investment_id = $1 AND user_id = $2
		ORDER BY date ASC, created_at ASC
	`, investmentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list investment returns: %w", err)
	}
	defer rows.Close()

	returns := []*model.InvestmentReturn{}
	for rows.Next() {
		var ret model.InvestmentReturn
		if err := rows.Scan(&ret.ID, &ret.InvestmentID, &ret.UserID, &ret.Date, &ret.Value, &ret.Note, &ret.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan investment return: %w", err)
		}
		returns = append(returns, &ret)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investment returns: %w", err)
	}
	return returns, nil
}

func scanInvestment(row pgx.Row) (*model.Investment, error) {
	var inv model.Investment
	err := row.Scan(
		&inv.ID,
		&inv.UserID,
		&inv.Name,
		&inv.Symbol,
		&inv.Type,
		&inv.Quantity,
		&inv.PurchasePrice,
		&inv.CurrentPrice,
		&inv.PurchaseDate,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	return &inv, err
}
