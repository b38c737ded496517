package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/organizai/organizai/internal/model"
)

const budgetColumns = `id, user_id, category_id, amount, period, alert_threshold, created_at, updated_at`

// CreateBudget inserts a budget. Only one budget may exist per category and period.
func (r *Repository) CreateBudget(ctx context.Context, b *model.Budget) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO budgets (id, user_id, category_id, amount, period, alert_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, b.ID, b.UserID, b.CategoryID, b.Amount, b.Period, b.AlertThreshold, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

// GetBudget returns a budget owned by the user.
func (r *Repository) GetBudget(ctx context.Context, userID, id string) (*model.Budget, error) {
	b, err := scanBudget(r.pool.QueryRow(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return b, nil
}

// ListBudgets returns the user's budgets.
func (r *Repository) ListBudgets(ctx context.Context, userID string) ([]*model.Budget, error) {
	return r.queryBudgets(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY created_at ASC
	`, userID)
}

// ListBudgetsByCategory returns the budgets tracking one category.
func (r *Repository) ListBudgetsByCategory(ctx context.Context, userID, categoryID string) ([]*model.Budget, error) {
	return r.queryBudgets(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 AND category_id = $2
	`, userID, categoryID)
}

// UpdateBudget updates a budget's mutable fields.
func (r *Repository) UpdateBudget(ctx context.Context, b *model.Budget) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE budgets
		SET category_id = $3, amount = $4, period = $5, alert_threshold = $6, updated_at = $7
		WHERE id = $1 AND user_id = $2
	`, b.ID, b.UserID, b.CategoryID, b.Amount, b.Period, b.AlertThreshold, b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update budget: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBudget removes a budget.
func (r *Repository) DeleteBudget(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) queryBudgets(ctx context.Context, query string, args ...any) ([]*model.Budget, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []*model.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}

func scanBudget(row pgx.Row) (*model.Budget, error) {
	var b model.Budget
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.CategoryID,
		&b.Amount,
		&b.Period,
		&b.AlertThreshold,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return &b, err
}
