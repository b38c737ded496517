package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
)

const debtColumns = `id, user_id, name, type, original_amount, current_balance, interest_rate, minimum_payment, due_day, status, created_at, updated_at`

// CreateDebt inserts a debt.
func (r *Repository) CreateDebt(ctx context.Context, d *model.Debt) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO debts (id, user_id, name, type, original_amount, current_balance, interest_rate, minimum_payment, due_day, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		d.ID,
		d.UserID,
		d.Name,
		d.Type,
		d.OriginalAmount,
		d.CurrentBalance,
		d.InterestRate,
		d.MinimumPayment,
		d.DueDay,
		d.Status,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create debt: %w", err)
	}
	return nil
}

// GetDebt returns a debt owned by the user.
func (r *Repository) GetDebt(ctx context.Context, userID, id string) (*model.Debt, error) {
	return getDebt(ctx, r.pool, userID, id, false)
}

func getDebt(ctx context.Context, q querier, userID, id string, forUpdate bool) (*model.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE id = $1 AND user_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	d, err := scanDebt(q.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}
	return d, nil
}

// ListDebts returns the user's debts, optionally of one status.
func (r *Repository) ListDebts(ctx context.Context, userID string, status model.DebtStatus) ([]*model.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY status ASC, current_balance DESC, id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	debts := []*model.Debt{}
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating debts: %w", err)
	}
	return debts, nil
}

// UpdateDebt updates a debt's mutable fields.
func (r *Repository) UpdateDebt(ctx context.Context, d *model.Debt) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE debts
		SET name = $3, type = $4, original_amount = $5, current_balance = $6, interest_rate = $7,
		    minimum_payment = $8, due_day = $9, status = $10, updated_at = $11
		WHERE id = $1 AND user_id = $2
	`,
		d.ID,
		d.UserID,
		d.Name,
		d.Type,
		d.OriginalAmount,
		d.CurrentBalance,
		d.InterestRate,
		d.MinimumPayment,
		d.DueDay,
		d.Status,
		d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update debt: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDebt removes a debt and its payments.
func (r *Repository) DeleteDebt(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM debts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddDebtPayment records a payment and reduces the debt balance, never
// below zero. A debt whose balance reaches zero is marked paid off; the
// returned flag is true only for the payment that paid it off.
func (r *Repository) AddDebtPayment(ctx context.Context, p *model.DebtPayment) (*model.Debt, bool, error) {
	var (
		debt    *model.Debt
		paidOff bool
	)
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		d, err := getDebt(ctx, tx, p.UserID, p.DebtID, true)
		if err != nil {
			return err
		}
		if d.Status != model.DebtActive {
			return ErrNotActive
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO debt_payments (id, debt_id, user_id, amount, date, note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, p.ID, p.DebtID, p.UserID, p.Amount, p.Date, p.Note, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to add payment: %w", err)
		}

		d.CurrentBalance = decimal.Max(d.CurrentBalance.Sub(p.Amount), decimal.Zero)
		if d.CurrentBalance.IsZero() {
			d.Status = model.DebtPaidOff
			paidOff = true
		}
		d.UpdatedAt = p.CreatedAt

		_, err = tx.Exec(ctx, `
			UPDATE debts SET current_balance = $2, status = $3, updated_at = $4 WHERE id = $1
		`, d.ID, d.CurrentBalance, d.Status, d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update debt balance: %w", err)
		}
		debt = d
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return debt, paidOff, nil
}

// ListDebtPayments returns a debt's payments, newest first.
func (r *Repository) ListDebtPayments(ctx context.Context, userID, debtID string) ([]*model.DebtPayment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, debt_id, user_id, amount, date, note, created_at
		FROM debt_payments
		WHERE debt_id = $1 AND user_id = $2
		ORDER BY date DESC, created_at DESC
	`, debtID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []*model.DebtPayment{}
	for rows.Next() {
		var p model.DebtPayment
		if err := rows.Scan(&p.ID, &p.DebtID, &p.UserID, &p.Amount, &p.Date, &p.Note, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return payments, nil
}

// TotalDebt sums the balance of the user's active debts.
func (r *Repository) TotalDebt(ctx context.Context, userID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(current_balance), 0) FROM debts WHERE user_id = $1 AND status = 'active'
	`, userID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum debts: %w", err)
	}
	return total, nil
}

func scanDebt(row pgx.Row) (*model.Debt, error) {
	var d model.Debt
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Name,
		&d.Type,
		&d.OriginalAmount,
		&d.CurrentBalance,
		&d.InterestRate,
		&d.MinimumPayment,
		&d.DueDay,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return &d, err
}
