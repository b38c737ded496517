package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
)

const accountColumns = `id, user_id, name, type, balance, currency, is_active, created_at, updated_at`

// CreateAccount inserts a new account.
func (r *Repository) CreateAccount(ctx context.Context, a *model.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (id, user_id, name, type, balance, currency, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, a.ID, a.UserID, a.Name, a.Type, a.Balance, a.Currency, a.IsActive, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccount returns an account owned by the user.
func (r *Repository) GetAccount(ctx context.Context, userID, id string) (*model.Account, error) {
	return getAccount(ctx, r.pool, userID, id, false)
}

func getAccount(ctx context.Context, q querier, userID, id string, forUpdate bool) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND user_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	a, err := scanAccount(q.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// ListAccounts returns the user's accounts ordered by name.
func (r *Repository) ListAccounts(ctx context.Context, userID string) ([]*model.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE user_id = $1
		ORDER BY is_active DESC, name ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*model.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount updates an account's mutable fields.
func (r *Repository) UpdateAccount(ctx context.Context, a *model.Account) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET name = $3, type = $4, balance = $5, currency = $6, is_active = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2
	`, a.ID, a.UserID, a.Name, a.Type, a.Balance, a.Currency, a.IsActive, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAccount removes an account. Accounts referenced by transactions
// cannot be deleted.
func (r *Repository) DeleteAccount(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrInUse
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TotalBalance sums the balances of the user's active accounts.
func (r *Repository) TotalBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(balance), 0) FROM accounts
		WHERE user_id = $1 AND is_active
	`, userID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum balances: %w", err)
	}
	return total, nil
}

// adjustBalance applies a signed delta to an account's balance.
func adjustBalance(ctx context.Context, q querier, userID, accountID string, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	result, err := q.Exec(ctx, `
		UPDATE accounts SET balance = balance + $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, accountID, userID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Name,
		&a.Type,
		&a.Balance,
		&a.Currency,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return &a, err
}
