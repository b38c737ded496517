package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

const transactionColumns = `id, user_id, account_id, category_id, type, amount, description, date, notes, created_at, updated_at`

// CreateTransaction inserts a transaction and applies its effect on the
// account balance in the same database transaction.
func (r *Repository) CreateTransaction(ctx context.Context, t *model.Transaction) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := adjustBalance(ctx, tx, t.UserID, t.AccountID, t.BalanceEffect()); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO transactions (id, user_id, account_id, category_id, type, amount, description, date, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			t.ID,
			t.UserID,
			t.AccountID,
			t.CategoryID,
			t.Type,
			t.Amount,
			t.Description,
			t.Date,
			t.Notes,
			t.CreatedAt,
			t.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		return nil
	})
}

// GetTransaction returns a transaction owned by the user.
func (r *Repository) GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error) {
	return getTransaction(ctx, r.pool, userID, id, false)
}

func getTransaction(ctx context.Context, q querier, userID, id string, forUpdate bool) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	t, err := scanTransaction(q.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction replaces a transaction. The old balance effect is
// reverted and the new one applied, possibly on a different account.
func (r *Repository) UpdateTransaction(ctx context.Context, t *model.Transaction) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		old, err := getTransaction(ctx, tx, t.UserID, t.ID, true)
		if err != nil {
			return err
		}
		if err := adjustBalance(ctx, tx, old.UserID, old.AccountID, old.BalanceEffect().Neg()); err != nil {
			return err
		}
		if err := adjustBalance(ctx, tx, t.UserID, t.AccountID, t.BalanceEffect()); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE transactions
			SET account_id = $3, category_id = $4, type = $5, amount = $6,
			    description = $7, date = $8, notes = $9, updated_at = $10
			WHERE id = $1 AND user_id = $2
		`,
			t.ID,
			t.UserID,
			t.AccountID,
			t.CategoryID,
			t.Type,
			t.Amount,
			t.Description,
			t.Date,
			t.Notes,
			t.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		t.CreatedAt = old.CreatedAt
		return nil
	})
}

// DeleteTransaction removes a transaction and reverts its balance effect.
func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) (*model.Transaction, error) {
	var deleted *model.Transaction
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		old, err := getTransaction(ctx, tx, userID, id, true)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		if err := adjustBalance(ctx, tx, userID, old.AccountID, old.BalanceEffect().Neg()); err != nil {
			return err
		}
		deleted = old
		return nil
	})
	return deleted, err
}

// ListTransactions returns a page of transactions newest first, with a
// cursor for the next page.
func (r *Repository) ListTransactions(ctx context.Context, filter model.TransactionFilter, cursor string, limit int) ([]*model.Transaction, string, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{filter.UserID}
	argIndex := 2

	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, filter.Type)
		argIndex++
	}
	if filter.AccountID != "" {
		query += fmt.Sprintf(" AND account_id = $%d", argIndex)
		args = append(args, filter.AccountID)
		argIndex++
	}
	if filter.CategoryID != "" {
		query += fmt.Sprintf(" AND category_id = $%d", argIndex)
		args = append(args, filter.CategoryID)
		argIndex++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIndex)
		args = append(args, *filter.From)
		argIndex++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIndex)
		args = append(args, *filter.To)
		argIndex++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(` AND (description ILIKE $%d ESCAPE '\' OR notes ILIKE $%d ESCAPE '\')`, argIndex, argIndex)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argIndex++
	}

	if cursor != "" {
		date, id, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		query += fmt.Sprintf(" AND (date, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, date, id)
		argIndex += 2
	}

	query += fmt.Sprintf(" ORDER BY date DESC, id DESC LIMIT $%d", argIndex)
	args = append(args, limit+1)

	txs, err := r.queryTransactions(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}

	var nextCursor string
	if len(txs) > limit {
		txs = txs[:limit]
		last := txs[len(txs)-1]
		nextCursor = encodeCursor(last.Date, last.ID)
	}
	return txs, nextCursor, nil
}

// ListRecentTransactions returns the user's latest transactions.
func (r *Repository) ListRecentTransactions(ctx context.Context, userID string, limit int) ([]*model.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, id DESC
		LIMIT $2
	`, userID, limit)
}

// ListTransactionsSince returns every transaction dated on or after since.
func (r *Repository) ListTransactionsSince(ctx context.Context, userID string, since time.Time) ([]*model.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = $1 AND date >= $2
		ORDER BY date ASC, id ASC
	`, userID, since)
}

// SumExpensesByCategory totals expenses of a category in [from, to).
func (r *Repository) SumExpensesByCategory(ctx context.Context, userID, categoryID string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE user_id = $1 AND category_id = $2 AND type = 'expense'
		  AND date >= $3 AND date < $4
	`, userID, categoryID, from, to).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return total, nil
}

// SpendingByCategory returns the largest expense categories in [from, to).
// Uncategorized spending is reported with a nil category.
func (r *Repository) SpendingByCategory(ctx context.Context, userID string, from, to time.Time, limit int) ([]model.CategorySpend, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.category_id, COALESCE(c.name, 'Uncategorized'), COALESCE(c.color, ''), SUM(t.amount) AS total
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1 AND t.type = 'expense' AND t.date >= $2 AND t.date < $3
		GROUP BY t.category_id, c.name, c.color
		ORDER BY total DESC
		LIMIT $4
	`, userID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate spending: %w", err)
	}
	defer rows.Close()

	spend := []model.CategorySpend{}
	for rows.Next() {
		var s model.CategorySpend
		if err := rows.Scan(&s.CategoryID, &s.Name, &s.Color, &s.Total); err != nil {
			return nil, fmt.Errorf("failed to scan spending: %w", err)
		}
		spend = append(spend, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating spending: %w", err)
	}
	return spend, nil
}

// FlowTotals sums income and expenses in [from, to).
func (r *Repository) FlowTotals(ctx context.Context, userID string, from, to time.Time) (income, expense decimal.Decimal, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date < $3
	`, userID, from, to).Scan(&income, &expense)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum flows: %w", err)
	}
	return income, expense, nil
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...any) ([]*model.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := []*model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var t model.Transaction
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.AccountID,
		&t.CategoryID,
		&t.Type,
		&t.Amount,
		&t.Description,
		&t.Date,
		&t.Notes,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return &t, err
}
