package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/organizai/organizai/internal/model"
)

const categoryColumns = `id, user_id, name, type, color, icon, created_at`

// CreateCategory inserts a new category.
func (r *Repository) CreateCategory(ctx context.Context, c *model.Category) error {
	return insertCategory(ctx, r.pool, c)
}

func insertCategory(ctx context.Context, q querier, c *model.Category) error {
	_, err := q.Exec(ctx, `
		INSERT INTO categories (id, user_id, name, type, color, icon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.UserID, c.Name, c.Type, c.Color, c.Icon, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetCategory returns a category owned by the user.
func (r *Repository) GetCategory(ctx context.Context, userID, id string) (*model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// ListCategories returns the user's categories, optionally of one flow type.
func (r *Repository) ListCategories(ctx context.Context, userID string, flow model.FlowType) ([]*model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = $1`
	args := []any{userID}
	if flow != "" {
		query += ` AND type = $2`
		args = append(args, flow)
	}
	query += ` ORDER BY type, name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory updates a category's mutable fields.
func (r *Repository) UpdateCategory(ctx context.Context, c *model.Category) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE categories SET name = $3, type = $4, color = $5, icon = $6
		WHERE id = $1 AND user_id = $2
	`, c.ID, c.UserID, c.Name, c.Type, c.Color, c.Icon)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CategoryInUse reports whether any transaction or budget references the
// category.
func (r *Repository) CategoryInUse(ctx context.Context, userID, id string) (bool, error) {
	var inUse bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM transactions WHERE user_id = $1 AND category_id = $2)
		    OR EXISTS (SELECT 1 FROM budgets WHERE user_id = $1 AND category_id = $2)
	`, userID, id).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("failed to check category references: %w", err)
	}
	return inUse, nil
}

// DeleteCategory removes a category. Transactions keep existing with no
// category; budgets and rules on it are removed by the schema.
func (r *Repository) DeleteCategory(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Color, &c.Icon, &c.CreatedAt)
	return &c, err
}
