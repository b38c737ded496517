package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/organizai/organizai/internal/model"
)

const ruleColumns = `id, user_id, name, keywords, match_type, category_id, priority, active, created_at, updated_at`

// CreateRule inserts a categorization rule.
func (r *Repository) CreateRule(ctx context.Context, rule *model.CategorizationRule) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO categorization_rules (id, user_id, name, keywords, match_type, category_id, priority, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		rule.ID,
		rule.UserID,
		rule.Name,
		pq.Array(rule.Keywords),
		rule.MatchType,
		rule.CategoryID,
		rule.Priority,
		rule.Active,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

// GetRule returns a rule owned by the user.
func (r *Repository) GetRule(ctx context.Context, userID, id string) (*model.CategorizationRule, error) {
	rule, err := scanRule(r.pool.QueryRow(ctx,
		`SELECT `+ruleColumns+` FROM categorization_rules WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return rule, nil
}

// ListRules returns the user's rules, highest priority first.
func (r *Repository) ListRules(ctx context.Context, userID string, activeOnly bool) ([]*model.CategorizationRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM categorization_rules WHERE user_id = $1`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY priority DESC, created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	rules := []*model.CategorizationRule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}
	return rules, nil
}

// UpdateRule updates a rule's mutable fields.
func (r *Repository) UpdateRule(ctx context.Context, rule *model.CategorizationRule) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE categorization_rules
		SET name = $3, keywords = $4, match_type = $5, category_id = $6, priority = $7, active = $8, updated_at = $9
		WHERE id = $1 AND user_id = $2
	`,
		rule.ID,
		rule.UserID,
		rule.Name,
		pq.Array(rule.Keywords),
		rule.MatchType,
		rule.CategoryID,
		rule.Priority,
		rule.Active,
		rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRule removes a rule.
func (r *Repository) DeleteRule(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM categorization_rules WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRule(row pgx.Row) (*model.CategorizationRule, error) {
	var rule model.CategorizationRule
	var keywords pq.StringArray
	err := row.Scan(
		&rule.ID,
		&rule.UserID,
		&rule.Name,
		&keywords,
		&rule.MatchType,
		&rule.CategoryID,
		&rule.Priority,
		&rule.Active,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	rule.Keywords = []string(keywords)
	return &rule, err
}
