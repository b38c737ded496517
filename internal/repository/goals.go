package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/organizai/organizai/internal/model"
)

const goalColumns = `id, user_id, name, target_amount, current_amount, deadline, category, status, created_at, updated_at`

// CreateGoal inserts a savings goal.
func (r *Repository) CreateGoal(ctx context.Context, g *model.Goal) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO goals (id, user_id, name, target_amount, current_amount, deadline, category, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		g.ID,
		g.UserID,
		g.Name,
		g.TargetAmount,
		g.CurrentAmount,
		g.Deadline,
		g.Category,
		g.Status,
		g.CreatedAt,
		g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// GetGoal returns a goal owned by the user.
func (r *Repository) GetGoal(ctx context.Context, userID, id string) (*model.Goal, error) {
	return getGoal(ctx, r.pool, userID, id, false)
}

func getGoal(ctx context.Context, q querier, userID, id string, forUpdate bool) (*model.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND user_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	g, err := scanGoal(q.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return g, nil
}

// ListGoals returns the user's goals, optionally of one status.
func (r *Repository) ListGoals(ctx context.Context, userID string, status model.GoalStatus) ([]*model.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY deadline ASC NULLS LAST, created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := []*model.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}

// UpdateGoal updates a goal's mutable fields.
func (r *Repository) UpdateGoal(ctx context.Context, g *model.Goal) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE goals
		SET name = $3, target_amount = $4, current_amount = $5, deadline = $6, category = $7, status = $8, updated_at = $9
		WHERE id = $1 AND user_id = $2
	`,
		g.ID,
		g.UserID,
		g.Name,
		g.TargetAmount,
		g.CurrentAmount,
		g.Deadline,
		g.Category,
		g.Status,
		g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGoal removes a goal and its contributions.
func (r *Repository) DeleteGoal(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddGoalContribution records a contribution and adds it to the goal's
// current amount. A goal that reaches its target is marked completed; the
// returned flag is true only for the contribution that completed it.
func (r *Repository) AddGoalContribution(ctx context.Context, c *model.GoalContribution) (*model.Goal, bool, error) {
	var (
		goal      *model.Goal
		completed bool
	)
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		g, err := getGoal(ctx, tx, c.UserID, c.GoalID, true)
		if err != nil {
			return err
		}
		if g.Status != model.GoalActive {
			return ErrNotActive
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO goal_contributions (id, goal_id, user_id, amount, date, note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, c.ID, c.GoalID, c.UserID, c.Amount, c.Date, c.Note, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to add contribution: %w", err)
		}

		g.CurrentAmount = g.CurrentAmount.Add(c.Amount)
		if g.IsReached() {
			g.Status = model.GoalCompleted
			completed = true
		}
		g.UpdatedAt = c.CreatedAt

		_, err = tx.Exec(ctx, `
			UPDATE goals SET current_amount = $2, status = $3, updated_at = $4 WHERE id = $1
		`, g.ID, g.CurrentAmount, g.Status, g.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update goal amount: %w", err)
		}
		goal = g
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return goal, completed, nil
}

// ListGoalContributions returns a goal's contributions, newest first.
func (r *Repository) ListGoalContributions(ctx context.Context, userID, goalID string) ([]*model.GoalContribution, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, goal_id, user_id, amount, date, note, created_at
		FROM goal_contributions
		WHERE goal_id = $1 AND user_id = $2
		ORDER BY date DESC, created_at DESC
	`, goalID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	contributions := []*model.GoalContribution{}
	for rows.Next() {
		var c model.GoalContribution
		if err := rows.Scan(&c.ID, &c.GoalID, &c.UserID, &c.Amount, &c.Date, &c.Note, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		contributions = append(contributions, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contributions: %w", err)
	}
	return contributions, nil
}

func scanGoal(row pgx.Row) (*model.Goal, error) {
	var g model.Goal
	err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.Name,
		&g.TargetAmount,
		&g.CurrentAmount,
		&g.Deadline,
		&g.Category,
		&g.Status,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	return &g, err
}
