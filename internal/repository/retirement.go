package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/organizai/organizai/internal/model"
)

// GetRetirementPlan returns the user's retirement plan.
func (r *Repository) GetRetirementPlan(ctx context.Context, userID string) (*model.RetirementPlan, error) {
	var p model.RetirementPlan
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, current_age, retirement_age, life_expectancy, current_savings, monthly_contribution,
		       expected_return, inflation_rate, desired_monthly_income, created_at, updated_at
		FROM retirement_plans WHERE user_id = $1
	`, userID).Scan(
		&p.UserID,
		&p.CurrentAge,
		&p.RetirementAge,
		&p.LifeExpectancy,
		&p.CurrentSavings,
		&p.MonthlyContribution,
		&p.ExpectedReturn,
		&p.InflationRate,
		&p.DesiredMonthlyIncome,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get retirement plan: %w", err)
	}
	return &p, nil
}

// UpsertRetirementPlan creates or replaces the user's retirement plan.
func (r *Repository) UpsertRetirementPlan(ctx context.Context, p *model.RetirementPlan) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO retirement_plans (user_id, current_age, retirement_age, life_expectancy, current_savings,
		    monthly_contribution, expected_return, inflation_rate, desired_monthly_income, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			current_age = EXCLUDED.current_age,
			retirement_age = EXCLUDED.retirement_age,
			life_expectancy = EXCLUDED.life_expectancy,
			current_savings = EXCLUDED.current_savings,
			monthly_contribution = EXCLUDED.monthly_contribution,
			expected_return = EXCLUDED.expected_return,
			inflation_rate = EXCLUDED.inflation_rate,
			desired_monthly_income = EXCLUDED.desired_monthly_income,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`,
		p.UserID,
		p.CurrentAge,
		p.RetirementAge,
		p.LifeExpectancy,
		p.CurrentSavings,
		p.MonthlyContribution,
		p.ExpectedReturn,
		p.InflationRate,
		p.DesiredMonthlyIncome,
		p.UpdatedAt,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save retirement plan: %w", err)
	}
	return nil
}
