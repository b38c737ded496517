package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RetirementPlan holds the assumptions for a user's retirement projection.
// Rates are annual percentages; DesiredMonthlyIncome is in today's money.
type RetirementPlan struct {
	UserID               string          `json:"user_id"`
	CurrentAge           int             `json:"current_age"`
	RetirementAge        int             `json:"retirement_age"`
	LifeExpectancy       int             `json:"life_expectancy"`
	CurrentSavings       decimal.Decimal `json:"current_savings"`
	MonthlyContribution  decimal.Decimal `json:"monthly_contribution"`
	ExpectedReturn       decimal.Decimal `json:"expected_return"`
	InflationRate        decimal.Decimal `json:"inflation_rate"`
	DesiredMonthlyIncome decimal.Decimal `json:"desired_monthly_income"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
