package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod is the window a budget limit applies to.
type BudgetPeriod string

const (
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

// IsValid checks if the period is known.
func (p BudgetPeriod) IsValid() bool {
	return p == PeriodWeekly || p == PeriodMonthly || p == PeriodYearly
}

// Window returns the [start, end) range of the period containing t, in UTC.
// Weeks start on Monday.
func (p BudgetPeriod) Window(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7)
	case PeriodYearly:
		start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	default:
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
}

// DefaultAlertThreshold is the percent of the limit that triggers a warning.
const DefaultAlertThreshold = 80

// Budget caps spending for an expense category over a period.
type Budget struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	CategoryID     string          `json:"category_id"`
	Amount         decimal.Decimal `json:"amount"`
	Period         BudgetPeriod    `json:"period"`
	AlertThreshold int             `json:"alert_threshold"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BudgetState summarizes how much of a budget is used.
type BudgetState string

const (
	BudgetOK       BudgetState = "ok"
	BudgetWarning  BudgetState = "warning"
	BudgetExceeded BudgetState = "exceeded"
)

// BudgetStatus is a budget evaluated against the current period's spending.
type BudgetStatus struct {
	Budget       *Budget         `json:"budget"`
	CategoryName string          `json:"category_name"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	PercentUsed  float64         `json:"percent_used"`
	State        BudgetState     `json:"state"`
	WindowStart  time.Time       `json:"window_start"`
	WindowEnd    time.Time       `json:"window_end"`
}

// Evaluate computes the status of a budget for the given spent amount.
func (b *Budget) Evaluate(spent decimal.Decimal) (float64, BudgetState) {
	if b.Amount.Sign() <= 0 {
		return 0, BudgetOK
	}
	percent, _ := spent.Div(b.Amount).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	threshold := b.AlertThreshold
	if threshold <= 0 {
		threshold = DefaultAlertThreshold
	}
	switch {
	case percent >= 100:
		return percent, BudgetExceeded
	case percent >= float64(threshold):
		return percent, BudgetWarning
	default:
		return percent, BudgetOK
	}
}
