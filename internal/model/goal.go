package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalStatus represents the lifecycle of a savings goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

// IsValid checks if the status is known.
func (s GoalStatus) IsValid() bool {
	return s == GoalActive || s == GoalCompleted || s == GoalCancelled
}

// Goal is a savings target.
type Goal struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
	Category      string          `json:"category,omitempty"`
	Status        GoalStatus      `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Progress returns the completion percentage, capped at 100.
func (g *Goal) Progress() float64 {
	if g.TargetAmount.Sign() <= 0 {
		return 0
	}
	p, _ := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	if p > 100 {
		return 100
	}
	return p
}

// Remaining returns how much is still missing to reach the target.
func (g *Goal) Remaining() decimal.Decimal {
	r := g.TargetAmount.Sub(g.CurrentAmount)
	if r.Sign() < 0 {
		return decimal.Zero
	}
	return r
}

// IsReached returns true once the current amount covers the target.
func (g *Goal) IsReached() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

// MonthlyNeeded returns the monthly saving required to hit the deadline.
// Returns nil when there is no deadline. A deadline in the past or in the
// current month requires the full remaining amount.
func (g *Goal) MonthlyNeeded(now time.Time) *decimal.Decimal {
	if g.Deadline == nil {
		return nil
	}
	months := (g.Deadline.Year()-now.Year())*12 + int(g.Deadline.Month()-now.Month())
	if months < 1 {
		months = 1
	}
	needed := g.Remaining().Div(decimal.NewFromInt(int64(months))).Round(2)
	return &needed
}

// GoalContribution is money put towards a goal.
type GoalContribution struct {
	ID        string          `json:"id"`
	GoalID    string          `json:"goal_id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
