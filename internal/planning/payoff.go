// Package planning runs the debt payoff and retirement simulations.
package planning

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
)

// MaxPayoffMonths caps the payoff simulation.
const MaxPayoffMonths = 600

// Strategy selects which debt receives the extra payment.
type Strategy string

const (
	// Avalanche targets the highest interest rate first.
	Avalanche Strategy = "avalanche"
	// Snowball targets the lowest balance first.
	Snowball Strategy = "snowball"
)

// IsValid checks if the strategy is known.
func (s Strategy) IsValid() bool {
	return s == Avalanche || s == Snowball
}

var (
	ErrInvalidStrategy = errors.New("strategy must be avalanche or snowball")
	ErrNegativeExtra   = errors.New("extra payment cannot be negative")
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// DebtPayoff is the simulated outcome for one debt.
type DebtPayoff struct {
	DebtID       string          `json:"debt_id"`
	Name         string          `json:"name"`
	Order        int             `json:"order"`
	PayoffMonth  int             `json:"payoff_month"` // 0 when not paid off within the cap
	PayoffDate   *time.Time      `json:"payoff_date,omitempty"`
	InterestPaid decimal.Decimal `json:"interest_paid"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
}

// PayoffPlan is the result of a payoff simulation.
type PayoffPlan struct {
	Strategy      Strategy        `json:"strategy"`
	ExtraPayment  decimal.Decimal `json:"extra_payment"`
	MonthlyBudget decimal.Decimal `json:"monthly_budget"`
	Payable       bool            `json:"payable"`
	TotalMonths   int             `json:"total_months"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	DebtFreeDate  *time.Time      `json:"debt_free_date,omitempty"`
	Debts         []DebtPayoff    `json:"debts"`
}

type simDebt struct {
	debt    *model.Debt
	balance decimal.Decimal
	rate    decimal.Decimal // monthly, as a fraction
	result  *DebtPayoff
}

// PlanPayoff simulates paying down the active debts month by month.
// Every debt gets its minimum payment; the extra amount plus the minimums
// freed by debts already paid off go to the target debt chosen by strategy.
// Debts that are not active or have no balance are ignored.
func PlanPayoff(debts []*model.Debt, strategy Strategy, extra decimal.Decimal, start time.Time) (*PayoffPlan, error) {
	if !strategy.IsValid() {
		return nil, ErrInvalidStrategy
	}
	if extra.IsNegative() {
		return nil, ErrNegativeExtra
	}

	plan := &PayoffPlan{
		Strategy:      strategy,
		ExtraPayment:  extra,
		TotalInterest: decimal.Zero,
		TotalPaid:     decimal.Zero,
		Debts:         []DebtPayoff{},
	}

	var sims []*simDebt
	budget := extra
	for _, d := range debts {
		if d.Status != model.DebtActive || d.CurrentBalance.Sign() <= 0 {
			continue
		}
		sims = append(sims, &simDebt{
			debt:    d,
			balance: d.CurrentBalance,
			rate:    d.InterestRate.Div(hundred).Div(twelve),
			result: &DebtPayoff{
				DebtID:       d.ID,
				Name:         d.Name,
				InterestPaid: decimal.Zero,
				TotalPaid:    decimal.Zero,
			},
		})
		budget = budget.Add(d.MinimumPayment)
	}
	plan.MonthlyBudget = budget

	if len(sims) == 0 {
		plan.Payable = true
		return plan, nil
	}

	order := 0
	month := 0
	for month < MaxPayoffMonths && hasBalance(sims) {
		month++
		remaining := budget

		for _, s := range sims {
			if s.balance.Sign() <= 0 {
				continue
			}
			interest := s.balance.Mul(s.rate).Round(2)
			s.balance = s.balance.Add(interest)
			s.result.InterestPaid = s.result.InterestPaid.Add(interest)
			plan.TotalInterest = plan.TotalInterest.Add(interest)
		}

		for _, s := range sims {
			if s.balance.Sign() <= 0 {
				continue
			}
			pay := decimal.Min(s.debt.MinimumPayment, s.balance, remaining)
			s.pay(pay)
			remaining = remaining.Sub(pay)
		}

		for _, s := range targetOrder(sims, strategy) {
			if remaining.Sign() <= 0 {
				break
			}
			pay := decimal.Min(s.balance, remaining)
			s.pay(pay)
			remaining = remaining.Sub(pay)
		}

		for _, s := range sims {
			if s.balance.Sign() <= 0 && s.result.PayoffMonth == 0 {
				order++
				s.result.Order = order
				s.result.PayoffMonth = month
				date := addMonths(start, month)
				s.result.PayoffDate = &date
			}
		}
	}

	plan.Payable = !hasBalance(sims)
	for _, s := range sims {
		plan.TotalPaid = plan.TotalPaid.Add(s.result.TotalPaid)
		plan.Debts = append(plan.Debts, *s.result)
	}
	if plan.Payable {
		plan.TotalMonths = month
		date := addMonths(start, month)
		plan.DebtFreeDate = &date
	}

	sort.SliceStable(plan.Debts, func(i, j int) bool {
		a, b := plan.Debts[i], plan.Debts[j]
		if (a.Order == 0) != (b.Order == 0) {
			return a.Order != 0
		}
		return a.Order < b.Order
	})
	return plan, nil
}

func (s *simDebt) pay(amount decimal.Decimal) {
	if amount.Sign() <= 0 {
		return
	}
	s.balance = s.balance.Sub(amount)
	s.result.TotalPaid = s.result.TotalPaid.Add(amount)
}

func hasBalance(sims []*simDebt) bool {
	for _, s := range sims {
		if s.balance.Sign() > 0 {
			return true
		}
	}
	return false
}

// targetOrder returns the debts with a balance in the order the strategy
// pays them.
func targetOrder(sims []*simDebt, strategy Strategy) []*simDebt {
	open := make([]*simDebt, 0, len(sims))
	for _, s := range sims {
		if s.balance.Sign() > 0 {
			open = append(open, s)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		a, b := open[i], open[j]
		if strategy == Avalanche {
			if c := a.debt.InterestRate.Cmp(b.debt.InterestRate); c != 0 {
				return c > 0
			}
			if c := a.balance.Cmp(b.balance); c != 0 {
				return c < 0
			}
		} else {
			if c := a.balance.Cmp(b.balance); c != 0 {
				return c < 0
			}
			if c := a.debt.InterestRate.Cmp(b.debt.InterestRate); c != 0 {
				return c > 0
			}
		}
		return a.debt.ID < b.debt.ID
	})
	return open
}

func addMonths(t time.Time, n int) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
}
