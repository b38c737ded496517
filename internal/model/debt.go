package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtType classifies a debt.
type DebtType string

const (
	DebtCreditCard   DebtType = "credit_card"
	DebtPersonalLoan DebtType = "personal_loan"
	DebtMortgage     DebtType = "mortgage"
	DebtStudentLoan  DebtType = "student_loan"
	DebtCarLoan      DebtType = "car_loan"
	DebtOther        DebtType = "other"
)

// IsValid checks if the debt type is known.
func (t DebtType) IsValid() bool {
	switch t {
	case DebtCreditCard, DebtPersonalLoan, DebtMortgage, DebtStudentLoan, DebtCarLoan, DebtOther:
		return true
	}
	return false
}

// DebtStatus represents whether a debt is still being paid.
type DebtStatus string

const (
	DebtActive  DebtStatus = "active"
	DebtPaidOff DebtStatus = "paid_off"
)

// Debt is money the user owes.
// InterestRate is an annual percentage.
type Debt struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Name           string          `json:"name"`
	Type           DebtType        `json:"type"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MinimumPayment decimal.Decimal `json:"minimum_payment"`
	DueDay         *int            `json:"due_day,omitempty"`
	Status         DebtStatus      `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// PaidPercent returns how much of the original amount has been paid off.
func (d *Debt) PaidPercent() float64 {
	if d.OriginalAmount.Sign() <= 0 {
		return 0
	}
	paid := d.OriginalAmount.Sub(d.CurrentBalance)
	p, _ := paid.Div(d.OriginalAmount).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	if p < 0 {
		return 0
	}
	return p
}

// DebtPayment is a payment made against a debt.
type DebtPayment struct {
	ID        string          `json:"id"`
	DebtID    string          `json:"debt_id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
