package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single movement of money on an account.
// Amount is always positive; Type decides the sign of the balance effect.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	AccountID   string          `json:"account_id"`
	CategoryID  *string         `json:"category_id,omitempty"`
	Type        FlowType        `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BalanceEffect returns the signed change this transaction applies to its account.
func (t *Transaction) BalanceEffect() decimal.Decimal {
	if t.Type == FlowExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	UserID     string
	Type       FlowType
	AccountID  string
	CategoryID string
	From       *time.Time
	To         *time.Time
	Search     string
}

// CategorySpend is the total spent on one category over a window.
type CategorySpend struct {
	CategoryID *string         `json:"category_id,omitempty"`
	Name       string          `json:"name"`
	Color      string          `json:"color,omitempty"`
	Total      decimal.Decimal `json:"total"`
}
