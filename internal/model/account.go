package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies where money is held.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCreditCard AccountType = "credit_card"
	AccountCash       AccountType = "cash"
	AccountInvestment AccountType = "investment"
	AccountOther      AccountType = "other"
)

// IsValid checks if the account type is known.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountCreditCard, AccountCash, AccountInvestment, AccountOther:
		return true
	}
	return false
}

// Account is a place where a user's money lives.
// Balance may go negative (credit cards, overdraft).
type Account struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
