package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dividend is a payout received from a holding.
type Dividend struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	InvestmentID *string         `json:"investment_id,omitempty"`
	Symbol       string          `json:"symbol"`
	Amount       decimal.Decimal `json:"amount"`
	PaymentDate  time.Time       `json:"payment_date"`
	Reinvested   bool            `json:"reinvested"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
