package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentType classifies an investment.
type InvestmentType string

const (
	InvestmentStock      InvestmentType = "stock"
	InvestmentETF        InvestmentType = "etf"
	InvestmentFund       InvestmentType = "fund"
	InvestmentCrypto     InvestmentType = "crypto"
	InvestmentBond       InvestmentType = "bond"
	InvestmentRealEstate InvestmentType = "real_estate"
	InvestmentOther      InvestmentType = "other"
)

// IsValid checks if the investment type is known.
func (t InvestmentType) IsValid() bool {
	switch t {
	case InvestmentStock, InvestmentETF, InvestmentFund, InvestmentCrypto,
		InvestmentBond, InvestmentRealEstate, InvestmentOther:
		return true
	}
	return false
}

// Investment is a position held by the user.
type Investment struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Name          string          `json:"name"`
	Symbol        string          `json:"symbol,omitempty"`
	Type          InvestmentType  `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CostBasis is what was paid for the position.
func (i *Investment) CostBasis() decimal.Decimal {
	return i.Quantity.Mul(i.PurchasePrice).Round(2)
}

// MarketValue is what the position is worth at the current price.
func (i *Investment) MarketValue() decimal.Decimal {
	return i.Quantity.Mul(i.CurrentPrice).Round(2)
}

// Gain is the unrealized profit or loss.
func (i *Investment) Gain() decimal.Decimal {
	return i.MarketValue().Sub(i.CostBasis())
}

// GainPercent is the unrealized gain relative to the cost basis.
func (i *Investment) GainPercent() float64 {
	cost := i.CostBasis()
	if cost.Sign() == 0 {
		return 0
	}
	p, _ := i.Gain().Div(cost).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return p
}

// InvestmentReturn is a dated snapshot of an investment's value.
type InvestmentReturn struct {
	ID           string          `json:"id"`
	InvestmentID string          `json:"investment_id"`
	UserID       string          `json:"user_id"`
	Date         time.Time       `json:"date"`
	Value        decimal.Decimal `json:"value"`
	Note         string          `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
