package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/sanitize"
)

// InvestmentStore is the storage InvestmentService needs.
type InvestmentStore interface {
	CreateInvestment(ctx context.Context, inv *model.Investment) error
	GetInvestment(ctx context.Context, userID, id string) (*model.Investment, error)
	ListInvestments(ctx context.Context, userID string) ([]*model.Investment, error)
	UpdateInvestment(ctx context.Context, inv *model.Investment) error
	DeleteInvestment(ctx context.Context, userID, id string) error
	AddInvestmentReturn(ctx context.Context, ret *model.InvestmentReturn) error
	ListInvestmentReturns(ctx context.Context, userID, investmentID string) ([]*model.InvestmentReturn, error)
}

// InvestmentService handles portfolio business logic.
type InvestmentService struct {
	store      InvestmentStore
	events     EventPublisher
	invalidate DashboardInvalidator
}

// NewInvestmentService creates a new InvestmentService.
func NewInvestmentService(store InvestmentStore, events EventPublisher, invalidate DashboardInvalidator) *InvestmentService {
	if events == nil {
		events = noopPublisher{}
	}
	if invalidate == nil {
		invalidate = noopInvalidator{}
	}
	return &InvestmentService{store: store, events: events, invalidate: invalidate}
}

// InvestmentInput defines the fields of an investment.
type InvestmentInput struct {
	Name          *string
	Symbol        *string
	Type          *model.InvestmentType
	Quantity      *decimal.Decimal
	PurchasePrice *decimal.Decimal
	CurrentPrice  *decimal.Decimal
	PurchaseDate  *time.Time
}

// ReturnInput defines a value snapshot.
type ReturnInput struct {
	Date  *time.Time
	Value decimal.Decimal
	Note  string
}

// TypeTotals aggregates the positions of one investment type.
type TypeTotals struct {
	Type        model.InvestmentType `json:"type"`
	Count       int                  `json:"count"`
	CostBasis   decimal.Decimal      `json:"cost_basis"`
	MarketValue decimal.Decimal      `json:"market_value"`
	Gain        decimal.Decimal      `json:"gain"`
	Allocation  float64              `json:"allocation_pct"`
}

// PortfolioSummary aggregates all positions of a user.
type PortfolioSummary struct {
	CostBasis   decimal.Decimal `json:"cost_basis"`
	MarketValue decimal.Decimal `json:"market_value"`
	Gain        decimal.Decimal `json:"gain"`
	GainPercent float64         `json:"gain_pct"`
	ByType      []TypeTotals    `json:"by_type"`
}

// List returns the user's investments.
func (s *InvestmentService) List(ctx context.Context, userID string) ([]*model.Investment, error) {
	return s.store.ListInvestments(ctx, userID)
}

// Get returns one investment.
func (s *InvestmentService) Get(ctx context.Context, userID, id string) (*model.Investment, error) {
	inv, err := s.store.GetInvestment(ctx, userID, id)
	return inv, mapRepoErr(err)
}

// Create adds an investment. The current price defaults to the purchase
// price.
func (s *InvestmentService) Create(ctx context.Context, userID string, input InvestmentInput) (*model.Investment, error) {
	if input.Name == nil {
		return nil, invalid("name", "is required")
	}
	if input.Quantity == nil {
		return nil, invalid("quantity", "is required")
	}
	if input.PurchasePrice == nil {
		return nil, invalid("purchase_price", "is required")
	}
	if input.CurrentPrice == nil {
		input.CurrentPrice = input.PurchasePrice
	}
	ts := now()
	inv := &model.Investment{
		ID:           generateULID(),
		UserID:       userID,
		Type:         model.InvestmentStock,
		PurchaseDate: dateOnly(ts),
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if err := applyInvestmentInput(inv, input); err != nil {
		return nil, err
	}

	if err := s.store.CreateInvestment(ctx, inv); err != nil {
		return nil, err
	}
	s.events.PublishAsync(userID, model.EventInvestmentCreated)
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return inv, nil
}

// Update changes an investment.
func (s *InvestmentService) Update(ctx context.Context, userID, id string, input InvestmentInput) (*model.Investment, error) {
	inv, err := s.store.GetInvestment(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := applyInvestmentInput(inv, input); err != nil {
		return nil, err
	}
	inv.UpdatedAt = now()

	if err := s.store.UpdateInvestment(ctx, inv); err != nil {
		return nil, mapRepoErr(err)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return inv, nil
}

// Delete removes an investment and its snapshots.
func (s *InvestmentService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteInvestment(ctx, userID, id); err != nil {
		return mapRepoErr(err)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return nil
}

// AddReturn records a market value snapshot.
func (s *InvestmentService) AddReturn(ctx context.Context, userID, investmentID string, input ReturnInput) (*model.InvestmentReturn, error) {
	value, err := requireNonNegative("value", input.Value)
	if err != nil {
		return nil, err
	}
	ts := now()
	ret := &model.InvestmentReturn{
		ID:           generateULID(),
		InvestmentID: investmentID,
		UserID:       userID,
		Date:         dateOnly(ts),
		Value:        value,
		Note:         sanitize.Line(input.Note, maxDescriptionLength),
		CreatedAt:    ts,
	}
	if input.Date != nil {
		ret.Date = dateOnly(*input.Date)
	}
	if err := s.store.AddInvestmentReturn(ctx, ret); err != nil {
		return nil, mapRepoErr(err)
	}
	return ret, nil
}

// ListReturns returns an investment's snapshots.
func (s *InvestmentService) ListReturns(ctx context.Context, userID, investmentID string) ([]*model.InvestmentReturn, error) {
	if _, err := s.store.GetInvestment(ctx, userID, investmentID); err != nil {
		return nil, mapRepoErr(err)
	}
	return s.store.ListInvestmentReturns(ctx, userID, investmentID)
}

// Summary totals the portfolio overall and by type.
func (s *InvestmentService) Summary(ctx context.Context, userID string) (*PortfolioSummary, error) {
	investments, err := s.store.ListInvestments(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summarize(investments), nil
}

func summarize(investments []*model.Investment) *PortfolioSummary {
	summary := &PortfolioSummary{ByType: []TypeTotals{}}
	byType := map[model.InvestmentType]*TypeTotals{}
	var order []model.InvestmentType

	for _, inv := range investments {
		t, ok := byType[inv.Type]
		if !ok {
			t = &TypeTotals{Type: inv.Type}
			byType[inv.Type] = t
			order = append(order, inv.Type)
		}
		t.Count++
		t.CostBasis = t.CostBasis.Add(inv.CostBasis())
		t.MarketValue = t.MarketValue.Add(inv.MarketValue())
		summary.CostBasis = summary.CostBasis.Add(inv.CostBasis())
		summary.MarketValue = summary.MarketValue.Add(inv.MarketValue())
	}
	summary.Gain = summary.MarketValue.Sub(summary.CostBasis)
	summary.GainPercent = percentOf(summary.Gain, summary.CostBasis)

	for _, typ := range order {
		t := byType[typ]
		t.Gain = t.MarketValue.Sub(t.CostBasis)
		t.Allocation = percentOf(t.MarketValue, summary.MarketValue)
		summary.ByType = append(summary.ByType, *t)
	}
	return summary
}

// percentOf returns part/whole as a percentage with two decimals.
func percentOf(part, whole decimal.Decimal) float64 {
	if whole.Sign() == 0 {
		return 0
	}
	p, _ := part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return p
}

func applyInvestmentInput(inv *model.Investment, input InvestmentInput) error {
	if input.Name != nil {
		name, err := requireName("name", sanitize.Line(*input.Name, maxNameLength))
		if err != nil {
			return err
		}
		inv.Name = name
	}
	if input.Symbol != nil {
		inv.Symbol = strings.ToUpper(sanitize.Line(*input.Symbol, 20))
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return invalid("type", "is not a valid investment type")
		}
		inv.Type = *input.Type
	}
	if input.Quantity != nil {
		if input.Quantity.Sign() <= 0 {
			return invalid("quantity", "must be greater than zero")
		}
		inv.Quantity = input.Quantity.Round(8)
	}
	if input.PurchasePrice != nil {
		if input.PurchasePrice.IsNegative() {
			return invalid("purchase_price", "cannot be negative")
		}
		inv.PurchasePrice = input.PurchasePrice.Round(2)
	}
	if input.CurrentPrice != nil {
		if input.CurrentPrice.IsNegative() {
			return invalid("current_price", "cannot be negative")
		}
		inv.CurrentPrice = input.CurrentPrice.Round(2)
	}
	if input.PurchaseDate != nil {
		inv.PurchaseDate = dateOnly(*input.PurchaseDate)
	}
	return nil
}
