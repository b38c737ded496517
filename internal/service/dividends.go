package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/sanitize"
)

// DividendStore is the storage DividendService needs.
type DividendStore interface {
	CreateDividend(ctx context.Context, d *model.Dividend) error
	GetDividend(ctx context.Context, userID, id string) (*model.Dividend, error)
	ListDividends(ctx context.Context, userID string, year int) ([]*model.Dividend, error)
	UpdateDividend(ctx context.Context, d *model.Dividend) error
	DeleteDividend(ctx context.Context, userID, id string) error
	GetInvestment(ctx context.Context, userID, id string) (*model.Investment, error)
}

// DividendService handles dividend business logic.
type DividendService struct {
	store DividendStore
}

// NewDividendService creates a new DividendService.
func NewDividendService(store DividendStore) *DividendService {
	return &DividendService{store: store}
}

// DividendInput defines the fields of a dividend.
type DividendInput struct {
	InvestmentID    *string
	ClearInvestment bool
	Symbol          *string
	Amount          *decimal.Decimal
	PaymentDate     *time.Time
	Reinvested      *bool
}

// PeriodTotal is the dividend income of a year or month.
type PeriodTotal struct {
	Period string          `json:"period"`
	Total  decimal.Decimal `json:"total"`
}

// SymbolTotal is the dividend income of one symbol.
type SymbolTotal struct {
	Symbol string          `json:"symbol"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// DividendSummary aggregates dividend income.
type DividendSummary struct {
	Year       int             `json:"year"`
	YearTotal  decimal.Decimal `json:"year_total"`
	Reinvested decimal.Decimal `json:"reinvested"`
	ByYear     []PeriodTotal   `json:"by_year"`
	ByMonth    []PeriodTotal   `json:"by_month"`
	BySymbol   []SymbolTotal   `json:"by_symbol"`
}

// List returns the user's dividends, for one year when year > 0.
func (s *DividendService) List(ctx context.Context, userID string, year int) ([]*model.Dividend, error) {
	if year < 0 {
		return nil, invalid("year", "must be positive")
	}
	return s.store.ListDividends(ctx, userID, year)
}

// Create records a dividend.
func (s *DividendService) Create(ctx context.Context, userID string, input DividendInput) (*model.Dividend, error) {
	if input.Amount == nil {
		return nil, invalid("amount", "is required")
	}
	ts := now()
	d := &model.Dividend{
		ID:          generateULID(),
		UserID:      userID,
		PaymentDate: dateOnly(ts),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := s.apply(ctx, d, input); err != nil {
		return nil, err
	}
	if d.Symbol == "" {
		return nil, invalid("symbol", "is required")
	}

	if err := s.store.CreateDividend(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update changes a dividend.
func (s *DividendService) Update(ctx context.Context, userID, id string, input DividendInput) (*model.Dividend, error) {
	d, err := s.store.GetDividend(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := s.apply(ctx, d, input); err != nil {
		return nil, err
	}
	if d.Symbol == "" {
		return nil, invalid("symbol", "is required")
	}
	d.UpdatedAt = now()

	if err := s.store.UpdateDividend(ctx, d); err != nil {
		return nil, mapRepoErr(err)
	}
	return d, nil
}

// Delete removes a dividend.
func (s *DividendService) Delete(ctx context.Context, userID, id string) error {
	return mapRepoErr(s.store.DeleteDividend(ctx, userID, id))
}

// Summary totals dividends by year, by month of year and by symbol within
// year. A zero year means the current one.
func (s *DividendService) Summary(ctx context.Context, userID string, year int) (*DividendSummary, error) {
	if year <= 0 {
		year = now().Year()
	}
	all, err := s.store.ListDividends(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return summarizeDividends(all, year), nil
}

func summarizeDividends(all []*model.Dividend, year int) *DividendSummary {
	summary := &DividendSummary{
		Year:     year,
		ByYear:   []PeriodTotal{},
		ByMonth:  make([]PeriodTotal, 12),
		BySymbol: []SymbolTotal{},
	}
	for m := range summary.ByMonth {
		summary.ByMonth[m].Period = time.Date(year, time.Month(m+1), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
	}

	years := map[int]decimal.Decimal{}
	symbols := map[string]*SymbolTotal{}
	for _, d := range all {
		y := d.PaymentDate.Year()
		years[y] = years[y].Add(d.Amount)
		if y != year {
			continue
		}

		summary.YearTotal = summary.YearTotal.Add(d.Amount)
		if d.Reinvested {
			summary.Reinvested = summary.Reinvested.Add(d.Amount)
		}
		m := int(d.PaymentDate.Month()) - 1
		summary.ByMonth[m].Total = summary.ByMonth[m].Total.Add(d.Amount)

		st, ok := symbols[d.Symbol]
		if !ok {
			st = &SymbolTotal{Symbol: d.Symbol}
			symbols[d.Symbol] = st
		}
		st.Count++
		st.Total = st.Total.Add(d.Amount)
	}

	for y, total := range years {
		summary.ByYear = append(summary.ByYear, PeriodTotal{Period: strconv.Itoa(y), Total: total})
	}
	sort.Slice(summary.ByYear, func(i, j int) bool {
		return summary.ByYear[i].Period < summary.ByYear[j].Period
	})

	for _, st := range symbols {
		summary.BySymbol = append(summary.BySymbol, *st)
	}
	sort.Slice(summary.BySymbol, func(i, j int) bool {
		if c := summary.BySymbol[i].Total.Cmp(summary.BySymbol[j].Total); c != 0 {
			return c > 0
		}
		return summary.BySymbol[i].Symbol < summary.BySymbol[j].Symbol
	})
	return summary
}

func (s *DividendService) apply(ctx context.Context, d *model.Dividend, input DividendInput) error {
	switch {
	case input.ClearInvestment:
		d.InvestmentID = nil
	case input.InvestmentID != nil && *input.InvestmentID != "":
		inv, err := s.store.GetInvestment(ctx, d.UserID, *input.InvestmentID)
		if err != nil {
			if errors.Is(mapRepoErr(err), ErrNotFound) {
				return invalid("investment_id", "investment not found")
			}
			return err
		}
		id := inv.ID
		d.InvestmentID = &id
		if input.Symbol == nil && d.Symbol == "" {
			d.Symbol = inv.Symbol
		}
	}
	if input.Symbol != nil {
		d.Symbol = strings.ToUpper(sanitize.Line(*input.Symbol, 20))
	}
	if input.Amount != nil {
		amount, err := requirePositive("amount", *input.Amount)
		if err != nil {
			return err
		}
		d.Amount = amount
	}
	if input.PaymentDate != nil {
		d.PaymentDate = dateOnly(*input.PaymentDate)
	}
	if input.Reinvested != nil {
		d.Reinvested = *input.Reinvested
	}
	return nil
}
