package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/planning"
)

// RetirementStore is the storage RetirementService needs.
type RetirementStore interface {
	GetRetirementPlan(ctx context.Context, userID string) (*model.RetirementPlan, error)
	UpsertRetirementPlan(ctx context.Context, p *model.RetirementPlan) error
}

// RetirementService handles retirement planning.
type RetirementService struct {
	store RetirementStore
}

// NewRetirementService creates a new RetirementService.
func NewRetirementService(store RetirementStore) *RetirementService {
	return &RetirementService{store: store}
}

// RetirementInput defines a user's retirement assumptions.
type RetirementInput struct {
	CurrentAge           int
	RetirementAge        int
	LifeExpectancy       int
	CurrentSavings       decimal.Decimal
	MonthlyContribution  decimal.Decimal
	ExpectedReturn       decimal.Decimal
	InflationRate        decimal.Decimal
	DesiredMonthlyIncome decimal.Decimal
}

// Get returns the user's plan.
func (s *RetirementService) Get(ctx context.Context, userID string) (*model.RetirementPlan, error) {
	p, err := s.store.GetRetirementPlan(ctx, userID)
	return p, mapRepoErr(err)
}

// Upsert saves the user's plan.
func (s *RetirementService) Upsert(ctx context.Context, userID string, input RetirementInput) (*model.RetirementPlan, error) {
	ts := now()
	p := &model.RetirementPlan{
		UserID:               userID,
		CurrentAge:           input.CurrentAge,
		RetirementAge:        input.RetirementAge,
		LifeExpectancy:       input.LifeExpectancy,
		CurrentSavings:       input.CurrentSavings.Round(2),
		MonthlyContribution:  input.MonthlyContribution.Round(2),
		ExpectedReturn:       input.ExpectedReturn.Round(4),
		InflationRate:        input.InflationRate.Round(4),
		DesiredMonthlyIncome: input.DesiredMonthlyIncome.Round(2),
		CreatedAt:            ts,
		UpdatedAt:            ts,
	}
	if err := retirementErr(planning.ValidateRetirementPlan(p)); err != nil {
		return nil, err
	}
	if p.LifeExpectancy > 120 {
		return nil, invalid("life_expectancy", "must be at most 120")
	}

	if err := s.store.UpsertRetirementPlan(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Projection projects the user's saved plan.
func (s *RetirementService) Projection(ctx context.Context, userID string) (*planning.Projection, error) {
	p, err := s.store.GetRetirementPlan(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	proj, err := planning.Project(p)
	return proj, retirementErr(err)
}

func retirementErr(err error) error {
	switch {
	case errors.Is(err, planning.ErrInvalidAges):
		return invalid("retirement_age", err.Error())
	case errors.Is(err, planning.ErrInvalidPlan):
		return invalid("plan", err.Error())
	}
	return err
}
