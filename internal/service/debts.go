package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/planning"
	"github.com/organizai/organizai/internal/repository"
	"github.com/organizai/organizai/internal/sanitize"
)

// DebtStore is the storage DebtService needs.
type DebtStore interface {
	CreateDebt(ctx context.Context, d *model.Debt) error
	GetDebt(ctx context.Context, userID, id string) (*model.Debt, error)
	ListDebts(ctx context.Context, userID string, status model.DebtStatus) ([]*model.Debt, error)
	UpdateDebt(ctx context.Context, d *model.Debt) error
	DeleteDebt(ctx context.Context, userID, id string) error
	AddDebtPayment(ctx context.Context, p *model.DebtPayment) (*model.Debt, bool, error)
	ListDebtPayments(ctx context.Context, userID, debtID string) ([]*model.DebtPayment, error)
}

// DebtService handles debt business logic.
type DebtService struct {
	store      DebtStore
	events     EventPublisher
	invalidate DashboardInvalidator
}

// NewDebtService creates a new DebtService.
func NewDebtService(store DebtStore, events EventPublisher, invalidate DashboardInvalidator) *DebtService {
	if events == nil {
		events = noopPublisher{}
	}
	if invalidate == nil {
		invalidate = noopInvalidator{}
	}
	return &DebtService{store: store, events: events, invalidate: invalidate}
}

// DebtInput defines the fields of a debt.
type DebtInput struct {
	Name           *string
	Type           *model.DebtType
	OriginalAmount *decimal.Decimal
	CurrentBalance *decimal.Decimal
	InterestRate   *decimal.Decimal
	MinimumPayment *decimal.Decimal
	DueDay         *int
	ClearDueDay    bool
}

// PaymentInput defines a payment against a debt.
type PaymentInput struct {
	Amount decimal.Decimal
	Date   *time.Time
	Note   string
}

// List returns the user's debts, optionally with one status.
func (s *DebtService) List(ctx context.Context, userID string, status model.DebtStatus) ([]*model.Debt, error) {
	if status != "" && status != model.DebtActive && status != model.DebtPaidOff {
		return nil, invalid("status", "must be active or paid_off")
	}
	return s.store.ListDebts(ctx, userID, status)
}

// Get returns one debt.
func (s *DebtService) Get(ctx context.Context, userID, id string) (*model.Debt, error) {
	d, err := s.store.GetDebt(ctx, userID, id)
	return d, mapRepoErr(err)
}

// Create adds a debt. The current balance defaults to the original amount.
func (s *DebtService) Create(ctx context.Context, userID string, input DebtInput) (*model.Debt, error) {
	if input.Name == nil {
		return nil, invalid("name", "is required")
	}
	if input.OriginalAmount == nil {
		return nil, invalid("original_amount", "is required")
	}
	ts := now()
	d := &model.Debt{
		ID:        generateULID(),
		UserID:    userID,
		Type:      model.DebtOther,
		Status:    model.DebtActive,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if input.CurrentBalance == nil {
		input.CurrentBalance = input.OriginalAmount
	}
	if err := applyDebtInput(d, input); err != nil {
		return nil, err
	}
	if d.CurrentBalance.IsZero() {
		d.Status = model.DebtPaidOff
	}

	if err := s.store.CreateDebt(ctx, d); err != nil {
		return nil, err
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return d, nil
}

// Update changes a debt. Setting a positive balance on a paid off debt
// reactivates it.
func (s *DebtService) Update(ctx context.Context, userID, id string, input DebtInput) (*model.Debt, error) {
	d, err := s.store.GetDebt(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := applyDebtInput(d, input); err != nil {
		return nil, err
	}
	if d.CurrentBalance.IsZero() {
		d.Status = model.DebtPaidOff
	} else {
		d.Status = model.DebtActive
	}
	d.UpdatedAt = now()

	if err := s.store.UpdateDebt(ctx, d); err != nil {
		return nil, mapRepoErr(err)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return d, nil
}

// Delete removes a debt and its payments.
func (s *DebtService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteDebt(ctx, userID, id); err != nil {
		return mapRepoErr(err)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return nil
}

// AddPayment reduces an active debt's balance.
func (s *DebtService) AddPayment(ctx context.Context, userID, debtID string, input PaymentInput) (*model.Debt, error) {
	amount, err := requirePositive("amount", input.Amount)
	if err != nil {
		return nil, err
	}
	ts := now()
	p := &model.DebtPayment{
		ID:        generateULID(),
		DebtID:    debtID,
		UserID:    userID,
		Amount:    amount,
		Date:      dateOnly(ts),
		Note:      sanitize.Line(input.Note, maxDescriptionLength),
		CreatedAt: ts,
	}
	if input.Date != nil {
		p.Date = dateOnly(*input.Date)
	}

	d, paidOff, err := s.store.AddDebtPayment(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotActive) {
			return nil, ErrDebtNotActive
		}
		return nil, mapRepoErr(err)
	}

	s.events.PublishAsync(userID, model.EventDebtPayment)
	if paidOff {
		s.events.PublishAsync(userID, model.EventDebtPaidOff)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return d, nil
}

// ListPayments returns a debt's payments.
func (s *DebtService) ListPayments(ctx context.Context, userID, debtID string) ([]*model.DebtPayment, error) {
	if _, err := s.store.GetDebt(ctx, userID, debtID); err != nil {
		return nil, mapRepoErr(err)
	}
	return s.store.ListDebtPayments(ctx, userID, debtID)
}

// PayoffPlan simulates paying off the user's active debts.
func (s *DebtService) PayoffPlan(ctx context.Context, userID string, strategy planning.Strategy, extra decimal.Decimal) (*planning.PayoffPlan, error) {
	if strategy == "" {
		strategy = planning.Avalanche
	}
	if !strategy.IsValid() {
		return nil, invalid("strategy", "must be avalanche or snowball")
	}
	if extra.IsNegative() {
		return nil, invalid("extra_payment", "cannot be negative")
	}

	debts, err := s.store.ListDebts(ctx, userID, model.DebtActive)
	if err != nil {
		return nil, err
	}
	return planning.PlanPayoff(debts, strategy, extra.Round(2), dateOnly(now()))
}

func applyDebtInput(d *model.Debt, input DebtInput) error {
	if input.Name != nil {
		name, err := requireName("name", sanitize.Line(*input.Name, maxNameLength))
		if err != nil {
			return err
		}
		d.Name = name
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return invalid("type", "is not a valid debt type")
		}
		d.Type = *input.Type
	}
	if input.OriginalAmount != nil {
		v, err := requirePositive("original_amount", *input.OriginalAmount)
		if err != nil {
			return err
		}
		d.OriginalAmount = v
	}
	if input.CurrentBalance != nil {
		v, err := requireNonNegative("current_balance", *input.CurrentBalance)
		if err != nil {
			return err
		}
		d.CurrentBalance = v
	}
	if input.InterestRate != nil {
		if input.InterestRate.IsNegative() {
			return invalid("interest_rate", "cannot be negative")
		}
		d.InterestRate = input.InterestRate.Round(4)
	}
	if input.MinimumPayment != nil {
		v, err := requireNonNegative("minimum_payment", *input.MinimumPayment)
		if err != nil {
			return err
		}
		d.MinimumPayment = v
	}
	switch {
	case input.ClearDueDay:
		d.DueDay = nil
	case input.DueDay != nil:
		if *input.DueDay < 1 || *input.DueDay > 31 {
			return invalid("due_day", "must be between 1 and 31")
		}
		day := *input.DueDay
		d.DueDay = &day
	}
	return nil
}
