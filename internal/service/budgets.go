package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/repository"
)

// BudgetStore is the storage BudgetService needs.
type BudgetStore interface {
	CreateBudget(ctx context.Context, b *model.Budget) error
	GetBudget(ctx context.Context, userID, id string) (*model.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]*model.Budget, error)
	ListBudgetsByCategory(ctx context.Context, userID, categoryID string) ([]*model.Budget, error)
	UpdateBudget(ctx context.Context, b *model.Budget) error
	DeleteBudget(ctx context.Context, userID, id string) error
	GetCategory(ctx context.Context, userID, id string) (*model.Category, error)
	ListCategories(ctx context.Context, userID string, flow model.FlowType) ([]*model.Category, error)
	SumExpensesByCategory(ctx context.Context, userID, categoryID string, from, to time.Time) (decimal.Decimal, error)
	CreateAlert(ctx context.Context, a *model.Alert) error
}

// AlertClaimer deduplicates budget alerts per budget, kind and window.
type AlertClaimer interface {
	ClaimBudgetAlert(ctx context.Context, budgetID, kind string, windowStart, windowEnd time.Time) (bool, error)
}

// BudgetService handles budget business logic.
type BudgetService struct {
	store      BudgetStore
	claims     AlertClaimer
	events     EventPublisher
	invalidate DashboardInvalidator
	logger     *slog.Logger
	clock      func() time.Time
}

// NewBudgetService creates a new BudgetService. A nil claimer raises an
// alert every time a threshold is crossed.
func NewBudgetService(store BudgetStore, claims AlertClaimer, events EventPublisher, invalidate DashboardInvalidator, logger *slog.Logger) *BudgetService {
	if events == nil {
		events = noopPublisher{}
	}
	if invalidate == nil {
		invalidate = noopInvalidator{}
	}
	return &BudgetService{
		store:      store,
		claims:     claims,
		events:     events,
		invalidate: invalidate,
		logger:     logger,
		clock:      now,
	}
}

// BudgetInput defines the fields of a budget.
type BudgetInput struct {
	CategoryID     *string
	Amount         *decimal.Decimal
	Period         *model.BudgetPeriod
	AlertThreshold *int
}

// List returns the user's budgets.
func (s *BudgetService) List(ctx context.Context, userID string) ([]*model.Budget, error) {
	return s.store.ListBudgets(ctx, userID)
}

// Get returns one budget.
func (s *BudgetService) Get(ctx context.Context, userID, id string) (*model.Budget, error) {
	b, err := s.store.GetBudget(ctx, userID, id)
	return b, mapRepoErr(err)
}

// Create adds a budget for an expense category.
func (s *BudgetService) Create(ctx context.Context, userID string, input BudgetInput) (*model.Budget, error) {
	if input.CategoryID == nil {
		return nil, invalid("category_id", "is required")
	}
	if input.Amount == nil {
		return nil, invalid("amount", "is required")
	}
	ts := s.clock()
	b := &model.Budget{
		ID:             generateULID(),
		UserID:         userID,
		Period:         model.PeriodMonthly,
		AlertThreshold: model.DefaultAlertThreshold,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	if err := s.apply(ctx, b, input); err != nil {
		return nil, err
	}

	if err := s.store.CreateBudget(ctx, b); err != nil {
		return nil, budgetErr(err)
	}
	s.events.PublishAsync(userID, model.EventBudgetCreated)
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return b, nil
}

// Update changes a budget.
func (s *BudgetService) Update(ctx context.Context, userID, id string, input BudgetInput) (*model.Budget, error) {
	b, err := s.store.GetBudget(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := s.apply(ctx, b, input); err != nil {
		return nil, err
	}
	b.UpdatedAt = s.clock()

	if err := s.store.UpdateBudget(ctx, b); err != nil {
		return nil, budgetErr(err)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return b, nil
}

// Delete removes a budget.
func (s *BudgetService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteBudget(ctx, userID, id); err != nil {
		return mapRepoErr(err)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return nil
}

// Status evaluates every budget of the user against its current window.
func (s *BudgetService) Status(ctx context.Context, userID string) ([]*model.BudgetStatus, error) {
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories(ctx, userID, model.FlowExpense)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	statuses := make([]*model.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		st, err := s.evaluate(ctx, b, s.clock())
		if err != nil {
			return nil, err
		}
		st.CategoryName = names[b.CategoryID]
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// CheckSpending raises warning or exceeded alerts for the budgets of a
// category once per window. Spending dated outside the current window is
// ignored.
func (s *BudgetService) CheckSpending(ctx context.Context, userID, categoryID string, at time.Time) error {
	budgets, err := s.store.ListBudgetsByCategory(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	current := s.clock()

	var errs []error
	for _, b := range budgets {
		start, end := b.Period.Window(current)
		if at.Before(start) || !at.Before(end) {
			continue
		}
		st, err := s.evaluate(ctx, b, current)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if st.State == model.BudgetOK {
			continue
		}
		if err := s.raise(ctx, b, st, categoryID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *BudgetService) evaluate(ctx context.Context, b *model.Budget, at time.Time) (*model.BudgetStatus, error) {
	start, end := b.Period.Window(at)
	spent, err := s.store.SumExpensesByCategory(ctx, b.UserID, b.CategoryID, start, end)
	if err != nil {
		return nil, err
	}
	percent, state := b.Evaluate(spent)
	return &model.BudgetStatus{
		Budget:      b,
		Spent:       spent,
		Remaining:   b.Amount.Sub(spent),
		PercentUsed: percent,
		State:       state,
		WindowStart: start,
		WindowEnd:   end,
	}, nil
}

func (s *BudgetService) raise(ctx context.Context, b *model.Budget, st *model.BudgetStatus, categoryID string) error {
	alertType := model.AlertBudgetWarning
	if st.State == model.BudgetExceeded {
		alertType = model.AlertBudgetExceeded
	}

	if s.claims != nil {
		first, err := s.claims.ClaimBudgetAlert(ctx, b.ID, string(alertType), st.WindowStart, st.WindowEnd)
		if err != nil {
			return err
		}
		if !first {
			return nil
		}
	}

	name := "a category"
	if c, err := s.store.GetCategory(ctx, b.UserID, categoryID); err == nil {
		name = c.Name
	}

	alert := &model.Alert{
		ID:        generateULID(),
		UserID:    b.UserID,
		Type:      alertType,
		CreatedAt: s.clock(),
	}
	if alertType == model.AlertBudgetExceeded {
		alert.Title = "Budget exceeded"
		alert.Message = fmt.Sprintf("You spent %s of your %s %s budget for %s.",
			st.Spent.StringFixed(2), b.Amount.StringFixed(2), b.Period, name)
	} else {
		alert.Title = "Budget warning"
		alert.Message = fmt.Sprintf("You used %.0f%% of your %s budget for %s.",
			st.PercentUsed, b.Period, name)
	}

	if err := s.store.CreateAlert(ctx, alert); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("budget alert raised",
			"user_id", b.UserID,
			"budget_id", b.ID,
			"type", alertType,
		)
	}
	return nil
}

func (s *BudgetService) apply(ctx context.Context, b *model.Budget, input BudgetInput) error {
	if input.CategoryID != nil {
		c, err := s.store.GetCategory(ctx, b.UserID, *input.CategoryID)
		if err != nil {
			if errors.Is(mapRepoErr(err), ErrNotFound) {
				return invalid("category_id", "category not found")
			}
			return err
		}
		if c.Type != model.FlowExpense {
			return invalid("category_id", "must be an expense category")
		}
		b.CategoryID = c.ID
	}
	if input.Amount != nil {
		amount, err := requirePositive("amount", *input.Amount)
		if err != nil {
			return err
		}
		b.Amount = amount
	}
	if input.Period != nil {
		if !input.Period.IsValid() {
			return invalid("period", "must be weekly, monthly or yearly")
		}
		b.Period = *input.Period
	}
	if input.AlertThreshold != nil {
		if *input.AlertThreshold < 1 || *input.AlertThreshold > 100 {
			return invalid("alert_threshold", "must be between 1 and 100")
		}
		b.AlertThreshold = *input.AlertThreshold
	}
	return nil
}

func budgetErr(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrDuplicateBudget
	}
	return mapRepoErr(err)
}
