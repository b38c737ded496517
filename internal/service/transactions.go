package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/metrics"
	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/recurring"
	"github.com/organizai/organizai/internal/sanitize"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 100
	recurringLookbackMonths = 12
)

// TransactionStore is the storage TransactionService needs.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *model.Transaction) error
	GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, t *model.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter model.TransactionFilter, cursor string, limit int) ([]*model.Transaction, string, error)
	ListTransactionsSince(ctx context.Context, userID string, since time.Time) ([]*model.Transaction, error)
	GetAccount(ctx context.Context, userID, id string) (*model.Account, error)
	GetCategory(ctx context.Context, userID, id string) (*model.Category, error)
	ListRules(ctx context.Context, userID string, activeOnly bool) ([]*model.CategorizationRule, error)
}

// SpendingChecker evaluates budgets after an expense is recorded.
type SpendingChecker interface {
	CheckSpending(ctx context.Context, userID, categoryID string, at time.Time) error
}

// TransactionService handles transaction business logic.
type TransactionService struct {
	store      TransactionStore
	budgets    SpendingChecker
	events     EventPublisher
	invalidate DashboardInvalidator
	metrics    metrics.Recorder
	logger     *slog.Logger
}

// NewTransactionService creates a new TransactionService. budgets, events,
// invalidate and recorder may be nil.
func NewTransactionService(
	store TransactionStore,
	budgets SpendingChecker,
	events EventPublisher,
	invalidate DashboardInvalidator,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *TransactionService {
	if events == nil {
		events = noopPublisher{}
	}
	if invalidate == nil {
		invalidate = noopInvalidator{}
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TransactionService{
		store:      store,
		budgets:    budgets,
		events:     events,
		invalidate: invalidate,
		metrics:    recorder,
		logger:     logger,
	}
}

// TransactionInput defines the fields of a transaction. On update nil
// fields keep their value; ClearCategory removes the category.
type TransactionInput struct {
	AccountID     *string
	CategoryID    *string
	ClearCategory bool
	Type          *model.FlowType
	Amount        *decimal.Decimal
	Description   *string
	Date          *time.Time
	Notes         *string
}

// ListTransactionsInput defines input for listing transactions.
type ListTransactionsInput struct {
	UserID     string
	Type       model.FlowType
	AccountID  string
	CategoryID string
	From       *time.Time
	To         *time.Time
	Search     string
	Cursor     string
	Limit      int
}

// ListTransactionsOutput is one page of transactions.
type ListTransactionsOutput struct {
	Transactions []*model.Transaction
	NextCursor   string
	HasMore      bool
}

// Create records a transaction and adjusts its account balance.
func (s *TransactionService) Create(ctx context.Context, userID string, input TransactionInput) (*model.Transaction, error) {
	if input.AccountID == nil || *input.AccountID == "" {
		return nil, invalid("account_id", "is required")
	}
	if input.Type == nil {
		return nil, invalid("type", "is required")
	}
	if input.Amount == nil {
		return nil, invalid("amount", "is required")
	}

	ts := now()
	t := &model.Transaction{
		ID:        generateULID(),
		UserID:    userID,
		Date:      dateOnly(ts),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := applyTransactionInput(t, input); err != nil {
		return nil, err
	}
	if err := s.validateRefs(ctx, t); err != nil {
		return nil, err
	}
	if t.CategoryID == nil {
		if err := s.applyRules(ctx, t); err != nil {
			return nil, err
		}
	}

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return nil, mapRepoErr(err)
	}

	s.metrics.IncTransactionCreated()
	s.events.PublishAsync(userID, model.EventTransactionCreated)
	s.afterWrite(ctx, t)
	return t, nil
}

// Get returns one transaction.
func (s *TransactionService) Get(ctx context.Context, userID, id string) (*model.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, userID, id)
	return t, mapRepoErr(err)
}

// Update changes a transaction, moving its balance effect if the amount,
// type or account changed.
func (s *TransactionService) Update(ctx context.Context, userID, id string, input TransactionInput) (*model.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := applyTransactionInput(t, input); err != nil {
		return nil, err
	}
	if err := s.validateRefs(ctx, t); err != nil {
		return nil, err
	}
	t.UpdatedAt = now()

	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return nil, mapRepoErr(err)
	}
	s.afterWrite(ctx, t)
	return t, nil
}

// Delete removes a transaction and reverts its balance effect.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return mapRepoErr(err)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return nil
}

// List returns a page of transactions, newest first.
func (s *TransactionService) List(ctx context.Context, input ListTransactionsInput) (*ListTransactionsOutput, error) {
	if input.Limit <= 0 {
		input.Limit = defaultTransactionLimit
	}
	if input.Limit > maxTransactionLimit {
		input.Limit = maxTransactionLimit
	}
	if input.Type != "" && !input.Type.IsValid() {
		return nil, invalid("type", "must be income or expense")
	}
	if input.From != nil && input.To != nil && input.To.Before(*input.From) {
		return nil, invalid("to", "must not be before from")
	}

	filter := model.TransactionFilter{
		UserID:     input.UserID,
		Type:       input.Type,
		AccountID:  input.AccountID,
		CategoryID: input.CategoryID,
		From:       input.From,
		To:         input.To,
		Search:     sanitize.Line(input.Search, maxNameLength),
	}

	txs, next, err := s.store.ListTransactions(ctx, filter, input.Cursor, input.Limit)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return &ListTransactionsOutput{
		Transactions: txs,
		NextCursor:   next,
		HasMore:      next != "",
	}, nil
}

// Recurring detects repeating transactions over the last year.
func (s *TransactionService) Recurring(ctx context.Context, userID string) ([]recurring.Series, error) {
	since := dateOnly(now()).AddDate(0, -recurringLookbackMonths, 0)
	txs, err := s.store.ListTransactionsSince(ctx, userID, since)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return recurring.Detect(txs), nil
}

// validateRefs checks the account and category belong to the user and the
// category has the transaction's type.
func (s *TransactionService) validateRefs(ctx context.Context, t *model.Transaction) error {
	if _, err := s.store.GetAccount(ctx, t.UserID, t.AccountID); err != nil {
		if errors.Is(mapRepoErr(err), ErrNotFound) {
			return invalid("account_id", "account not found")
		}
		return err
	}
	if t.CategoryID == nil {
		return nil
	}
	c, err := s.store.GetCategory(ctx, t.UserID, *t.CategoryID)
	if err != nil {
		if errors.Is(mapRepoErr(err), ErrNotFound) {
			return invalid("category_id", "category not found")
		}
		return err
	}
	if c.Type != t.Type {
		return ErrCategoryMismatch
	}
	return nil
}

// applyRules sets the category from the first matching rule whose category
// has the transaction's type.
func (s *TransactionService) applyRules(ctx context.Context, t *model.Transaction) error {
	normalized := recurring.Normalize(t.Description)
	if normalized == "" {
		return nil
	}
	rules, err := s.store.ListRules(ctx, t.UserID, true)
	if err != nil {
		return err
	}
	for _, rule := range rules {
		if !rule.Matches(normalized) {
			continue
		}
		c, err := s.store.GetCategory(ctx, t.UserID, rule.CategoryID)
		if err != nil || c.Type != t.Type {
			continue
		}
		id := c.ID
		t.CategoryID = &id
		return nil
	}
	return nil
}

func (s *TransactionService) afterWrite(ctx context.Context, t *model.Transaction) {
	_ = s.invalidate.InvalidateDashboard(ctx, t.UserID)

	if s.budgets == nil || t.Type != model.FlowExpense || t.CategoryID == nil {
		return
	}
	if err := s.budgets.CheckSpending(ctx, t.UserID, *t.CategoryID, t.Date); err != nil && s.logger != nil {
		s.logger.Warn("budget check failed",
			"user_id", t.UserID,
			"category_id", *t.CategoryID,
			"error", err,
		)
	}
}

func applyTransactionInput(t *model.Transaction, input TransactionInput) error {
	if input.AccountID != nil {
		if *input.AccountID == "" {
			return invalid("account_id", "is required")
		}
		t.AccountID = *input.AccountID
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return invalid("type", "must be income or expense")
		}
		t.Type = *input.Type
	}
	if input.Amount != nil {
		amount, err := requirePositive("amount", *input.Amount)
		if err != nil {
			return err
		}
		t.Amount = amount
	}
	if input.Description != nil {
		t.Description = sanitize.Line(*input.Description, maxDescriptionLength)
	}
	if input.Date != nil {
		t.Date = dateOnly(*input.Date)
	}
	if input.Notes != nil {
		t.Notes = sanitize.Text(*input.Notes, maxNotesLength)
	}
	switch {
	case input.ClearCategory:
		t.CategoryID = nil
	case input.CategoryID != nil && *input.CategoryID != "":
		id := *input.CategoryID
		t.CategoryID = &id
	}
	return nil
}
