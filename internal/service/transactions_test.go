package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/metrics"
	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/repository"
)

type fakeLedger struct {
	accounts   map[string]*model.Account
	categories map[string]*model.Category
	rules      []*model.CategorizationRule
	created    []*model.Transaction
	listLimit  int
	history    []*model.Transaction
	historyErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		accounts: map[string]*model.Account{
			"acc-1": {ID: "acc-1", UserID: "user-1"},
			"acc-2": {ID: "acc-2", UserID: "user-2"},
		},
		categories: map[string]*model.Category{
			"food":   {ID: "food", UserID: "user-1", Name: "Food", Type: model.FlowExpense},
			"salary": {ID: "salary", UserID: "user-1", Name: "Salary", Type: model.FlowIncome},
			"other":  {ID: "other", UserID: "user-2", Name: "Other", Type: model.FlowExpense},
		},
	}
}

func (f *fakeLedger) CreateTransaction(_ context.Context, t *model.Transaction) error {
	f.created = append(f.created, t)
	return nil
}

func (f *fakeLedger) GetTransaction(_ context.Context, userID, id string) (*model.Transaction, error) {
	for _, t := range f.created {
		if t.ID == id && t.UserID == userID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeLedger) UpdateTransaction(context.Context, *model.Transaction) error { return nil }

func (f *fakeLedger) DeleteTransaction(_ context.Context, userID, id string) (*model.Transaction, error) {
	return f.GetTransaction(context.Background(), userID, id)
}

func (f *fakeLedger) ListTransactions(_ context.Context, _ model.TransactionFilter, _ string, limit int) ([]*model.Transaction, string, error) {
	f.listLimit = limit
	return []*model.Transaction{}, "", nil
}

func (f *fakeLedger) ListTransactionsSince(context.Context, string, time.Time) ([]*model.Transaction, error) {
	return f.history, f.historyErr
}

func (f *fakeLedger) GetAccount(_ context.Context, userID, id string) (*model.Account, error) {
	a, ok := f.accounts[id]
	if !ok || a.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (f *fakeLedger) GetCategory(_ context.Context, userID, id string) (*model.Category, error) {
	c, ok := f.categories[id]
	if !ok || c.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeLedger) ListRules(_ context.Context, userID string, _ bool) ([]*model.CategorizationRule, error) {
	var out []*model.CategorizationRule
	for _, r := range f.rules {
		if r.UserID == userID && r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

type recordingChecker struct {
	calls []string
}

func (c *recordingChecker) CheckSpending(_ context.Context, _, categoryID string, _ time.Time) error {
	c.calls = append(c.calls, categoryID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTransactionService(store *fakeLedger) (*TransactionService, *recordingChecker, *recordingPublisher, *metrics.InMemoryRecorder) {
	checker := &recordingChecker{}
	events := &recordingPublisher{}
	recorder := metrics.NewInMemory()
	svc := NewTransactionService(store, checker, events, nil, recorder, testLogger())
	return svc, checker, events, recorder
}

func txInput(account string, flow model.FlowType, amount, description string) TransactionInput {
	amt := decimal.RequireFromString(amount)
	return TransactionInput{
		AccountID:   &account,
		Type:        &flow,
		Amount:      &amt,
		Description: &description,
	}
}

func TestTransactionCreate_Validation(t *testing.T) {
	store := newFakeLedger()
	svc, _, _, _ := newTestTransactionService(store)

	tests := []struct {
		name    string
		input   TransactionInput
		wantErr error
	}{
		{"missing_account", TransactionInput{}, ErrValidation},
		{"foreign_account", txInput("acc-2", model.FlowExpense, "10", "x"), ErrValidation},
		{"zero_amount", txInput("acc-1", model.FlowExpense, "0", "x"), ErrValidation},
		{"negative_amount", txInput("acc-1", model.FlowExpense, "-5", "x"), ErrValidation},
		{"bad_type", txInput("acc-1", model.FlowType("transfer"), "5", "x"), ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "user-1", tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
	if len(store.created) != 0 {
		t.Fatalf("no transaction should be stored, got %d", len(store.created))
	}
}

func TestTransactionCreate_CategoryChecks(t *testing.T) {
	store := newFakeLedger()
	svc, _, _, _ := newTestTransactionService(store)

	in := txInput("acc-1", model.FlowExpense, "10", "lunch")
	in.CategoryID = strPtr("salary")
	if _, err := svc.Create(context.Background(), "user-1", in); !errors.Is(err, ErrCategoryMismatch) {
		t.Fatalf("expected ErrCategoryMismatch, got %v", err)
	}

	in.CategoryID = strPtr("other")
	if _, err := svc.Create(context.Background(), "user-1", in); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for foreign category, got %v", err)
	}
}

func TestTransactionCreate_AppliesRules(t *testing.T) {
	store := newFakeLedger()
	store.categories["market"] = &model.Category{ID: "market", UserID: "user-1", Type: model.FlowExpense}
	store.rules = []*model.CategorizationRule{
		{ID: "r-high", UserID: "user-1", Keywords: []string{"ifood"}, MatchType: model.MatchContains, CategoryID: "food", Priority: 10, Active: true},
		{ID: "r-income", UserID: "user-1", Keywords: []string{"pagamento"}, MatchType: model.MatchContains, CategoryID: "salary", Priority: 9, Active: true},
		{ID: "r-low", UserID: "user-1", Keywords: []string{"pagamento"}, MatchType: model.MatchContains, CategoryID: "market", Priority: 1, Active: true},
	}
	svc, checker, _, _ := newTestTransactionService(store)

	tx, err := svc.Create(context.Background(), "user-1", txInput("acc-1", model.FlowExpense, "32.90", "IFOOD *Pedido 1234"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tx.CategoryID == nil || *tx.CategoryID != "food" {
		t.Fatalf("expected category food, got %v", tx.CategoryID)
	}

	// The income rule matches first but its category has the wrong type.
	tx, err = svc.Create(context.Background(), "user-1", txInput("acc-1", model.FlowExpense, "100", "Pagamento mercado"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tx.CategoryID == nil || *tx.CategoryID != "market" {
		t.Fatalf("expected category market, got %v", tx.CategoryID)
	}

	if len(checker.calls) != 2 {
		t.Fatalf("expected 2 budget checks, got %d", len(checker.calls))
	}
}

func TestTransactionCreate_SideEffects(t *testing.T) {
	store := newFakeLedger()
	svc, checker, events, recorder := newTestTransactionService(store)

	tx, err := svc.Create(context.Background(), "user-1", txInput("acc-1", model.FlowIncome, "5000.456", "Salary"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !tx.Amount.Equal(decimal.RequireFromString("5000.46")) {
		t.Errorf("amount = %s, want rounded to cents", tx.Amount)
	}
	if got := events.count(model.EventTransactionCreated); got != 1 {
		t.Errorf("published %d events, want 1", got)
	}
	if got := recorder.Snapshot().TransactionsCreated; got != 1 {
		t.Errorf("transactions metric = %d, want 1", got)
	}
	if len(checker.calls) != 0 {
		t.Errorf("income should not trigger budget checks")
	}
}

func TestTransactionList_Limits(t *testing.T) {
	store := newFakeLedger()
	svc, _, _, _ := newTestTransactionService(store)

	tests := []struct {
		in, want int
	}{
		{0, 50},
		{-1, 50},
		{20, 20},
		{100, 100},
		{1000, 100},
	}
	for _, tt := range tests {
		if _, err := svc.List(context.Background(), ListTransactionsInput{UserID: "user-1", Limit: tt.in}); err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if store.listLimit != tt.want {
			t.Errorf("limit %d -> %d, want %d", tt.in, store.listLimit, tt.want)
		}
	}

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)
	if _, err := svc.List(context.Background(), ListTransactionsInput{UserID: "user-1", From: &from, To: &to}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for inverted range, got %v", err)
	}
}

func TestTransactionRecurring(t *testing.T) {
	store := newFakeLedger()
	base := time.Now().UTC().AddDate(0, -3, 0)
	for i := 0; i < 3; i++ {
		store.history = append(store.history, &model.Transaction{
			ID:          string(rune('a' + i)),
			UserID:      "user-1",
			Type:        model.FlowExpense,
			Amount:      decimal.RequireFromString("39.90"),
			Description: "NETFLIX.COM",
			Date:        base.AddDate(0, 0, 30*i),
		})
	}
	svc, _, _, _ := newTestTransactionService(store)

	series, err := svc.Recurring(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Recurring() error = %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(series))
	}
}

func TestTransactionRecurring_StoreError(t *testing.T) {
	store := newFakeLedger()
	store.historyErr = repository.ErrNotFound
	svc, _, _, _ := newTestTransactionService(store)

	_, err := svc.Recurring(context.Background(), "user-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Recurring() error = %v, want ErrNotFound", err)
	}
}
