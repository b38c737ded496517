//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/testutil"
)

// ============================================================================
// Ledger Repository Integration Tests
// ============================================================================

func TestIntegrationLedger_CreateTransactionAdjustsBalance(t *testing.T) {
	ctx, repo, user := newLedgerTestEnv(t)

	account := testutil.NewTestAccount(t, user.ID, "100.00")
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	expense := testutil.NewTestTransaction(t, user.ID, account.ID, model.FlowExpense, "30.50", day)
	if err := repo.CreateTransaction(ctx, expense); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	income := testutil.NewTestTransaction(t, user.ID, account.ID, model.FlowIncome, "10.00", day)
	if err := repo.CreateTransaction(ctx, income); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	assertBalance(t, ctx, repo, user.ID, account.ID, "79.50")

	if _, err := repo.DeleteTransaction(ctx, user.ID, expense.ID); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}
	assertBalance(t, ctx, repo, user.ID, account.ID, "110.00")
}

func TestIntegrationLedger_CategoryScopedToOwner(t *testing.T) {
	ctx, repo, user := newLedgerTestEnv(t)

	category := testutil.NewTestCategory(t, user.ID, model.FlowExpense)
	if err := repo.CreateCategory(ctx, category); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	got, err := repo.GetCategory(ctx, user.ID, category.ID)
	if err != nil {
		t.Fatalf("GetCategory failed: %v", err)
	}
	if got.Type != model.FlowExpense {
		t.Errorf("Type = %q, want expense", got.Type)
	}

	if _, err := repo.GetCategory(ctx, ulid.Make().String(), category.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCategory as another user error = %v, want ErrNotFound", err)
	}
}

func TestIntegrationLedger_CategoryInUse(t *testing.T) {
	ctx, repo, user := newLedgerTestEnv(t)

	account := testutil.NewTestAccount(t, user.ID, "0")
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	category := testutil.NewTestCategory(t, user.ID, model.FlowExpense)
	if err := repo.CreateCategory(ctx, category); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	if inUse, err := repo.CategoryInUse(ctx, user.ID, category.ID); err != nil || inUse {
		t.Fatalf("CategoryInUse before use = %v, %v", inUse, err)
	}

	tx := testutil.NewTestTransaction(t, user.ID, account.ID, model.FlowExpense, "5", time.Now().UTC())
	tx.CategoryID = &category.ID
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if inUse, err := repo.CategoryInUse(ctx, user.ID, category.ID); err != nil || !inUse {
		t.Errorf("CategoryInUse after transaction = %v, %v, want true", inUse, err)
	}
}

func TestIntegrationLedger_UpdateTransactionMovesAccount(t *testing.T) {
	ctx, repo, user := newLedgerTestEnv(t)

	from := testutil.NewTestAccount(t, user.ID, "0")
	to := testutil.NewTestAccount(t, user.ID, "0")
	for _, a := range []*model.Account{from, to} {
		if err := repo.CreateAccount(ctx, a); err != nil {
			t.Fatalf("CreateAccount failed: %v", err)
		}
	}

	tx := testutil.NewTestTransaction(t, user.ID, from.ID, model.FlowExpense, "20", time.Now().UTC())
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	tx.AccountID = to.ID
	tx.Type = model.FlowIncome
	tx.Amount = decimal.NewFromInt(5)
	if err := repo.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("UpdateTransaction failed: %v", err)
	}

	assertBalance(t, ctx, repo, user.ID, from.ID, "0")
	assertBalance(t, ctx, repo, user.ID, to.ID, "5")
}

func TestIntegrationLedger_TransactionOnForeignAccount(t *testing.T) {
	ctx, repo, user := newLedgerTestEnv(t)

	other := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, other, nil); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	account := testutil.NewTestAccount(t, other.ID, "0")
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	tx := testutil.NewTestTransaction(t, user.ID, account.ID, model.FlowIncome, "1", time.Now().UTC())
	if err := repo.CreateTransaction(ctx, tx); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIntegrationLedger_DeleteAccountInUse(t *testing.T) {
	ctx, repo, user := newLedgerTestEnv(t)

	account := testutil.NewTestAccount(t, user.ID, "0")
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	tx := testutil.NewTestTransaction(t, user.ID, account.ID, model.FlowIncome, "1", time.Now().UTC())
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	if err := repo.DeleteAccount(ctx, user.ID, account.ID); !errors.Is(err, ErrInUse) {
		t.Errorf("expected ErrInUse, got %v", err)
	}
}

func TestIntegrationLedger_ListTransactionsPagination(t *testing.T) {
	ctx, repo, user := newLedgerTestEnv(t)

	account := testutil.NewTestAccount(t, user.ID, "0")
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		tx := testutil.NewTestTransaction(t, user.ID, account.ID, model.FlowIncome, "1", base.AddDate(0, 0, i))
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
	}

	filter := model.TransactionFilter{UserID: user.ID}
	page1, cursor, err := repo.ListTransactions(ctx, filter, "", 3)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(page1) != 3 || cursor == "" {
		t.Fatalf("page1 = %d items, cursor %q", len(page1), cursor)
	}
	if !page1[0].Date.After(page1[2].Date) {
		t.Error("transactions should be newest first")
	}

	page2, cursor, err := repo.ListTransactions(ctx, filter, cursor, 3)
	if err != nil {
		t.Fatalf("ListTransactions page2 failed: %v", err)
	}
	if len(page2) != 2 || cursor != "" {
		t.Errorf("page2 = %d items, cursor %q; want 2 items and no cursor", len(page2), cursor)
	}
}

func TestIntegrationLedger_SearchTreatsWildcardsLiterally(t *testing.T) {
	ctx, repo, user := newLedgerTestEnv(t)

	account := testutil.NewTestAccount(t, user.ID, "0")
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for _, desc := range []string{"50% off sale", "500 groceries"} {
		tx := testutil.NewTestTransaction(t, user.ID, account.ID, model.FlowExpense, "1", date)
		tx.Description = desc
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
	}

	got, _, err := repo.ListTransactions(ctx, model.TransactionFilter{UserID: user.ID, Search: "50%"}, "", 10)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(got) != 1 || got[0].Description != "50% off sale" {
		t.Errorf("search 50%% returned %d rows, want only the literal match", len(got))
	}
}

func TestIntegrationLedger_GoalContributionCompletes(t *testing.T) {
	ctx, repo, user := newLedgerTestEnv(t)

	now := time.Now().UTC()
	goal := &model.Goal{
		ID:           ulid.Make().String(),
		UserID:       user.ID,
		Name:         "Trip",
		TargetAmount: decimal.NewFromInt(100),
		Status:       model.GoalActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.CreateGoal(ctx, goal); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	contribute := func(amount int64) (*model.Goal, bool, error) {
		return repo.AddGoalContribution(ctx, &model.GoalContribution{
			ID:        ulid.Make().String(),
			GoalID:    goal.ID,
			UserID:    user.ID,
			Amount:    decimal.NewFromInt(amount),
			Date:      now,
			CreatedAt: now,
		})
	}

	if _, completed, err := contribute(60); err != nil || completed {
		t.Fatalf("first contribution: completed=%v err=%v", completed, err)
	}
	updated, completed, err := contribute(40)
	if err != nil {
		t.Fatalf("second contribution failed: %v", err)
	}
	if !completed || updated.Status != model.GoalCompleted {
		t.Errorf("goal should be completed, got status %s", updated.Status)
	}
	if _, _, err := contribute(1); !errors.Is(err, ErrNotActive) {
		t.Errorf("expected ErrNotActive, got %v", err)
	}
}

func TestIntegrationLedger_DebtPaymentFloorsAtZero(t *testing.T) {
	ctx, repo, user := newLedgerTestEnv(t)

	now := time.Now().UTC()
	debt := &model.Debt{
		ID:             ulid.Make().String(),
		UserID:         user.ID,
		Name:           "Card",
		Type:           model.DebtCreditCard,
		OriginalAmount: decimal.NewFromInt(50),
		CurrentBalance: decimal.NewFromInt(50),
		Status:         model.DebtActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := repo.CreateDebt(ctx, debt); err != nil {
		t.Fatalf("CreateDebt failed: %v", err)
	}

	updated, paidOff, err := repo.AddDebtPayment(ctx, &model.DebtPayment{
		ID:        ulid.Make().String(),
		DebtID:    debt.ID,
		UserID:    user.ID,
		Amount:    decimal.NewFromInt(80),
		Date:      now,
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("AddDebtPayment failed: %v", err)
	}
	if !paidOff || !updated.CurrentBalance.IsZero() || updated.Status != model.DebtPaidOff {
		t.Errorf("got paidOff=%v balance=%s status=%s", paidOff, updated.CurrentBalance, updated.Status)
	}
}

func TestIntegrationLedger_ApplyXPEventIdempotent(t *testing.T) {
	ctx, repo, user := newLedgerTestEnv(t)

	event := &model.XPEvent{
		EventID:    "1700000000000-0",
		UserID:     user.ID,
		Type:       model.EventGoalCompleted,
		OccurredAt: time.Now().UTC(),
	}

	stats, applied, err := repo.ApplyXPEvent(ctx, event, 100)
	if err != nil || !applied {
		t.Fatalf("first apply: applied=%v err=%v", applied, err)
	}
	if stats.XP != 100 || stats.Level != 2 {
		t.Errorf("stats = xp %d level %d, want 100/2", stats.XP, stats.Level)
	}

	stats, applied, err = repo.ApplyXPEvent(ctx, event, 100)
	if err != nil {
		t.Fatalf("second apply failed: %v", err)
	}
	if applied || stats.XP != 100 {
		t.Errorf("redelivery should be a no-op, got applied=%v xp=%d", applied, stats.XP)
	}
	if stats.Counters[model.EventGoalCompleted] != 1 {
		t.Errorf("counter = %d, want 1", stats.Counters[model.EventGoalCompleted])
	}

	unlocked, err := repo.UnlockAchievements(ctx, user.ID, []string{"goal_achiever"})
	if err != nil || len(unlocked) != 1 {
		t.Fatalf("unlock: %v %v", unlocked, err)
	}
	unlocked, err = repo.UnlockAchievements(ctx, user.ID, []string{"goal_achiever"})
	if err != nil || len(unlocked) != 0 {
		t.Errorf("second unlock should return nothing, got %v %v", unlocked, err)
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func assertBalance(t *testing.T, ctx context.Context, repo *Repository, userID, accountID, want string) {
	t.Helper()
	a, err := repo.GetAccount(ctx, userID, accountID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if !a.Balance.Equal(decimal.RequireFromString(want)) {
		t.Errorf("balance = %s, want %s", a.Balance, want)
	}
}

func newLedgerTestEnv(t *testing.T) (context.Context, *Repository, *model.User) {
	t.Helper()
	ctx, pool, _ := newMigrationTestEnv(t)

	repo := NewFromPool(pool)
	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user, nil); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return ctx, repo, user
}
