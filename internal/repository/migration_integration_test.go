//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/organizai/organizai/internal/testutil"
)

func TestIntegrationMigration_CreatesSchema(t *testing.T) {
	ctx, pool, _ := newMigrationTestEnv(t)

	tables, err := publicTables(ctx, pool)
	if err != nil {
		t.Fatalf("list tables: %v", err)
	}
	for _, table := range []string{
		"users", "bans", "api_settings",
		"accounts", "categories", "transactions", "categorization_rules",
		"budgets", "goals", "goal_contributions", "debts", "debt_payments",
		"investments", "investment_returns", "dividends", "retirement_plans",
		"alerts", "support_tickets", "xp_events", "user_counters", "user_achievements",
	} {
		if !tables[table] {
			t.Errorf("table %q missing after migrations", table)
		}
	}
}

func TestIntegrationMigration_TransactionColumns(t *testing.T) {
	ctx, pool, _ := newMigrationTestEnv(t)

	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = 'transactions'`)
	if err != nil {
		t.Fatalf("query columns: %v", err)
	}
	types, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([2]string, error) {
		var c [2]string
		err := row.Scan(&c[0], &c[1])
		return c, err
	})
	if err != nil {
		t.Fatalf("scan columns: %v", err)
	}
	got := make(map[string]string, len(types))
	for _, c := range types {
		got[c[0]] = c[1]
	}

	want := map[string]string{
		"id": "text", "user_id": "text", "account_id": "text", "category_id": "text",
		"type": "text", "amount": "numeric", "description": "text", "date": "date",
		"notes": "text", "created_at": "timestamp with time zone", "updated_at": "timestamp with time zone",
	}
	for col, typ := range want {
		if got[col] != typ {
			t.Errorf("transactions.%s type = %q, want %q", col, got[col], typ)
		}
	}
}

func TestIntegrationMigration_Version(t *testing.T) {
	_, _, dbURL := newMigrationTestEnv(t)

	mg, err := NewMigrator(dbURL)
	if err != nil {
		t.Fatalf("NewMigrator failed: %v", err)
	}
	defer mg.Close()

	version, dirty, err := mg.Version()
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if dirty {
		t.Error("schema should not be dirty")
	}
	if version != 4 {
		t.Errorf("version = %d, want 4", version)
	}
}

func TestIntegrationMigration_RollbackEngagement(t *testing.T) {
	ctx, pool, dbURL := newMigrationTestEnv(t)

	mg, err := NewMigrator(dbURL)
	if err != nil {
		t.Fatalf("NewMigrator failed: %v", err)
	}
	defer mg.Close()

	if err := mg.Down(1); err != nil {
		t.Fatalf("Down failed: %v", err)
	}

	tables, err := publicTables(ctx, pool)
	if err != nil {
		t.Fatalf("list tables: %v", err)
	}
	if tables["xp_events"] {
		t.Error("xp_events table should not exist after rollback")
	}

	if err := mg.Up(); err != nil {
		t.Fatalf("reapply failed: %v", err)
	}
}

func TestIntegrationMigration_Idempotency(t *testing.T) {
	_, _, dbURL := newMigrationTestEnv(t)

	// A second run has nothing to apply and must not fail.
	if err := RunMigrations(dbURL); err != nil {
		t.Fatalf("second run should not fail: %v", err)
	}
}

func publicTables(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `SELECT table_name FROM information_schema.tables WHERE table_schema = 'public'`)
	if err != nil {
		return nil, err
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}

func newMigrationTestEnv(t *testing.T) (context.Context, *pgxpool.Pool, string) {
	t.Helper()
	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := testutil.AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.DropSchema(ctx, pool); err != nil {
		t.Fatalf("drop schema: %v", err)
	}
	if err := RunMigrations(dbURL); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return ctx, pool, dbURL
}
