// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// advisoryLockID serializes packages that reset the shared test database.
const advisoryLockID int64 = 7_302_114

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// DropSchema removes every table, including the migration bookkeeping, so
// the next migration run starts from an empty database.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `DROP SCHEMA public CASCADE; CREATE SCHEMA public;`); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// NewTestUser creates a user with sensible defaults and a unique email.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		ID:           ulid.Make().String(),
		Email:        UniqueEmail("user"),
		Name:         "Test User",
		PasswordHash: "not-a-real-hash",
		Role:         model.RoleUser,
		Plan:         model.PlanFree,
		Level:        1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestAccount creates a checking account for the user.
func NewTestAccount(t testing.TB, userID string, balance string) *model.Account {
	t.Helper()
	now := time.Now().UTC()
	return &model.Account{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Name:      "Checking",
		Type:      model.AccountChecking,
		Balance:   decimal.RequireFromString(balance),
		Currency:  "BRL",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestCategory creates a category of the given flow type.
func NewTestCategory(t testing.TB, userID string, flow model.FlowType) *model.Category {
	t.Helper()
	return &model.Category{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Name:      "Test " + string(flow),
		Type:      flow,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTestTransaction creates a transaction on the account.
func NewTestTransaction(t testing.TB, userID, accountID string, flow model.FlowType, amount string, date time.Time) *model.Transaction {
	t.Helper()
	now := time.Now().UTC()
	return &model.Transaction{
		ID:          ulid.Make().String(),
		UserID:      userID,
		AccountID:   accountID,
		Type:        flow,
		Amount:      decimal.RequireFromString(amount),
		Description: "Test transaction",
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.test", prefix, time.Now().UnixNano())
}
