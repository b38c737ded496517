package service

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
)

// EventPublisher emits gamification events without blocking the caller.
type EventPublisher interface {
	PublishAsync(userID string, eventType model.XPEventType)
}

// DashboardInvalidator drops a user's cached dashboard after a write.
type DashboardInvalidator interface {
	InvalidateDashboard(ctx context.Context, userID string) error
}

type noopPublisher struct{}

func (noopPublisher) PublishAsync(string, model.XPEventType) {}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateDashboard(context.Context, string) error { return nil }

const (
	maxNameLength        = 100
	maxDescriptionLength = 255
	maxNotesLength       = 1000
)

// generateULID generates a new ULID string.
func generateULID() string {
	return ulid.Make().String()
}

func now() time.Time {
	return time.Now().UTC()
}

// dateOnly drops the clock part of t.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// requireName trims a name and checks its length.
func requireName(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid(field, "is required")
	}
	if len([]rune(value)) > maxNameLength {
		return "", invalid(field, "is too long")
	}
	return value, nil
}

// requirePositive checks an amount is > 0 and rounds it to cents.
func requirePositive(field string, v decimal.Decimal) (decimal.Decimal, error) {
	if v.Sign() <= 0 {
		return decimal.Zero, invalid(field, "must be greater than zero")
	}
	return v.Round(2), nil
}

// requireNonNegative checks an amount is >= 0 and rounds it to cents.
func requireNonNegative(field string, v decimal.Decimal) (decimal.Decimal, error) {
	if v.IsNegative() {
		return decimal.Zero, invalid(field, "cannot be negative")
	}
	return v.Round(2), nil
}
