// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"

	"github.com/organizai/organizai/internal/repository"
)

// Service errors.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrBanned             = errors.New("account is banned")
	ErrForbidden          = errors.New("forbidden")
	ErrAccountInUse       = errors.New("account has transactions")
	ErrCategoryMismatch   = errors.New("category type does not match transaction type")
	ErrCategoryInUse      = errors.New("category type cannot change while transactions or budgets use it")
	ErrDuplicateBudget    = errors.New("a budget already exists for this category and period")
	ErrGoalNotActive      = errors.New("goal is not active")
	ErrDebtNotActive      = errors.New("debt is already paid off")
	ErrCannotBanSelf      = errors.New("cannot ban yourself")
	ErrCannotBanAdmin     = errors.New("cannot ban an administrator")
	ErrInvalidCursor      = errors.New("invalid pagination cursor")
	ErrNotConfigured      = errors.New("integration is not configured")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrProvider           = errors.New("provider error")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// BanError carries the reason a banned user is turned away.
type BanError struct {
	Reason string
}

func (e *BanError) Error() string {
	return "account is banned: " + e.Reason
}

// Is makes every BanError match ErrBanned.
func (e *BanError) Is(target error) bool {
	return target == ErrBanned
}

// ProviderError wraps a third-party failure with a message safe to show
// to the user.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is makes every ProviderError match ErrProvider.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// mapRepoErr translates storage sentinels into service errors.
func mapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInvalidCursor):
		return ErrInvalidCursor
	default:
		return err
	}
}
