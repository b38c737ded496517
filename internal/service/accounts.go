package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/repository"
)

// DefaultCurrency is used when an account is created without one.
const DefaultCurrency = "BRL"

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// AccountStore is the storage AccountService needs.
type AccountStore interface {
	CreateAccount(ctx context.Context, a *model.Account) error
	GetAccount(ctx context.Context, userID, id string) (*model.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]*model.Account, error)
	UpdateAccount(ctx context.Context, a *model.Account) error
	DeleteAccount(ctx context.Context, userID, id string) error
}

// AccountService handles account business logic.
type AccountService struct {
	store      AccountStore
	invalidate DashboardInvalidator
}

// NewAccountService creates a new AccountService.
func NewAccountService(store AccountStore, invalidate DashboardInvalidator) *AccountService {
	if invalidate == nil {
		invalidate = noopInvalidator{}
	}
	return &AccountService{store: store, invalidate: invalidate}
}

// AccountInput defines the fields of an account. Nil fields are left
// unchanged on update and defaulted on create.
type AccountInput struct {
	Name     *string
	Type     *model.AccountType
	Balance  *decimal.Decimal
	Currency *string
	IsActive *bool
}

// List returns the user's accounts.
func (s *AccountService) List(ctx context.Context, userID string) ([]*model.Account, error) {
	return s.store.ListAccounts(ctx, userID)
}

// Get returns one account.
func (s *AccountService) Get(ctx context.Context, userID, id string) (*model.Account, error) {
	a, err := s.store.GetAccount(ctx, userID, id)
	return a, mapRepoErr(err)
}

// Create opens a new account.
func (s *AccountService) Create(ctx context.Context, userID string, input AccountInput) (*model.Account, error) {
	ts := now()
	a := &model.Account{
		ID:        generateULID(),
		UserID:    userID,
		Type:      model.AccountChecking,
		Currency:  DefaultCurrency,
		IsActive:  true,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if input.Name == nil {
		return nil, invalid("name", "is required")
	}
	if err := applyAccountInput(a, input); err != nil {
		return nil, err
	}

	if err := s.store.CreateAccount(ctx, a); err != nil {
		return nil, err
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return a, nil
}

// Update changes an account's fields.
func (s *AccountService) Update(ctx context.Context, userID, id string, input AccountInput) (*model.Account, error) {
	a, err := s.store.GetAccount(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := applyAccountInput(a, input); err != nil {
		return nil, err
	}
	a.UpdatedAt = now()

	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return nil, mapRepoErr(err)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return a, nil
}

// Delete removes an account that has no transactions.
func (s *AccountService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteAccount(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return ErrAccountInUse
		}
		return mapRepoErr(err)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return nil
}

func applyAccountInput(a *model.Account, input AccountInput) error {
	if input.Name != nil {
		name, err := requireName("name", *input.Name)
		if err != nil {
			return err
		}
		a.Name = name
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return invalid("type", "is not a valid account type")
		}
		a.Type = *input.Type
	}
	if input.Balance != nil {
		a.Balance = input.Balance.Round(2)
	}
	if input.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*input.Currency))
		if !currencyRegex.MatchString(c) {
			return invalid("currency", "must be a 3-letter ISO 4217 code")
		}
		a.Currency = c
	}
	if input.IsActive != nil {
		a.IsActive = *input.IsActive
	}
	return nil
}
