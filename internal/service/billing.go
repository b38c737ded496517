package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/organizai/organizai/internal/billing"
	"github.com/organizai/organizai/internal/metrics"
	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/repository"
)

const providerStripe = "stripe"

// PaymentProvider creates checkouts and verifies webhooks.
type PaymentProvider interface {
	Configured() bool
	CreateCheckoutSession(ctx context.Context, input billing.CheckoutInput) (string, error)
	ParseWebhook(payload []byte, signature string) (*billing.Event, error)
}

// PlanStore is the storage BillingService needs.
type PlanStore interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	SetUserPlan(ctx context.Context, userID, plan, customerID string) error
	SetPlanByCustomer(ctx context.Context, customerID, plan string) error
}

// BillingService handles subscriptions.
type BillingService struct {
	payments PaymentProvider
	store    PlanStore
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewBillingService creates a new BillingService.
func NewBillingService(payments PaymentProvider, store PlanStore, recorder metrics.Recorder, logger *slog.Logger) *BillingService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &BillingService{payments: payments, store: store, metrics: recorder, logger: logger}
}

// CreateCheckout starts a Pro subscription checkout and returns its URL.
func (s *BillingService) CreateCheckout(ctx context.Context, userID string) (string, error) {
	if !s.payments.Configured() {
		return "", ErrNotConfigured
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return "", mapRepoErr(err)
	}
	if user.Plan == model.PlanPro {
		return "", invalid("plan", "already subscribed")
	}

	url, err := s.payments.CreateCheckoutSession(ctx, billing.CheckoutInput{
		UserID:     user.ID,
		Email:      user.Email,
		CustomerID: user.StripeCustomerID,
	})
	if err != nil {
		s.metrics.IncProviderCall(providerStripe, "error")
		s.logger.Error("checkout session failed", "user_id", userID, "error", err)
		return "", &ProviderError{Provider: providerStripe, Message: billing.ProviderMessage(err), Err: err}
	}
	s.metrics.IncProviderCall(providerStripe, "ok")
	return url, nil
}

// HandleWebhook verifies a Stripe event and updates the user's plan.
// Events the app does not act on are acknowledged.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.payments.ParseWebhook(payload, signature)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidSignature):
			return ErrInvalidSignature
		case errors.Is(err, billing.ErrNotConfigured):
			return ErrNotConfigured
		}
		return invalid("payload", "malformed event")
	}

	switch evt.Kind {
	case billing.EventSubscriptionActive:
		if evt.UserID == "" {
			s.logger.Warn("checkout completed without user reference", "event_id", evt.ID)
			return nil
		}
		err = s.store.SetUserPlan(ctx, evt.UserID, model.PlanPro, evt.CustomerID)
	case billing.EventSubscriptionCanceled:
		if evt.CustomerID == "" {
			return nil
		}
		err = s.store.SetPlanByCustomer(ctx, evt.CustomerID, model.PlanFree)
	default:
		s.logger.Debug("stripe event ignored", "event_id", evt.ID, "type", evt.Type)
		return nil
	}

	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("stripe event for unknown user", "event_id", evt.ID, "type", evt.Type)
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.Info("plan updated from stripe", "event_id", evt.ID, "type", evt.Type, "user_id", evt.UserID)
	return nil
}
