// Package billing creates Stripe checkout sessions and verifies Stripe
// webhooks.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	// ErrNotConfigured is returned when Stripe keys are missing.
	ErrNotConfigured = errors.New("billing is not configured")
	// ErrInvalidSignature is returned for webhooks that fail verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// EventKind is what a webhook means for a user's plan.
type EventKind string

const (
	EventIgnored              EventKind = "ignored"
	EventSubscriptionActive   EventKind = "subscription_active"
	EventSubscriptionCanceled EventKind = "subscription_canceled"
)

// Event is a verified webhook reduced to what the app acts on.
type Event struct {
	ID         string
	Type       string
	Kind       EventKind
	UserID     string
	CustomerID string
}

// Config holds the Stripe settings.
type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
	SuccessURL    string
	CancelURL     string
	// APIBaseURL overrides the Stripe API endpoint. Empty uses Stripe.
	APIBaseURL string
}

// Client wraps the Stripe API.
type Client struct {
	api *client.API
	cfg Config
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	var backends *stripe.Backends
	if cfg.APIBaseURL != "" {
		backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(cfg.APIBaseURL),
			MaxNetworkRetries: stripe.Int64(0),
		})
		backends = &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	}
	return &Client{
		api: client.New(cfg.SecretKey, backends),
		cfg: cfg,
	}
}

// Configured reports whether checkout can be used.
func (c *Client) Configured() bool {
	return c.cfg.SecretKey != "" && c.cfg.PriceID != ""
}

// CheckoutInput identifies who is subscribing.
type CheckoutInput struct {
	UserID     string
	Email      string
	CustomerID string
}

// CreateCheckoutSession starts a subscription checkout and returns its URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, input CheckoutInput) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(c.cfg.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(c.cfg.SuccessURL),
		CancelURL:         stripe.String(c.cfg.CancelURL),
		ClientReferenceID: stripe.String(input.UserID),
	}
	if input.CustomerID != "" {
		params.Customer = stripe.String(input.CustomerID)
	} else if input.Email != "" {
		params.CustomerEmail = stripe.String(input.Email)
	}
	params.AddMetadata("user_id", input.UserID)
	params.Context = ctx

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return session.URL, nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event.
func (c *Client) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if c.cfg.WebhookSecret == "" {
		return nil, ErrNotConfigured
	}
	evt, err := webhook.ConstructEventWithOptions(payload, signature, c.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: evt.ID, Type: string(evt.Type), Kind: EventIgnored}
	switch evt.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Kind = EventSubscriptionActive
		out.UserID = session.ClientReferenceID
		if out.UserID == "" {
			out.UserID = session.Metadata["user_id"]
		}
		if session.Customer != nil {
			out.CustomerID = session.Customer.ID
		}
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(evt.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		out.Kind = EventSubscriptionCanceled
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
	}
	return out, nil
}

// ProviderMessage extracts a user-facing message from a Stripe error.
func ProviderMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return "payment provider is unavailable, please try again later"
}
