package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testWebhookSecret = "whsec_test_secret"

func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestParseWebhook(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{SecretKey: "sk_test", WebhookSecret: testWebhookSecret})

	tests := []struct {
		name       string
		payload    string
		wantKind   EventKind
		wantUser   string
		wantCustID string
	}{
		{
			name:       "checkout completed",
			payload:    `{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_1","object":"checkout.session","client_reference_id":"user-1","customer":"cus_1"}}}`,
			wantKind:   EventSubscriptionActive,
			wantUser:   "user-1",
			wantCustID: "cus_1",
		},
		{
			name:       "subscription deleted",
			payload:    `{"id":"evt_2","object":"event","type":"customer.subscription.deleted","data":{"object":{"id":"sub_1","object":"subscription","customer":"cus_9"}}}`,
			wantKind:   EventSubscriptionCanceled,
			wantCustID: "cus_9",
		},
		{
			name:     "unknown event",
			payload:  `{"id":"evt_3","object":"event","type":"invoice.paid","data":{"object":{"id":"in_1","object":"invoice"}}}`,
			wantKind: EventIgnored,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			payload := []byte(tt.payload)
			evt, err := c.ParseWebhook(payload, sign(payload, testWebhookSecret, time.Now()))
			if err != nil {
				t.Fatalf("ParseWebhook() error = %v", err)
			}
			if evt.Kind != tt.wantKind || evt.UserID != tt.wantUser || evt.CustomerID != tt.wantCustID {
				t.Errorf("event = %+v", evt)
			}
		})
	}
}

func TestParseWebhook_BadSignature(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{SecretKey: "sk_test", WebhookSecret: testWebhookSecret})
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{}}}`)

	tests := []struct {
		name      string
		signature string
	}{
		{"empty", ""},
		{"wrong secret", sign(payload, "whsec_other", time.Now())},
		{"stale timestamp", sign(payload, testWebhookSecret, time.Now().Add(-time.Hour))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := c.ParseWebhook(payload, tt.signature)
			if !errors.Is(err, ErrInvalidSignature) {
				t.Errorf("error = %v, want ErrInvalidSignature", err)
			}
		})
	}
}

func TestParseWebhook_NotConfigured(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{SecretKey: "sk_test"})
	if _, err := c.ParseWebhook([]byte(`{}`), "t=1,v1=x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotRef, gotPrice, gotMode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = r.ParseForm()
		gotRef = r.PostForm.Get("client_reference_id")
		gotPrice = r.PostForm.Get("line_items[0][price]")
		gotMode = r.PostForm.Get("mode")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{
		SecretKey:  "sk_test",
		PriceID:    "price_pro",
		SuccessURL: "https://app/success",
		CancelURL:  "https://app/cancel",
		APIBaseURL: srv.URL,
	})
	url, err := c.CreateCheckoutSession(context.Background(), CheckoutInput{UserID: "user-1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("CreateCheckoutSession() error = %v", err)
	}
	if url != "https://checkout.stripe.com/c/pay/cs_test_1" {
		t.Errorf("url = %q", url)
	}
	if gotRef != "user-1" || gotPrice != "price_pro" || gotMode != "subscription" {
		t.Errorf("form: ref=%q price=%q mode=%q", gotRef, gotPrice, gotMode)
	}
}

func TestCreateCheckoutSession_NotConfigured(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{})
	if _, err := c.CreateCheckoutSession(context.Background(), CheckoutInput{UserID: "u"}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}

func TestProviderMessage(t *testing.T) {
	t.Parallel()

	if got := ProviderMessage(errors.New("boom")); got == "" || got == "boom" {
		t.Errorf("ProviderMessage() = %q, want generic message", got)
	}
}
