package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_Complete(t *testing.T) {
	var gotAuth, gotModel string
	var gotMessages int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Model    string            `json:"model"`
			Messages []json.RawMessage `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		gotMessages = len(body.Messages)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Save 10%.  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "server-key", "")
	reply, err := c.Complete(context.Background(), "", "", []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "How do I save?"},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != "Save 10%." {
		t.Errorf("reply = %q", reply)
	}
	if gotAuth != "Bearer server-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotModel != DefaultModel {
		t.Errorf("model = %q", gotModel)
	}
	if gotMessages != 2 {
		t.Errorf("messages = %d", gotMessages)
	}
}

func TestClient_CompleteUsesUserKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "server-key", "m")
	if _, err := c.Complete(context.Background(), "user-key", "", []Message{{Role: RoleUser, Content: "hi"}}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if gotAuth != "Bearer user-key" {
		t.Errorf("Authorization = %q, want user key", gotAuth)
	}
}

func TestClient_CompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad", "")
	_, err := c.Complete(context.Background(), "", "", []Message{{Role: RoleUser, Content: "hi"}})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
}

func TestClient_NoKey(t *testing.T) {
	c := NewClient("http://unused", "", "")
	if c.Configured() {
		t.Error("Configured() = true without key")
	}
	_, err := c.Complete(context.Background(), "", "", nil)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("error = %v, want ErrNoAPIKey", err)
	}
}

func TestSystemPrompt(t *testing.T) {
	if got := SystemPrompt(nil); got != basePrompt {
		t.Error("nil snapshot should return the base prompt")
	}
	got := SystemPrompt(map[string]string{"month": "2026-10"})
	if !strings.HasPrefix(got, basePrompt) || !strings.Contains(got, `"month":"2026-10"`) {
		t.Errorf("prompt missing snapshot: %q", got)
	}
}
