package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClampResults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want int
	}{
		{0, DefaultResults},
		{-3, DefaultResults},
		{1, 1},
		{7, 7},
		{10, 10},
		{50, MaxResults},
	}
	for _, tt := range tests {
		if got := ClampResults(tt.in); got != tt.want {
			t.Errorf("ClampResults(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClient_Search(t *testing.T) {
	var got searchRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"query":"selic","answer":"13.75%","results":[{"title":"BCB","url":"https://bcb.gov.br","content":"Selic rate","score":0.9}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "server-key")
	resp, err := c.Search(context.Background(), "", "selic", 25)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotAuth != "Bearer server-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if got.MaxResults != MaxResults || !got.IncludeAnswer {
		t.Errorf("request = %+v", got)
	}
	if resp.Answer != "13.75%" || len(resp.Results) != 1 || resp.Results[0].URL != "https://bcb.gov.br" {
		t.Errorf("response = %+v", resp)
	}
}

func TestClient_SearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":{"error":"Unauthorized: missing or invalid API key."}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad")
	_, err := c.Search(context.Background(), "", "q", 3)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Unauthorized: missing or invalid API key." {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestClient_NoKey(t *testing.T) {
	t.Parallel()

	c := NewClient("", "")
	if _, err := c.Search(context.Background(), "", "q", 1); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("error = %v, want ErrNoAPIKey", err)
	}
}
