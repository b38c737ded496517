package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecoverer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestID(Recoverer(logger, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"code":"INTERNAL_ERROR"`) {
		t.Errorf("body = %s, want INTERNAL_ERROR", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Error("panic value must not reach the client")
	}
	out := buf.String()
	if !strings.Contains(out, `"panic":"boom"`) || !strings.Contains(out, `"path":"/api/v1/dashboard"`) {
		t.Errorf("panic not logged: %s", out)
	}
	if !strings.Contains(out, `"request_id":"`+rec.Header().Get(RequestIDHeader)+`"`) {
		t.Errorf("request id missing from panic log: %s", out)
	}
}

func TestRecoverer_AbortHandlerPropagates(t *testing.T) {
	t.Parallel()

	h := Recoverer(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)), false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rvr := recover(); rvr != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", rvr)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
