package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "rewards/internal/log"
)

func TestMiddleware_RequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Handler: applog.NewHandler(&buf, "json", slog.LevelDebug)})
	m := NewMiddleware(func(*http.Request) string { return "127.0.0.1" }, logger)

	var seen string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rewards/calculate/all", nil))

		if !strings.HasPrefix(seen, "req_") {
			t.Errorf("request id = %q, want req_ prefix", seen)
		}
		if rec.Header().Get(RequestIDHeader) != seen {
			t.Errorf("response header = %q, want %q", rec.Header().Get(RequestIDHeader), seen)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, "abc-123")
		handler.ServeHTTP(httptest.NewRecorder(), r)

		if seen != "abc-123" {
			t.Errorf("request id = %q, want abc-123", seen)
		}
	})

	t.Run("invalid header replaced", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, "bad id with spaces")
		handler.ServeHTTP(httptest.NewRecorder(), r)

		if seen == "bad id with spaces" {
			t.Error("invalid request id should be replaced")
		}
	})

	out := buf.String()
	if !strings.Contains(out, "HTTP request started") || !strings.Contains(out, "HTTP request completed") {
		t.Errorf("access log missing entries: %s", out)
	}
	if !strings.Contains(out, `"status_code":404`) {
		t.Errorf("status code not logged: %s", out)
	}

	if got := m.GetMetrics().TotalRequests; got != 3 {
		t.Errorf("TotalRequests = %d, want 3", got)
	}
}

func TestMiddleware_CountsServerErrors(t *testing.T) {
	m := NewMiddleware(nil, nil)
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.WriteHeader(http.StatusOK) // superfluous, ignored by the recorder too
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := m.GetMetrics().ServerErrors; got != 1 {
		t.Errorf("ServerErrors = %d, want 1", got)
	}
}
