package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(perMinute int) (*Limiter, *time.Time) {
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestLimiter_Allow(t *testing.T) {
	rl, now := newTestLimiter(3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.1.1.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.1.1.1") {
		t.Error("4th request in the window should be rejected")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("other clients have their own window")
	}

	*now = now.Add(time.Minute)
	if !rl.Allow("1.1.1.1") {
		t.Error("request after the window should be allowed")
	}

	m := rl.GetMetrics()
	if m.TotalHits != 1 || m.ClientCount != 2 {
		t.Errorf("GetMetrics() = %+v, want 1 hit and 2 clients", m)
	}
}

func TestLimiter_CleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(10)
	defer rl.Stop()

	rl.Allow("1.1.1.1")
	*now = now.Add(11 * time.Minute)
	rl.Allow("2.2.2.2")

	rl.cleanupStaleEntries()

	if got := rl.ActiveClients(); got != 1 {
		t.Errorf("ActiveClients() = %d, want 1", got)
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(1)
	defer rl.Stop()

	handler := rl.Middleware(
		func(*http.Request) string { return "1.1.1.1" },
		func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
	)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	codes := []int{http.StatusOK, http.StatusTooManyRequests}
	for i, want := range codes {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != want {
			t.Errorf("request %d status = %d, want %d", i+1, rec.Code, want)
		}
		if want == http.StatusTooManyRequests && rec.Header().Get("Retry-After") != "60" {
			t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
		}
	}

	rl.Stop() // idempotent
}
