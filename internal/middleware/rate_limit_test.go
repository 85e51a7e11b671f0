package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestKeyedRateLimiterIsolatesKeys(t *testing.T) {
	limiter := NewRateLimiter(1, time.Hour, 2).(*keyedRateLimiter)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("a") || !limiter.Allow("a") {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if limiter.Allow("a") {
		t.Fatal("expected third request to be rejected")
	}
	if !limiter.Allow("b") {
		t.Fatal("expected another key to have its own bucket")
	}

	now = now.Add(time.Hour)
	if !limiter.Allow("a") {
		t.Fatal("expected a token to be refilled after the window")
	}
}

func TestKeyedRateLimiterForgetsIdleKeys(t *testing.T) {
	limiter := NewRateLimiter(1, time.Hour, 1).(*keyedRateLimiter)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("idle")
	now = now.Add(limiter.ttl + time.Second)
	limiter.Allow("fresh")

	if _, ok := limiter.visitors["idle"]; ok {
		t.Fatal("expected idle visitor to be collected")
	}
	if _, ok := limiter.visitors["fresh"]; !ok {
		t.Fatal("expected fresh visitor to be kept")
	}
}

type recordingLimiter struct {
	keys  []string
	allow bool
}

func (l *recordingLimiter) Allow(key string) bool {
	l.keys = append(l.keys, key)
	return l.allow
}

func TestRateLimitMiddleware(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		allow      bool
		withUser   bool
		wantStatus int
		wantKey    string
	}{
		{name: "allowed anonymous", allow: true, wantStatus: http.StatusOK, wantKey: "ip:192.0.2.1"},
		{name: "allowed user", allow: true, withUser: true, wantStatus: http.StatusOK, wantKey: "user:" + userID.String()},
		{name: "rejected", allow: false, withUser: true, wantStatus: http.StatusTooManyRequests, wantKey: "user:" + userID.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := &recordingLimiter{allow: tt.allow}
			h := RateLimit(limiter, 30*time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/follow", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			if tt.withUser {
				req = req.WithContext(WithUser(req.Context(), userID, "member"))
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if len(limiter.keys) != 1 || limiter.keys[0] != tt.wantKey {
				t.Fatalf("expected key %q, got %v", tt.wantKey, limiter.keys)
			}
			if tt.wantStatus == http.StatusTooManyRequests && rr.Header().Get("Retry-After") != "30" {
				t.Fatalf("expected Retry-After 30, got %q", rr.Header().Get("Retry-After"))
			}
		})
	}
}
