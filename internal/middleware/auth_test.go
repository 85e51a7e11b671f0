package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/socialgraph/socialgraph-api/internal/pkg/jwt"
)

func TestAuth(t *testing.T) {
	svc := jwt.NewService("test-secret", time.Minute, time.Hour)
	userID := uuid.New()

	access, err := svc.GenerateAccessToken(userID, "member", false)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}
	banned, err := svc.GenerateAccessToken(userID, "member", true)
	if err != nil {
		t.Fatalf("generate banned token: %v", err)
	}
	refresh, _, _, err := svc.GenerateRefreshToken(userID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}
	expired, err := jwt.NewService("test-secret", -time.Minute, time.Hour).GenerateAccessToken(userID, "member", false)
	if err != nil {
		t.Fatalf("generate expired token: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid", header: "Bearer " + access, wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + access, wantStatus: http.StatusOK},
		{name: "missing", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + access, wantStatus: http.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + refresh, wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc.def.ghi", wantStatus: http.StatusUnauthorized},
		{name: "banned", header: "Bearer " + banned, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen uuid.UUID
			h := Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d body=%s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantStatus == http.StatusOK && seen != userID {
				t.Fatalf("expected user %s on context, got %s", userID, seen)
			}
		})
	}
}

func TestGetUserIDWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetUserID(req.Context()); got != uuid.Nil {
		t.Fatalf("expected nil uuid, got %s", got)
	}
}
