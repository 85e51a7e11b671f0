package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/socialgraph/socialgraph-api/internal/middleware"
)

func TestGetHandler(t *testing.T) {
	u := &User{ID: uuid.New(), Username: "visible"}
	h := NewHandler(NewService(newFakeRepo(u)))

	r := chi.NewRouter()
	r.Get("/users/{id}", h.Get)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "found", path: "/users/" + u.ID.String(), wantStatus: http.StatusOK},
		{name: "missing", path: "/users/" + uuid.New().String(), wantStatus: http.StatusNotFound},
		{name: "bad id", path: "/users/abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d body=%s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestUpdateMeHandler(t *testing.T) {
	u := &User{ID: uuid.New(), Username: "editor"}
	h := NewHandler(NewService(newFakeRepo(u)))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "updated", body: `{"display_name":"Editor"}`, wantStatus: http.StatusOK},
		{name: "too long", body: `{"display_name":"` + strings.Repeat("x", 101) + `"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "malformed", body: `{`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/users/me", bytes.NewBufferString(tt.body))
			req = req.WithContext(middleware.WithUser(req.Context(), u.ID, "member"))
			rr := httptest.NewRecorder()

			h.UpdateMe(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d body=%s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodPatch, "/users/me", bytes.NewBufferString(`{"bio":"hello"}`))
	req = req.WithContext(middleware.WithUser(req.Context(), u.ID, "member"))
	rr := httptest.NewRecorder()
	h.UpdateMe(rr, req)

	var out struct {
		Data ProfileResponse `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Data.DisplayName != "Editor" || out.Data.Bio != "hello" {
		t.Fatalf("unexpected profile %+v", out.Data)
	}
}
