package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		query      string
		wantNumber int
		wantLimit  int
		wantOffset int
	}{
		{query: "", wantNumber: 1, wantLimit: 20, wantOffset: 0},
		{query: "?page=3&limit=10", wantNumber: 3, wantLimit: 10, wantOffset: 20},
		{query: "?page=0&limit=500", wantNumber: 1, wantLimit: 20, wantOffset: 0},
		{query: "?page=x&limit=-1", wantNumber: 1, wantLimit: 20, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := ParsePage(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
			if p.Number != tt.wantNumber || p.Limit != tt.wantLimit || p.Offset() != tt.wantOffset {
				t.Fatalf("expected %d/%d/%d, got %d/%d/%d", tt.wantNumber, tt.wantLimit, tt.wantOffset, p.Number, p.Limit, p.Offset())
			}
		})
	}
}

func TestPageMeta(t *testing.T) {
	m := Page{Number: 2, Limit: 10}.Meta(25)
	if m.Pages != 3 || !m.HasNext || !m.HasPrev {
		t.Fatalf("unexpected meta %+v", m)
	}
	m = Page{Number: 1, Limit: 10}.Meta(0)
	if m.Pages != 0 || m.HasNext || m.HasPrev {
		t.Fatalf("unexpected meta for empty result %+v", m)
	}
}

func TestValidationErrorEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	ValidationError(rr, map[string]string{"status": "Must be ACCEPTED or REFUSED"})

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	var out Response
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Success || out.Error == nil || out.Error.Details["status"] == "" {
		t.Fatalf("unexpected envelope %+v", out)
	}
}
