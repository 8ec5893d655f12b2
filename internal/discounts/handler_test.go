package discounts

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

func newTestHandler(t *testing.T, at time.Time, rules ...domain.DiscountRule) *Handler {
	t.Helper()
	store := newRules(t, rules...)
	engine := NewEngine(store, asuncion, WithClock(func() time.Time { return at }))
	return NewHandler(store, engine, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandler_HandleToday(t *testing.T) {
	monday := time.Date(2025, time.June, 2, 12, 0, 0, 0, asuncion)
	rule := domain.DiscountRule{Weekday: "monday", Percentage: 10, Scope: "pantry", Text: "10% OFF", Active: true}

	t.Run("returns the active rule", func(t *testing.T) {
		handler := newTestHandler(t, monday, rule)

		rec := httptest.NewRecorder()
		handler.HandleToday(rec, httptest.NewRequest(http.MethodGet, "/discounts/today", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"percentage":10`) {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("null without a rule", func(t *testing.T) {
		handler := newTestHandler(t, monday.AddDate(0, 0, 1), rule)

		rec := httptest.NewRecorder()
		handler.HandleToday(rec, httptest.NewRequest(http.MethodGet, "/discounts/today", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if strings.TrimSpace(rec.Body.String()) != "null" {
			t.Errorf("expected null, got %s", rec.Body.String())
		}
	})
}

func TestHandler_HandleCreate(t *testing.T) {
	monday := time.Date(2025, time.June, 2, 12, 0, 0, 0, asuncion)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"creates rule", `{"weekday":"Friday","percentage":15,"scope":"prepared-food","text":"15% OFF"}`, http.StatusCreated},
		{"weekday taken", `{"weekday":"monday","percentage":15,"scope":"all","text":"dup"}`, http.StatusBadRequest},
		{"percentage out of range", `{"weekday":"friday","percentage":150,"scope":"all","text":"x"}`, http.StatusBadRequest},
		{"missing fields", `{"weekday":"friday"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, monday, domain.DiscountRule{Weekday: "monday", Percentage: 10, Scope: "all", Text: "x", Active: true})

			rec := httptest.NewRecorder()
			handler.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/admin/discounts", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandler_HandleUpdate_NotFound(t *testing.T) {
	handler := newTestHandler(t, time.Now())

	req := httptest.NewRequest(http.MethodPut, "/admin/discounts/x", strings.NewReader(`{"weekday":"monday","percentage":10,"scope":"all","text":"x"}`))
	req.SetPathValue("id", "x")
	rec := httptest.NewRecorder()
	handler.HandleUpdate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}
