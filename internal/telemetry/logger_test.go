package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("development logs debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, "development")

		logger.Debug("reservation attempted", "product_id", "rice")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
		}
		if entry["msg"] != "reservation attempted" {
			t.Errorf("unexpected msg: %v", entry["msg"])
		}
		if entry["product_id"] != "rice" {
			t.Errorf("unexpected product_id: %v", entry["product_id"])
		}
	})

	t.Run("production drops debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, "production")

		logger.Debug("noise")
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
		if !logger.Enabled(context.Background(), slog.LevelInfo) {
			t.Error("expected info to be enabled")
		}
	})
}

func TestWithHTTPRoute(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("GET /orders/{id}", WithHTTPRoute(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.Pattern != "GET /orders/{id}" {
			t.Errorf("unexpected pattern %q", r.Pattern)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/42", nil))

	if !called {
		t.Fatal("expected wrapped handler to run")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
