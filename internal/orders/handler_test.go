package orders

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/despensa-storefront/internal/auth"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

func newHandler(t *testing.T) (*Handler, *MemoryLedger, *domain.Order) {
	t.Helper()
	ledger := NewMemoryLedger(nil)
	order := placeOrder(t, ledger, "ana", 15300, time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC))
	return NewHandler(ledger, slog.New(slog.NewTextHandler(io.Discard, nil))), ledger, order
}

func asUser(r *http.Request, userID string, admin bool) *http.Request {
	return r.WithContext(auth.WithPrincipal(r.Context(), domain.Principal{UserID: userID, IsAdmin: admin}))
}

func TestHandler_GetMine(t *testing.T) {
	h, _, order := newHandler(t)

	tests := []struct {
		name       string
		userID     string
		admin      bool
		id         string
		wantStatus int
	}{
		{"owner", "ana", false, order.ID, http.StatusOK},
		{"someone else", "bob", false, order.ID, http.StatusNotFound},
		{"admin", "root", true, order.ID, http.StatusOK},
		{"missing order", "ana", false, "missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/orders/"+tt.id, nil)
			req.SetPathValue("id", tt.id)
			rec := httptest.NewRecorder()

			h.HandleGetMine(rec, asUser(req, tt.userID, tt.admin))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_ListMine(t *testing.T) {
	h, _, order := newHandler(t)

	t.Run("owner sees their orders", func(t *testing.T) {
		req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/orders", nil)
		rec := httptest.NewRecorder()
		h.HandleListMine(rec, asUser(req, "ana", false))

		require.Equal(t, http.StatusOK, rec.Code)
		var got []domain.Order
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		require.Len(t, got, 1)
		assert.Equal(t, order.ID, got[0].ID)
	})

	t.Run("other user gets an empty list", func(t *testing.T) {
		req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/orders", nil)
		rec := httptest.NewRecorder()
		h.HandleListMine(rec, asUser(req, "bob", false))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("no principal", func(t *testing.T) {
		req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/orders", nil)
		rec := httptest.NewRecorder()
		h.HandleListMine(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandler_UpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
	}{
		{"next step", "", `{"status":"preparing"}`, http.StatusOK},
		{"same status", "", `{"status":"confirmed"}`, http.StatusOK},
		{"skip ahead", "", `{"status":"delivered"}`, http.StatusConflict},
		{"unknown status", "", `{"status":"cancelled"}`, http.StatusBadRequest},
		{"missing status", "", `{}`, http.StatusBadRequest},
		{"unknown order", "missing", `{"status":"preparing"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, order := newHandler(t)
			id := tt.id
			if id == "" {
				id = order.ID
			}

			req := httptest.NewRequestWithContext(t.Context(), http.MethodPut, "/admin/orders/"+id, strings.NewReader(tt.body))
			req.SetPathValue("id", id)
			rec := httptest.NewRecorder()

			h.HandleUpdateStatus(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}
