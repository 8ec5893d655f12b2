package catalog

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

func newTestHandler(t *testing.T, products ...domain.Product) (*Handler, *MemoryStore) {
	t.Helper()
	store := newStore(t, products...)
	return NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestHandler_HandleListActive(t *testing.T) {
	hidden := product("hidden", 1)
	hidden.Active = false
	handler, _ := newTestHandler(t, product("a", 1), hidden)

	rec := httptest.NewRecorder()
	handler.HandleListActive(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var products []domain.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &products); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(products) != 1 || products[0].ID != "a" {
		t.Errorf("expected only the active product, got %+v", products)
	}
}

func TestHandler_HandleCreate(t *testing.T) {
	t.Run("creates product", func(t *testing.T) {
		handler, store := newTestHandler(t)

		body := `{"name":"Yerba","category":"pantry","price":20000,"stock":10,"description":"Yerba mate"}`
		rec := httptest.NewRecorder()
		handler.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body)))

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var created domain.Product
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if created.ID == "" || !created.Active || created.Image != domain.DefaultProductImage {
			t.Errorf("unexpected product: %+v", created)
		}
		if _, err := store.Get(t.Context(), created.ID); err != nil {
			t.Errorf("product not stored: %v", err)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"missing fields", `{"name":"Yerba"}`},
		{"negative stock", `{"name":"Yerba","category":"pantry","price":1,"stock":-2,"description":"x"}`},
		{"zero price", `{"name":"Yerba","category":"pantry","price":0,"stock":1,"description":"x"}`},
		{"unknown field", `{"name":"Yerba","category":"pantry","price":1,"stock":1,"description":"x","sku":"1"}`},
		{"malformed", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t)

			rec := httptest.NewRecorder()
			handler.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(tt.body)))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandler_HandleUpdate(t *testing.T) {
	body := `{"name":"Arroz","category":"pantry","price":9000,"stock":40,"description":"Arroz"}`

	t.Run("updates product", func(t *testing.T) {
		handler, store := newTestHandler(t, product("a", 1))

		req := httptest.NewRequest(http.MethodPut, "/admin/products/a", strings.NewReader(body))
		req.SetPathValue("id", "a")
		rec := httptest.NewRecorder()
		handler.HandleUpdate(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := stockOf(t, store, "a"); got != 40 {
			t.Errorf("expected stock 40, got %d", got)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodPut, "/admin/products/x", strings.NewReader(body))
		req.SetPathValue("id", "x")
		rec := httptest.NewRecorder()
		handler.HandleUpdate(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleSetActive(t *testing.T) {
	handler, store := newTestHandler(t, product("a", 1))

	req := httptest.NewRequest(http.MethodPatch, "/admin/products/a/active", strings.NewReader(`{"active":false}`))
	req.SetPathValue("id", "a")
	rec := httptest.NewRecorder()
	handler.HandleSetActive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	p, err := store.Get(t.Context(), "a")
	if err != nil {
		t.Fatal(err)
	}
	if p.Active {
		t.Error("expected product to be hidden")
	}

	req = httptest.NewRequest(http.MethodPatch, "/admin/products/a/active", strings.NewReader(`{}`))
	req.SetPathValue("id", "a")
	rec = httptest.NewRecorder()
	handler.HandleSetActive(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 without active, got %d", rec.Code)
	}
}

func TestHandler_HandleDelete(t *testing.T) {
	handler, _ := newTestHandler(t, product("a", 1))

	for _, want := range []int{http.StatusOK, http.StatusNotFound} {
		req := httptest.NewRequest(http.MethodDelete, "/admin/products/a", nil)
		req.SetPathValue("id", "a")
		rec := httptest.NewRecorder()
		handler.HandleDelete(rec, req)

		if rec.Code != want {
			t.Errorf("expected status %d, got %d", want, rec.Code)
		}
	}
}
