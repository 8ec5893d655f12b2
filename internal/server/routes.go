// Package server assembles the storefront HTTP surface.
package server

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/despensa-storefront/internal/auth"
	"github.com/joao-fontenele/despensa-storefront/internal/catalog"
	"github.com/joao-fontenele/despensa-storefront/internal/checkout"
	"github.com/joao-fontenele/despensa-storefront/internal/discounts"
	"github.com/joao-fontenele/despensa-storefront/internal/orders"
	"github.com/joao-fontenele/despensa-storefront/internal/stats"
	"github.com/joao-fontenele/despensa-storefront/internal/telemetry"
)

type Handlers struct {
	Auth      *auth.Handler
	Catalog   *catalog.Handler
	Discounts *discounts.Handler
	Checkout  *checkout.Handler
	Orders    *orders.Handler
	Stats     *stats.Handler
	Health    *Health
	// Metrics is optional.
	Metrics http.Handler
}

func NewMux(h Handlers, authn *auth.Authenticator) *http.ServeMux {
	public := telemetry.WithHTTPRoute
	user := func(next http.HandlerFunc) http.HandlerFunc {
		return telemetry.WithHTTPRoute(authn.Authenticate(next))
	}
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return telemetry.WithHTTPRoute(authn.RequireAdmin(next))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", public(h.Auth.HandleRegister))
	mux.HandleFunc("POST /auth/login", public(h.Auth.HandleLogin))

	mux.HandleFunc("GET /products", public(h.Catalog.HandleListActive))
	mux.HandleFunc("GET /discounts/today", public(h.Discounts.HandleToday))

	mux.HandleFunc("POST /orders", user(h.Checkout.HandleCheckout))
	mux.HandleFunc("GET /orders", user(h.Orders.HandleListMine))
	mux.HandleFunc("GET /orders/{id}", user(h.Orders.HandleGetMine))

	mux.HandleFunc("GET /admin/products", admin(h.Catalog.HandleListAll))
	mux.HandleFunc("POST /admin/products", admin(h.Catalog.HandleCreate))
	mux.HandleFunc("PUT /admin/products/{id}", admin(h.Catalog.HandleUpdate))
	mux.HandleFunc("PATCH /admin/products/{id}/active", admin(h.Catalog.HandleSetActive))
	mux.HandleFunc("DELETE /admin/products/{id}", admin(h.Catalog.HandleDelete))

	mux.HandleFunc("GET /admin/discounts", admin(h.Discounts.HandleList))
	mux.HandleFunc("POST /admin/discounts", admin(h.Discounts.HandleCreate))
	mux.HandleFunc("PUT /admin/discounts/{id}", admin(h.Discounts.HandleUpdate))
	mux.HandleFunc("DELETE /admin/discounts/{id}", admin(h.Discounts.HandleDelete))

	mux.HandleFunc("GET /admin/orders", admin(h.Orders.HandleListAll))
	mux.HandleFunc("PUT /admin/orders/{id}", admin(h.Orders.HandleUpdateStatus))

	mux.HandleFunc("GET /admin/stats", admin(h.Stats.HandleStats))

	mux.HandleFunc("GET /healthz", h.Health.HandleHealth)
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}

	return mux
}

// Instrument wraps the mux in server spans named after the matched route.
func Instrument(mux http.Handler, service string) http.Handler {
	return otelhttp.NewHandler(mux, service,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			if r.Pattern != "" {
				return r.Pattern
			}
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
		}),
	)
}
