package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/joao-fontenele/despensa-storefront/internal/auth"
	"github.com/joao-fontenele/despensa-storefront/internal/catalog"
	"github.com/joao-fontenele/despensa-storefront/internal/checkout"
	"github.com/joao-fontenele/despensa-storefront/internal/discounts"
	"github.com/joao-fontenele/despensa-storefront/internal/orders"
	"github.com/joao-fontenele/despensa-storefront/internal/pricing"
	"github.com/joao-fontenele/despensa-storefront/internal/stats"
)

// Stores are the storage backends behind every handler.
type Stores struct {
	Catalog   catalog.Store
	Discounts discounts.Store
	Ledger    orders.Ledger
	Users     auth.UserStore
	// DB is pinged by /healthz; nil for in-memory stores.
	DB Pinger
}

func MemoryStores() Stores {
	users := auth.NewMemoryUsers()
	return Stores{
		Catalog:   catalog.NewMemoryStore(),
		Discounts: discounts.NewMemoryStore(),
		Ledger:    orders.NewMemoryLedger(users),
		Users:     users,
	}
}

func PostgresStores(db *sql.DB) Stores {
	return Stores{
		Catalog:   catalog.NewPostgresStore(db),
		Discounts: discounts.NewPostgresStore(db),
		Ledger:    orders.NewPostgresLedger(db),
		Users:     auth.NewPostgresUsers(db),
		DB:        db,
	}
}

type Options struct {
	Location          *time.Location
	Clock             func() time.Time
	DeliveryFee       int64
	JWTSecret         string
	TokenTTL          time.Duration
	LowStockThreshold int
	// Publisher receives order events; nil disables publishing.
	Publisher checkout.Publisher
	// Sales backs /admin/stats; nil falls back to the ledger.
	Sales   stats.SalesReader
	Metrics http.Handler
}

// New wires the services and returns the routed, uninstrumented mux.
func New(stores Stores, opts Options, logger *slog.Logger) (*http.ServeMux, error) {
	var engineOpts []discounts.EngineOption
	if opts.Clock != nil {
		engineOpts = append(engineOpts, discounts.WithClock(opts.Clock))
	}
	engine := discounts.NewEngine(stores.Discounts, opts.Location, engineOpts...)

	service, err := checkout.NewService(stores.Catalog, engine, pricing.NewCalculator(opts.DeliveryFee), stores.Ledger, opts.Publisher, logger)
	if err != nil {
		return nil, err
	}

	sales := opts.Sales
	if sales == nil {
		sales = stores.Ledger
	}

	tokens := auth.NewTokens(opts.JWTSecret, opts.TokenTTL)

	handlers := Handlers{
		Auth:      auth.NewHandler(stores.Users, tokens, logger),
		Catalog:   catalog.NewHandler(stores.Catalog, logger),
		Discounts: discounts.NewHandler(stores.Discounts, engine, logger),
		Checkout:  checkout.NewHandler(service, logger),
		Orders:    orders.NewHandler(stores.Ledger, logger),
		Stats:     stats.NewHandler(stores.Catalog, sales, opts.LowStockThreshold, logger),
		Health:    NewHealth(stores.DB, logger),
		Metrics:   opts.Metrics,
	}

	return NewMux(handlers, auth.NewAuthenticator(tokens, logger)), nil
}
