package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/despensa-storefront/internal/catalog"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
	"github.com/joao-fontenele/despensa-storefront/internal/httpapi"
)

// SalesReader is satisfied by RedisSales and by the order ledgers.
type SalesReader interface {
	SalesSummary(ctx context.Context) (domain.SalesSummary, error)
}

// unitsReader is implemented by projections that track per-product sales.
type unitsReader interface {
	UnitsSold(ctx context.Context) (map[string]int64, error)
}

type Handler struct {
	catalog           catalog.Store
	sales             SalesReader
	lowStockThreshold int
	logger            *slog.Logger
}

func NewHandler(store catalog.Store, sales SalesReader, lowStockThreshold int, logger *slog.Logger) *Handler {
	return &Handler{
		catalog:           store,
		sales:             sales,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

type dashboard struct {
	TotalProducts    int              `json:"total_products"`
	LowStockProducts int              `json:"low_stock_products"`
	TotalOrders      int64            `json:"total_orders"`
	TotalSales       int64            `json:"total_sales"`
	UnitsSold        map[string]int64 `json:"units_sold,omitempty"`
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	catalogStats, err := h.catalog.Stats(r.Context(), h.lowStockThreshold)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	sales, err := h.sales.SalesSummary(r.Context())
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	resp := dashboard{
		TotalProducts:    catalogStats.ActiveProducts,
		LowStockProducts: catalogStats.LowStockProducts,
		TotalOrders:      sales.TotalOrders,
		TotalSales:       sales.TotalSales,
	}

	if units, ok := h.sales.(unitsReader); ok {
		resp.UnitsSold, err = units.UnitsSold(r.Context())
		if err != nil {
			httpapi.WriteError(w, h.logger, err)
			return
		}
	}

	httpapi.WriteJSON(w, h.logger, http.StatusOK, resp)
}
