package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/joao-fontenele/despensa-storefront/internal/httpapi"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Health struct {
	db     Pinger
	logger *slog.Logger
}

// NewHealth reports healthy without a database when db is nil.
func NewHealth(db Pinger, logger *slog.Logger) *Health {
	return &Health{db: db, logger: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

func (h *Health) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		httpapi.WriteJSON(w, h.logger, http.StatusOK, healthResponse{Status: "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("health check failed", "error", err)
		httpapi.WriteJSON(w, h.logger, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Database: "down"})
		return
	}

	httpapi.WriteJSON(w, h.logger, http.StatusOK, healthResponse{Status: "ok", Database: "up"})
}
