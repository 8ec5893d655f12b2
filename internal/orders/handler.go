package orders

import (
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/auth"
	"github.com/joao-fontenele/despensa-storefront/internal/httpapi"
)

type Handler struct {
	ledger Ledger
	logger *slog.Logger
}

func NewHandler(ledger Ledger, logger *slog.Logger) *Handler {
	return &Handler{
		ledger: ledger,
		logger: logger,
	}
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httpapi.WriteError(w, h.logger, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}

	orders, err := h.ledger.ListForUser(r.Context(), principal.UserID)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("orders listed", "user_id", principal.UserID, "count", len(orders))
	httpapi.WriteJSON(w, h.logger, http.StatusOK, orders)
}

// HandleGetMine returns one of the caller's orders. Orders owned by someone
// else are reported as missing unless the caller is an admin.
func (h *Handler) HandleGetMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httpapi.WriteError(w, h.logger, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}

	id := r.PathValue("id")
	order, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	if order.UserID != principal.UserID && !principal.IsAdmin {
		httpapi.WriteError(w, h.logger, apperr.NotFound("order %s not found", id))
		return
	}

	httpapi.WriteJSON(w, h.logger, http.StatusOK, order)
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.ledger.ListAll(r.Context())
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("all orders listed", "count", len(orders))
	httpapi.WriteJSON(w, h.logger, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (r *updateStatusRequest) Validate() error {
	if r.Status == "" {
		return apperr.Validation("missing required fields: status")
	}
	return nil
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpapi.WriteError(w, h.logger, apperr.Validation("missing order id"))
		return
	}

	var req updateStatusRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	status, err := ParseStatus(req.Status)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	order, err := h.ledger.TransitionStatus(r.Context(), id, status)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	httpapi.WriteJSON(w, h.logger, http.StatusOK, order)
}
