package checkout

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/auth"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
	"github.com/joao-fontenele/despensa-storefront/internal/httpapi"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type itemRequest struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     *int64 `json:"price"`
	Quantity  *int   `json:"quantity"`
	Image     string `json:"image"`
}

type checkoutRequest struct {
	Items          []itemRequest `json:"items"`
	Total          *int64        `json:"total"`
	PaymentMethod  string        `json:"payment_method"`
	DeliveryOption string        `json:"delivery_option"`
}

func (r *checkoutRequest) Validate() error {
	if len(r.Items) == 0 {
		return apperr.Validation("cart is empty")
	}

	var missing []string
	if r.Total == nil {
		missing = append(missing, "total")
	}
	if r.PaymentMethod == "" {
		missing = append(missing, "payment_method")
	}
	if r.DeliveryOption == "" {
		missing = append(missing, "delivery_option")
	}
	if len(missing) > 0 {
		return apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}

	for i, item := range r.Items {
		if item.ProductID == "" || item.Price == nil || item.Quantity == nil {
			return apperr.Validation("item %d: product_id, price and quantity are required", i)
		}
		if *item.Quantity > MaxLineQuantity {
			return apperr.Validation("item %d: quantity cannot exceed %d", i, MaxLineQuantity)
		}
	}
	return nil
}

// HandleCheckout places an order for the authenticated user.
// Display fields sent with each item are ignored in favour of the catalog.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httpapi.WriteError(w, h.logger, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}

	var req checkoutRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	lines := make([]Line, len(req.Items))
	for i, item := range req.Items {
		lines[i] = Line{ProductID: item.ProductID, Price: *item.Price, Quantity: *item.Quantity}
	}

	order, err := h.service.Checkout(r.Context(), Request{
		UserID:         principal.UserID,
		Items:          lines,
		Total:          *req.Total,
		PaymentMethod:  req.PaymentMethod,
		DeliveryOption: domain.DeliveryOption(req.DeliveryOption),
	})
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	httpapi.WriteJSON(w, h.logger, http.StatusCreated, order)
}
