package catalog

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
	"github.com/joao-fontenele/despensa-storefront/internal/httpapi"
)

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

type productRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Price       *int64  `json:"price"`
	Stock       *int    `json:"stock"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Active      *bool   `json:"active"`
}

func (r *productRequest) Validate() error {
	var missing []string
	if r.Name == nil {
		missing = append(missing, "name")
	}
	if r.Category == nil {
		missing = append(missing, "category")
	}
	if r.Price == nil {
		missing = append(missing, "price")
	}
	if r.Stock == nil {
		missing = append(missing, "stock")
	}
	if r.Description == nil {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (r *productRequest) product(id string) *domain.Product {
	p := &domain.Product{
		ID:          id,
		Name:        *r.Name,
		Category:    *r.Category,
		Price:       *r.Price,
		Stock:       *r.Stock,
		Description: *r.Description,
		Active:      true,
	}
	if r.Image != nil {
		p.Image = *r.Image
	}
	if r.Active != nil {
		p.Active = *r.Active
	}
	return p
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

func (r *setActiveRequest) Validate() error {
	if r.Active == nil {
		return apperr.Validation("missing required fields: active")
	}
	return nil
}

func (h *Handler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListActive(r.Context())
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	h.logger.Debug("products listed", "count", len(products))
	httpapi.WriteJSON(w, h.logger, http.StatusOK, products)
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListAll(r.Context())
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	httpapi.WriteJSON(w, h.logger, http.StatusOK, products)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	product := req.product("")
	if err := Validate(product); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	if err := h.store.Create(r.Context(), product); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "name", product.Name)
	httpapi.WriteJSON(w, h.logger, http.StatusCreated, product)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpapi.WriteError(w, h.logger, apperr.Validation("missing product id"))
		return
	}

	var req productRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	product := req.product(id)
	if err := Validate(product); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	if err := h.store.Update(r.Context(), product); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("product updated", "product_id", product.ID)
	httpapi.WriteJSON(w, h.logger, http.StatusOK, product)
}

func (h *Handler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpapi.WriteError(w, h.logger, apperr.Validation("missing product id"))
		return
	}

	var req setActiveRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	product, err := h.store.SetActive(r.Context(), id, *req.Active)
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("product visibility changed", "product_id", id, "active", product.Active)
	httpapi.WriteJSON(w, h.logger, http.StatusOK, product)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpapi.WriteError(w, h.logger, apperr.Validation("missing product id"))
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("product deleted", "product_id", id)
	httpapi.WriteJSON(w, h.logger, http.StatusOK, map[string]string{"message": "product deleted"})
}
