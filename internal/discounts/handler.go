package discounts

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
	engine *Engine
	logger *slog.Logger
}

func NewHandler(store Store, engine *Engine, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		engine: engine,
		logger: logger,
	}
}

type ruleRequest struct {
	Weekday    *string `json:"weekday"`
	Percentage *int    `json:"percentage"`
	Scope      *string `json:"scope"`
	Text       *string `json:"text"`
	Active     *bool   `json:"active"`
}

func (r *ruleRequest) Validate() error {
	var missing []string
	if r.Weekday == nil {
		missing = append(missing, "weekday")
	}
	if r.Percentage == nil {
		missing = append(missing, "percentage")
	}
	if r.Scope == nil {
		missing = append(missing, "scope")
	}
	if r.Text == nil {
		missing = append(missing, "text")
	}
	if len(missing) > 0 {
		return apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (r *ruleRequest) rule(id string) *domain.DiscountRule {
	rule := &domain.DiscountRule{
		ID:         id,
		Weekday:    *r.Weekday,
		Percentage: *r.Percentage,
		Scope:      *r.Scope,
		Text:       *r.Text,
		Active:     true,
	}
	if r.Active != nil {
		rule.Active = *r.Active
	}
	return rule
}

// HandleToday responds with today's active rule, or null.
func (h *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	rule, err := h.engine.ActiveToday(r.Context())
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	httpapi.WriteJSON(w, h.logger, http.StatusOK, rule)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	rules, err := h.store.List(r.Context())
	if err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	httpapi.WriteJSON(w, h.logger, http.StatusOK, rules)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	rule := req.rule("")
	if err := Validate(rule); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	if err := h.store.Create(r.Context(), rule); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("discount rule created", "rule_id", rule.ID, "weekday", rule.Weekday)
	httpapi.WriteJSON(w, h.logger, http.StatusCreated, rule)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpapi.WriteError(w, h.logger, apperr.Validation("missing discount rule id"))
		return
	}

	var req ruleRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	rule := req.rule(id)
	if err := Validate(rule); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	if err := h.store.Update(r.Context(), rule); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("discount rule updated", "rule_id", rule.ID, "weekday", rule.Weekday)
	httpapi.WriteJSON(w, h.logger, http.StatusOK, rule)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpapi.WriteError(w, h.logger, apperr.Validation("missing discount rule id"))
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("discount rule deleted", "rule_id", id)
	httpapi.WriteJSON(w, h.logger, http.StatusOK, map[string]string{"message": "discount rule deleted"})
}
