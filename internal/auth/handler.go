package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
	"github.com/joao-fontenele/despensa-storefront/internal/httpapi"
)

const minPasswordLength = 6

type Handler struct {
	users  UserStore
	tokens *Tokens
	logger *slog.Logger
}

func NewHandler(users UserStore, tokens *Tokens, logger *slog.Logger) *Handler {
	return &Handler{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r *registerRequest) Validate() error {
	r.Email = NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)

	var missing []string
	if r.Email == "" {
		missing = append(missing, "email")
	}
	if r.Password == "" {
		missing = append(missing, "password")
	}
	if r.Name == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}

	if !strings.Contains(r.Email, "@") {
		return apperr.Validation("invalid email address")
	}
	if len(r.Password) < minPasswordLength {
		return apperr.Validation("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return apperr.Validation("email and password are required")
	}
	return nil
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		httpapi.WriteError(w, h.logger, apperr.Internal(err))
		return
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		httpapi.WriteError(w, h.logger, apperr.Internal(err))
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	httpapi.WriteJSON(w, h.logger, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.logger, err)
		return
	}

	invalid := apperr.Validation("invalid email or password")

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			httpapi.WriteError(w, h.logger, invalid)
			return
		}
		httpapi.WriteError(w, h.logger, err)
		return
	}

	if !CheckPassword(user.PasswordHash, req.Password) {
		h.logger.Info("login rejected", "user_id", user.ID)
		httpapi.WriteError(w, h.logger, invalid)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		httpapi.WriteError(w, h.logger, apperr.Internal(err))
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	httpapi.WriteJSON(w, h.logger, http.StatusOK, sessionResponse{Token: token, User: user})
}
