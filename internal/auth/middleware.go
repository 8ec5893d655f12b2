package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
	"github.com/joao-fontenele/despensa-storefront/internal/httpapi"
)

type principalKey struct{}

func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

type Authenticator struct {
	tokens *Tokens
	logger *slog.Logger
}

func NewAuthenticator(tokens *Tokens, logger *slog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, logger: logger}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate answers 401 without a token and 403 for an invalid or expired
// one.
func (a *Authenticator) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpapi.WriteError(w, a.logger, apperr.New(apperr.KindUnauthorized, "authentication required"))
			return
		}

		principal, err := a.tokens.Verify(token)
		if err != nil {
			a.logger.Debug("token rejected", "error", err)
			httpapi.WriteError(w, a.logger, err)
			return
		}

		next(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	}
}

func (a *Authenticator) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		principal, _ := PrincipalFrom(r.Context())
		if !principal.IsAdmin {
			a.logger.Warn("admin route denied", "user_id", principal.UserID, "path", r.URL.Path)
			httpapi.WriteError(w, a.logger, apperr.New(apperr.KindForbidden, "access denied: administrator privileges required"))
			return
		}
		next(w, r)
	})
}
