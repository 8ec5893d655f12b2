package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

func TestAuthenticator(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	authn := NewAuthenticator(tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))

	customer, err := tokens.Issue(ana)
	require.NoError(t, err)
	admin, err := tokens.Issue(&domain.User{ID: "admin-1", Email: "admin@example.com", IsAdmin: true})
	require.NoError(t, err)

	var seen domain.Principal
	ok := func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}

	tests := []struct {
		name       string
		header     string
		adminOnly  bool
		wantStatus int
		wantUser   string
	}{
		{"no header", "", false, http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + customer, false, http.StatusUnauthorized, ""},
		{"invalid token", "Bearer nope", false, http.StatusForbidden, ""},
		{"customer", "Bearer " + customer, false, http.StatusNoContent, ana.ID},
		{"lowercase scheme", "bearer " + customer, false, http.StatusNoContent, ana.ID},
		{"customer on admin route", "Bearer " + customer, true, http.StatusForbidden, ""},
		{"admin on admin route", "Bearer " + admin, true, http.StatusNoContent, "admin-1"},
		{"anonymous on admin route", "", true, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = domain.Principal{}
			handler := authn.Authenticate(ok)
			if tt.adminOnly {
				handler = authn.RequireAdmin(ok)
			}

			req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, seen.UserID)
		})
	}
}
