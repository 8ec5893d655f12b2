// Package httpapi holds the JSON request/response plumbing shared by handlers.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
)

const maxBodyBytes = 1 << 20

// Validator is implemented by request bodies that check their own fields.
type Validator interface {
	Validate() error
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// WriteError writes err using its apperr kind. Internal causes are logged,
// never sent to the client.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal(err)
	}

	if appErr.Kind == apperr.KindInternal {
		logger.Error("request failed", "error", err)
	}

	WriteJSON(w, logger, appErr.Kind.HTTPStatus(), errorResponse{
		Error:   appErr.Message,
		Details: appErr.Details,
	})
}

// Decode reads a single JSON object into dst, rejecting unknown fields and
// trailing data, then runs dst's Validate if it has one.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.Validation("request body is required")
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Wrap(err, apperr.KindValidation, fmt.Sprintf("invalid request body: %v", err))
	}

	if dec.More() {
		return apperr.Validation("invalid request body: unexpected trailing data")
	}

	if v, ok := dst.(Validator); ok {
		return v.Validate()
	}
	return nil
}
