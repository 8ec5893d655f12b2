package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindInsufficientStock, http.StatusBadRequest},
		{KindDuplicate, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindPriceMismatch, http.StatusConflict},
		{KindInvalidTransition, http.StatusConflict},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.HTTPStatus(); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("reserve: %w", New(KindInsufficientStock, "insufficient stock"))

	if got := KindOf(wrapped); got != KindInsufficientStock {
		t.Errorf("expected insufficient_stock, got %s", got)
	}
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Errorf("expected internal, got %s", got)
	}
	if Is(nil, KindInternal) {
		t.Error("nil error should carry no kind")
	}
}

func TestInternal_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause)

	if err.Message != "internal server error" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}
