package orders

import (
	"testing"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		from, to domain.OrderStatus
		ok       bool
	}{
		{domain.OrderStatusConfirmed, domain.OrderStatusPreparing, true},
		{domain.OrderStatusPreparing, domain.OrderStatusShipped, true},
		{domain.OrderStatusShipped, domain.OrderStatusDelivered, true},
		{domain.OrderStatusConfirmed, domain.OrderStatusConfirmed, true},
		{domain.OrderStatusDelivered, domain.OrderStatusDelivered, true},
		{domain.OrderStatusConfirmed, domain.OrderStatusShipped, false},
		{domain.OrderStatusConfirmed, domain.OrderStatusDelivered, false},
		{domain.OrderStatusShipped, domain.OrderStatusPreparing, false},
		{domain.OrderStatusDelivered, domain.OrderStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to)
			if tt.ok && err != nil {
				t.Errorf("expected transition to be allowed, got %v", err)
			}
			if !tt.ok && apperr.KindOf(err) != apperr.KindInvalidTransition {
				t.Errorf("expected invalid transition, got %v", err)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus("shipped"); err != nil || s != domain.OrderStatusShipped {
		t.Errorf("expected shipped, got %q, %v", s, err)
	}
	for _, bad := range []string{"", "cancelled", "SHIPPED"} {
		if _, err := ParseStatus(bad); apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("%q: expected validation error, got %v", bad, err)
		}
	}
}
