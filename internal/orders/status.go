package orders

import (
	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

// next is the only forward move allowed from each status. Delivered is
// terminal.
var next = map[domain.OrderStatus]domain.OrderStatus{
	domain.OrderStatusConfirmed: domain.OrderStatusPreparing,
	domain.OrderStatusPreparing: domain.OrderStatusShipped,
	domain.OrderStatusShipped:   domain.OrderStatusDelivered,
}

func ParseStatus(s string) (domain.OrderStatus, error) {
	switch status := domain.OrderStatus(s); status {
	case domain.OrderStatusConfirmed, domain.OrderStatusPreparing, domain.OrderStatusShipped, domain.OrderStatusDelivered:
		return status, nil
	default:
		return "", apperr.Validation("unknown order status %q", s)
	}
}

// CheckTransition accepts setting the current status again (a no-op) and a
// single step forward. Everything else is an invalid transition.
func CheckTransition(from, to domain.OrderStatus) error {
	if from == to {
		return nil
	}
	if n, ok := next[from]; ok && n == to {
		return nil
	}
	return apperr.InvalidTransition("cannot change order status from %s to %s", from, to)
}
