// Package orders is the ledger of placed orders and their status.
package orders

import (
	"context"

	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

// Ledger stores orders. Orders are immutable once created apart from their
// status, which moves through TransitionStatus only.
type Ledger interface {
	Create(ctx context.Context, order *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	TransitionStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	SalesSummary(ctx context.Context) (domain.SalesSummary, error)
}

// UserLookup resolves order owners for the admin view.
type UserLookup interface {
	Get(ctx context.Context, id string) (*domain.User, error)
}
