// Package catalog owns products and their live stock levels.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

// Store is the catalog capability consumed by checkout and the admin API.
//
// Reserve and ReserveBatch are the only paths that decrement stock. Both are
// atomic check-and-decrement operations; ReserveBatch is all-or-nothing.
type Store interface {
	ListActive(ctx context.Context) ([]domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) (*domain.Product, error)
	Reserve(ctx context.Context, id string, quantity int) error
	ReserveBatch(ctx context.Context, reservations []domain.Reservation) error
	Release(ctx context.Context, reservations []domain.Reservation) error
	Stats(ctx context.Context, lowStockThreshold int) (domain.CatalogStats, error)
}

const (
	ReasonInsufficientStock = "insufficient_stock"
	ReasonNotFound          = "not_found"
)

// LineFailure describes one reservation line that could not be satisfied.
type LineFailure struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Reason    string `json:"reason"`
}

// reservationError reports every failed line. The kind is InsufficientStock
// unless every failure is a missing product.
func reservationError(failures []LineFailure) error {
	kind := apperr.KindNotFound
	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		switch f.Reason {
		case ReasonNotFound:
			parts = append(parts, fmt.Sprintf("product %s not found", f.ProductID))
		default:
			kind = apperr.KindInsufficientStock
			label := f.Name
			if label == "" {
				label = f.ProductID
			}
			parts = append(parts, fmt.Sprintf("%s (requested %d, available %d)", label, f.Requested, f.Available))
		}
	}

	prefix := "insufficient stock for: "
	if kind == apperr.KindNotFound {
		prefix = ""
	}
	return apperr.New(kind, "%s%s", prefix, strings.Join(parts, "; ")).WithDetails(failures)
}

// mergeReservations sums quantities per product and sorts by product id so
// that concurrent batches always touch rows in the same order.
func mergeReservations(reservations []domain.Reservation) ([]domain.Reservation, error) {
	totals := make(map[string]int, len(reservations))
	for _, r := range reservations {
		if r.ProductID == "" {
			return nil, apperr.Validation("reservation is missing a product id")
		}
		if r.Quantity <= 0 {
			return nil, apperr.Validation("quantity for product %s must be positive", r.ProductID)
		}
		totals[r.ProductID] += r.Quantity
	}

	merged := make([]domain.Reservation, 0, len(totals))
	for id, qty := range totals {
		merged = append(merged, domain.Reservation{ProductID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ProductID < merged[j].ProductID })
	return merged, nil
}
