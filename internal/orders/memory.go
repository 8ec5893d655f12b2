package orders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

type MemoryLedger struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	users  UserLookup
}

// NewMemoryLedger keeps orders in process. users may be nil, in which case
// ListAll leaves Customer unset.
func NewMemoryLedger(users UserLookup) *MemoryLedger {
	return &MemoryLedger{
		orders: make(map[string]domain.Order),
		users:  users,
	}
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem{}, o.Items...)
	if o.Customer != nil {
		c := *o.Customer
		o.Customer = &c
	}
	return o
}

func (l *MemoryLedger) Create(_ context.Context, order *domain.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	order.ID = uuid.New().String()
	order.Status = domain.OrderStatusConfirmed
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	l.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (l *MemoryLedger) Get(_ context.Context, id string) (*domain.Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	o, ok := l.orders[id]
	if !ok {
		return nil, apperr.NotFound("order %s not found", id)
	}
	o = cloneOrder(o)
	return &o, nil
}

func (l *MemoryLedger) filter(keep func(domain.Order) bool) []domain.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	orders := []domain.Order{}
	for _, o := range l.orders {
		if keep(o) {
			orders = append(orders, cloneOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
	return orders
}

func (l *MemoryLedger) ListForUser(_ context.Context, userID string) ([]domain.Order, error) {
	return l.filter(func(o domain.Order) bool { return o.UserID == userID }), nil
}

func (l *MemoryLedger) ListAll(ctx context.Context) ([]domain.Order, error) {
	orders := l.filter(func(domain.Order) bool { return true })
	if l.users == nil {
		return orders, nil
	}

	for i := range orders {
		customer := &domain.Customer{}
		user, err := l.users.Get(ctx, orders[i].UserID)
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		if user != nil {
			customer.Name = user.Name
			customer.Email = user.Email
		}
		orders[i].Customer = customer
	}
	return orders, nil
}

func (l *MemoryLedger) TransitionStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orders[id]
	if !ok {
		return nil, apperr.NotFound("order %s not found", id)
	}

	if err := CheckTransition(o.Status, status); err != nil {
		return nil, err
	}

	o.Status = status
	l.orders[id] = o

	o = cloneOrder(o)
	return &o, nil
}

func (l *MemoryLedger) SalesSummary(_ context.Context) (domain.SalesSummary, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var summary domain.SalesSummary
	for _, o := range l.orders {
		summary.TotalOrders++
		summary.TotalSales += o.Total
	}
	return summary, nil
}

var _ Ledger = (*MemoryLedger)(nil)
