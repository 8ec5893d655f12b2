package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

// MemoryStore keeps the catalog in process. A single mutex serialises every
// stock mutation, so batches are all-or-nothing.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{products: make(map[string]domain.Product)}
}

func (s *MemoryStore) list(filter func(domain.Product) bool) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := []domain.Product{}
	for _, p := range s.products {
		if filter(p) {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.Before(products[j].CreatedAt)
		}
		return products[i].Name < products[j].Name
	})
	return products
}

func (s *MemoryStore) ListActive(_ context.Context) ([]domain.Product, error) {
	return s.list(func(p domain.Product) bool { return p.Active }), nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]domain.Product, error) {
	return s.list(func(domain.Product) bool { return true }), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, apperr.NotFound("product %s not found", id)
	}
	return &p, nil
}

func (s *MemoryStore) Create(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if _, exists := s.products[p.ID]; exists {
		return apperr.Duplicate("product %s already exists", p.ID)
	}

	s.products[p.ID] = *p
	return nil
}

func (s *MemoryStore) Update(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[p.ID]
	if !ok {
		return apperr.NotFound("product %s not found", p.ID)
	}

	p.CreatedAt = existing.CreatedAt
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return apperr.NotFound("product %s not found", id)
	}
	delete(s.products, id)
	return nil
}

func (s *MemoryStore) SetActive(_ context.Context, id string, active bool) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, apperr.NotFound("product %s not found", id)
	}
	p.Active = active
	s.products[id] = p
	return &p, nil
}

func (s *MemoryStore) Reserve(ctx context.Context, id string, quantity int) error {
	return s.ReserveBatch(ctx, []domain.Reservation{{ProductID: id, Quantity: quantity}})
}

func (s *MemoryStore) ReserveBatch(ctx context.Context, reservations []domain.Reservation) error {
	merged, err := mergeReservations(reservations)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var failures []LineFailure
	for _, r := range merged {
		p, ok := s.products[r.ProductID]
		if !ok {
			failures = append(failures, LineFailure{ProductID: r.ProductID, Requested: r.Quantity, Reason: ReasonNotFound})
			continue
		}
		if p.Stock < r.Quantity {
			failures = append(failures, LineFailure{
				ProductID: r.ProductID,
				Name:      p.Name,
				Requested: r.Quantity,
				Available: p.Stock,
				Reason:    ReasonInsufficientStock,
			})
		}
	}

	if len(failures) > 0 {
		return reservationError(failures)
	}

	for _, r := range merged {
		p := s.products[r.ProductID]
		p.Stock -= r.Quantity
		s.products[r.ProductID] = p
	}
	return nil
}

func (s *MemoryStore) Release(_ context.Context, reservations []domain.Reservation) error {
	merged, err := mergeReservations(reservations)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range merged {
		p, ok := s.products[r.ProductID]
		if !ok {
			continue
		}
		p.Stock += r.Quantity
		s.products[r.ProductID] = p
	}
	return nil
}

func (s *MemoryStore) Stats(_ context.Context, lowStockThreshold int) (domain.CatalogStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats domain.CatalogStats
	for _, p := range s.products {
		if !p.Active {
			continue
		}
		stats.ActiveProducts++
		if p.Stock <= lowStockThreshold {
			stats.LowStockProducts++
		}
	}
	return stats, nil
}

var _ Store = (*MemoryStore)(nil)
