package discounts

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

type MemoryStore struct {
	mu    sync.RWMutex
	rules map[string]domain.DiscountRule
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rules: make(map[string]domain.DiscountRule)}
}

func weekdayOrder(name string) int {
	d, _ := domain.ParseWeekday(name)
	// monday first
	return (int(d) + 6) % 7
}

func (s *MemoryStore) List(_ context.Context) ([]domain.DiscountRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make([]domain.DiscountRule, 0, len(s.rules))
	for _, r := range s.rules {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool { return weekdayOrder(rules[i].Weekday) < weekdayOrder(rules[j].Weekday) })
	return rules, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.DiscountRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rules[id]
	if !ok {
		return nil, apperr.NotFound("discount rule not found")
	}
	return &r, nil
}

func (s *MemoryStore) ForWeekday(_ context.Context, weekday string) (*domain.DiscountRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.rules {
		if r.Weekday == weekday {
			return &r, nil
		}
	}
	return nil, apperr.NotFound("discount rule not found")
}

// weekdayTaken must be called with the lock held.
func (s *MemoryStore) weekdayTaken(weekday, exceptID string) bool {
	for id, r := range s.rules {
		if id != exceptID && r.Weekday == weekday {
			return true
		}
	}
	return false
}

func (s *MemoryStore) Create(_ context.Context, rule *domain.DiscountRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.weekdayTaken(rule.Weekday, "") {
		return duplicateWeekday(rule.Weekday)
	}
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	s.rules[rule.ID] = *rule
	return nil
}

func (s *MemoryStore) Update(_ context.Context, rule *domain.DiscountRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[rule.ID]; !ok {
		return apperr.NotFound("discount rule not found")
	}
	if s.weekdayTaken(rule.Weekday, rule.ID) {
		return duplicateWeekday(rule.Weekday)
	}
	s.rules[rule.ID] = *rule
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[id]; !ok {
		return apperr.NotFound("discount rule not found")
	}
	delete(s.rules, id)
	return nil
}

var _ Store = (*MemoryStore)(nil)
