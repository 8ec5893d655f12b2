package discounts

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

var hundred = decimal.NewFromInt(100)

type Engine struct {
	store    Store
	location *time.Location
	now      func() time.Time
}

type EngineOption func(*Engine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine resolves weekdays in loc, the store's local time zone.
func NewEngine(store Store, loc *time.Location, opts ...EngineOption) *Engine {
	if loc == nil {
		loc = time.UTC
	}

	e := &Engine{store: store, location: loc, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now is the engine's clock; checkout stamps orders with it so pricing and
// creation time agree on the day.
func (e *Engine) Now() time.Time {
	return e.now()
}

func (e *Engine) ActiveToday(ctx context.Context) (*domain.DiscountRule, error) {
	return e.ActiveFor(ctx, e.now())
}

// ActiveFor returns the active rule for the weekday of t, or nil when the
// day has no rule or its rule is switched off.
func (e *Engine) ActiveFor(ctx context.Context, t time.Time) (*domain.DiscountRule, error) {
	weekday := domain.WeekdayName(t.In(e.location).Weekday())

	rule, err := e.store.ForWeekday(ctx, weekday)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if !rule.Active {
		return nil, nil
	}
	return rule, nil
}

// Apply computes the monetary effect of rule over lines, floored to whole
// currency units. The delivery scope discounts the merchandise subtotal, not
// the delivery fee.
func Apply(rule *domain.DiscountRule, lines []domain.CartLine) int64 {
	if rule == nil {
		return 0
	}

	scope := domain.NormalizeScope(rule.Scope)
	var base int64
	for _, l := range lines {
		if scope == domain.ScopeAll || scope == domain.ScopeDelivery || l.Category == scope {
			base += l.Price * int64(l.Quantity)
		}
	}

	return PercentOf(base, rule.Percentage)
}

// PercentOf returns floor(amount * pct / 100).
func PercentOf(amount int64, pct int) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(hundred).
		Floor().
		IntPart()
}
