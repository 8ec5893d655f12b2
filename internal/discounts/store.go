// Package discounts resolves the weekday promotion schedule.
package discounts

import (
	"context"
	"strings"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

// Store holds at most one rule per weekday.
type Store interface {
	List(ctx context.Context) ([]domain.DiscountRule, error)
	Get(ctx context.Context, id string) (*domain.DiscountRule, error)
	ForWeekday(ctx context.Context, weekday string) (*domain.DiscountRule, error)
	Create(ctx context.Context, rule *domain.DiscountRule) error
	Update(ctx context.Context, rule *domain.DiscountRule) error
	Delete(ctx context.Context, id string) error
}

// Validate normalises the weekday to its canonical name and checks fields.
func Validate(rule *domain.DiscountRule) error {
	day, ok := domain.ParseWeekday(rule.Weekday)
	if !ok {
		return apperr.Validation("unknown weekday %q", rule.Weekday)
	}
	rule.Weekday = domain.WeekdayName(day)

	if rule.Percentage < 1 || rule.Percentage > 100 {
		return apperr.Validation("percentage must be between 1 and 100")
	}

	rule.Scope = domain.NormalizeScope(rule.Scope)
	if rule.Scope == "" {
		return apperr.Validation("scope is required")
	}

	rule.Text = strings.TrimSpace(rule.Text)
	if rule.Text == "" {
		return apperr.Validation("text is required")
	}
	return nil
}

func duplicateWeekday(weekday string) error {
	return apperr.Duplicate("a discount rule already exists for %s", weekday)
}
