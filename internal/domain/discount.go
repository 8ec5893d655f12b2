package domain

import (
	"strings"
	"time"
)

const (
	ScopeAll      = "all"
	ScopeDelivery = "delivery-fee-only"

	// scopeDeliveryAlias is the name older schedules use for ScopeDelivery.
	scopeDeliveryAlias = "delivery"
)

// NormalizeScope trims a rule scope and maps the reserved names, in any
// case, to their canonical form. Category scopes are kept as written since
// product categories are matched exactly.
func NormalizeScope(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, ScopeAll):
		return ScopeAll
	case strings.EqualFold(s, ScopeDelivery), strings.EqualFold(s, scopeDeliveryAlias):
		return ScopeDelivery
	}
	return s
}

type DiscountRule struct {
	ID         string `json:"id"`
	Weekday    string `json:"weekday"`
	Percentage int    `json:"percentage"`
	Scope      string `json:"scope"`
	Text       string `json:"text"`
	Active     bool   `json:"active"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday accepts English weekday names in any case.
func ParseWeekday(s string) (time.Weekday, bool) {
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

// WeekdayName is the canonical form rules are keyed by.
func WeekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}
