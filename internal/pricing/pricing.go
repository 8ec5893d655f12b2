// Package pricing turns a priced cart into the amount charged.
package pricing

import (
	"github.com/joao-fontenele/despensa-storefront/internal/discounts"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

const DefaultDeliveryFee int64 = 5000

type Breakdown struct {
	Subtotal    int64 `json:"subtotal"`
	Discount    int64 `json:"discount"`
	DeliveryFee int64 `json:"delivery_fee"`
	Total       int64 `json:"total"`
}

type Calculator struct {
	deliveryFee int64
}

func NewCalculator(deliveryFee int64) *Calculator {
	return &Calculator{deliveryFee: deliveryFee}
}

func (c *Calculator) DeliveryFee() int64 {
	return c.deliveryFee
}

// Compute is pure: the same lines, rule and option always give the same
// breakdown. The discount never exceeds the subtotal.
func (c *Calculator) Compute(lines []domain.CartLine, rule *domain.DiscountRule, option domain.DeliveryOption) Breakdown {
	var b Breakdown
	for _, l := range lines {
		b.Subtotal += l.Price * int64(l.Quantity)
	}

	b.Discount = discounts.Apply(rule, lines)
	if b.Discount > b.Subtotal {
		b.Discount = b.Subtotal
	}
	if b.Discount < 0 {
		b.Discount = 0
	}

	if option == domain.DeliveryOptionDelivery {
		b.DeliveryFee = c.deliveryFee
	}

	b.Total = b.Subtotal - b.Discount + b.DeliveryFee
	return b
}
