package catalog

import (
	"math"
	"strings"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

const (
	// MaxPrice keeps price × quantity sums well inside int64.
	MaxPrice int64 = 1_000_000_000_000
	// MaxStock matches the INTEGER stock column.
	MaxStock = math.MaxInt32
)

// Validate normalises p and checks the field constraints for admin writes.
func Validate(p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Description = strings.TrimSpace(p.Description)
	p.Image = strings.TrimSpace(p.Image)

	var missing []string
	if p.Name == "" {
		missing = append(missing, "name")
	}
	if p.Category == "" {
		missing = append(missing, "category")
	}
	if p.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}

	if p.Price <= 0 {
		return apperr.Validation("price must be greater than zero")
	}
	if p.Price > MaxPrice {
		return apperr.Validation("price cannot exceed %d", MaxPrice)
	}
	if p.Stock < 0 {
		return apperr.Validation("stock cannot be negative")
	}
	if p.Stock > MaxStock {
		return apperr.Validation("stock cannot exceed %d", MaxStock)
	}

	if p.Image == "" {
		p.Image = domain.DefaultProductImage
	}
	return nil
}
