package domain

import "time"

const (
	CategoryPantry       = "pantry"
	CategoryPreparedFood = "prepared-food"
)

const DefaultProductImage = "📦"

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	Active      bool      `json:"active"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
}

// Reservation is a request to take Quantity units of a product out of stock.
type Reservation struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CatalogStats struct {
	ActiveProducts   int `json:"active_products"`
	LowStockProducts int `json:"low_stock_products"`
}

// CartLine is a priced cart entry as seen by the discount engine and the
// pricing calculator.
type CartLine struct {
	ProductID string
	Category  string
	Price     int64
	Quantity  int
}
