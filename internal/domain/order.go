package domain

import "time"

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

type DeliveryOption string

const (
	DeliveryOptionDelivery DeliveryOption = "delivery"
	DeliveryOptionPickup   DeliveryOption = "pickup"
)

func (d DeliveryOption) Valid() bool {
	return d == DeliveryOptionDelivery || d == DeliveryOptionPickup
}

type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image"`
}

// Customer is the display identity attached to orders in the admin view.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Order struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	Customer       *Customer      `json:"customer,omitempty"`
	Items          []OrderItem    `json:"items"`
	Subtotal       int64          `json:"subtotal"`
	Discount       int64          `json:"discount"`
	DiscountText   string         `json:"discount_text,omitempty"`
	DeliveryFee    int64          `json:"delivery_fee"`
	Total          int64          `json:"total"`
	Status         OrderStatus    `json:"status"`
	PaymentMethod  string         `json:"payment_method"`
	DeliveryOption DeliveryOption `json:"delivery_option"`
	CreatedAt      time.Time      `json:"created_at"`
}

type SalesSummary struct {
	TotalOrders int64 `json:"total_orders"`
	TotalSales  int64 `json:"total_sales"`
}
