package domain

import "time"

// EventOrderCreated is the event type header value for OrderCreatedEvent.
const EventOrderCreated = "order.created"

type OrderCreatedEvent struct {
	OrderID        string         `json:"order_id"`
	UserID         string         `json:"user_id"`
	Items          []OrderItem    `json:"items"`
	Total          int64          `json:"total"`
	DeliveryOption DeliveryOption `json:"delivery_option"`
	Timestamp      time.Time      `json:"timestamp"`
}

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:        o.ID,
		UserID:         o.UserID,
		Items:          o.Items,
		Total:          o.Total,
		DeliveryOption: o.DeliveryOption,
		Timestamp:      o.CreatedAt,
	}
}
