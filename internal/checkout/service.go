// Package checkout turns a cart into a placed order while keeping stock
// truthful.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/catalog"
	"github.com/joao-fontenele/despensa-storefront/internal/discounts"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
	"github.com/joao-fontenele/despensa-storefront/internal/orders"
	"github.com/joao-fontenele/despensa-storefront/internal/pricing"
)

var tracer = otel.Tracer("checkout")

// MaxLineQuantity bounds a single cart line so line totals stay far from
// int64 overflow and within the stock column's range.
const MaxLineQuantity = 10_000

// Publisher is satisfied by messaging.Producer.
type Publisher interface {
	Publish(ctx context.Context, key, eventType string, event any) error
}

type Line struct {
	ProductID string
	Price     int64
	Quantity  int
}

type Request struct {
	UserID         string
	Items          []Line
	Total          int64
	PaymentMethod  string
	DeliveryOption domain.DeliveryOption
}

// PriceChange is reported when the cart price no longer matches the catalog.
type PriceChange struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	SubmittedPrice int64  `json:"submitted_price"`
	CurrentPrice   int64  `json:"current_price"`
}

// TotalChange is reported when the submitted total differs from the amount
// that would be charged.
type TotalChange struct {
	SubmittedTotal int64             `json:"submitted_total"`
	Breakdown      pricing.Breakdown `json:"breakdown"`
}

type Service struct {
	catalog   catalog.Store
	discounts *discounts.Engine
	pricing   *pricing.Calculator
	ledger    orders.Ledger
	publisher Publisher
	logger    *slog.Logger

	attempts metric.Int64Counter
	revenue  metric.Int64Counter
}

// NewService wires the orchestrator. publisher may be nil.
func NewService(store catalog.Store, engine *discounts.Engine, calc *pricing.Calculator, ledger orders.Ledger, publisher Publisher, logger *slog.Logger) (*Service, error) {
	meter := otel.Meter("checkout")

	attempts, err := meter.Int64Counter("storefront.checkout.attempts",
		metric.WithDescription("Checkout attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("create attempts counter: %w", err)
	}

	revenue, err := meter.Int64Counter("storefront.checkout.revenue",
		metric.WithDescription("Total charged by successful checkouts"),
		metric.WithUnit("{currency_unit}"))
	if err != nil {
		return nil, fmt.Errorf("create revenue counter: %w", err)
	}

	return &Service{
		catalog:   store,
		discounts: engine,
		pricing:   calc,
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
		attempts:  attempts,
		revenue:   revenue,
	}, nil
}

func (s *Service) Checkout(ctx context.Context, req Request) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "checkout",
		trace.WithAttributes(
			attribute.String("user.id", req.UserID),
			attribute.Int("checkout.lines", len(req.Items)),
			attribute.String("checkout.delivery_option", string(req.DeliveryOption)),
		),
	)
	defer span.End()

	order, err := s.checkout(ctx, req)

	outcome := "created"
	if err != nil {
		outcome = apperr.KindOf(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	} else {
		span.SetAttributes(attribute.String("order.id", order.ID), attribute.Int64("order.total", order.Total))
		s.revenue.Add(ctx, order.Total)
	}
	s.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

	return order, err
}

func (s *Service) checkout(ctx context.Context, req Request) (*domain.Order, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	products, err := s.liveProducts(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.CartLine, 0, len(req.Items))
	items := make([]domain.OrderItem, 0, len(req.Items))
	reservations := make([]domain.Reservation, 0, len(req.Items))
	for _, l := range req.Items {
		p := products[l.ProductID]
		lines = append(lines, domain.CartLine{ProductID: p.ID, Category: p.Category, Price: p.Price, Quantity: l.Quantity})
		items = append(items, domain.OrderItem{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: l.Quantity, Image: p.Image})
		reservations = append(reservations, domain.Reservation{ProductID: p.ID, Quantity: l.Quantity})
	}

	now := s.discounts.Now()
	rule, err := s.discounts.ActiveFor(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("resolve discount: %w", err)
	}

	breakdown := s.pricing.Compute(lines, rule, req.DeliveryOption)
	if breakdown.Total != req.Total {
		return nil, apperr.New(apperr.KindPriceMismatch,
			"order total changed: submitted %d, current %d; please confirm the new total", req.Total, breakdown.Total).
			WithDetails(TotalChange{SubmittedTotal: req.Total, Breakdown: breakdown})
	}

	if err := s.catalog.ReserveBatch(ctx, reservations); err != nil {
		s.logger.Info("stock reservation rejected", "user_id", req.UserID, "error", err)
		return nil, err
	}

	order := &domain.Order{
		UserID:         req.UserID,
		Items:          items,
		Subtotal:       breakdown.Subtotal,
		Discount:       breakdown.Discount,
		DeliveryFee:    breakdown.DeliveryFee,
		Total:          breakdown.Total,
		PaymentMethod:  req.PaymentMethod,
		DeliveryOption: req.DeliveryOption,
		CreatedAt:      now.UTC(),
	}
	if rule != nil && breakdown.Discount > 0 {
		order.DiscountText = rule.Text
	}

	if err := s.ledger.Create(ctx, order); err != nil {
		s.compensate(ctx, req.UserID, reservations)
		return nil, apperr.Internal(fmt.Errorf("create order: %w", err))
	}

	s.logger.Info("order placed",
		"order_id", order.ID,
		"user_id", order.UserID,
		"total", order.Total,
		"discount", order.Discount,
		"delivery_option", order.DeliveryOption,
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, order.ID, domain.EventOrderCreated, domain.NewOrderCreatedEvent(order)); err != nil {
			s.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	return order, nil
}

// compensate gives reserved stock back after the order could not be written.
// It runs even if the request was cancelled.
func (s *Service) compensate(ctx context.Context, userID string, reservations []domain.Reservation) {
	if err := s.catalog.Release(context.WithoutCancel(ctx), reservations); err != nil {
		s.logger.Error("failed to release reserved stock", "error", err, "user_id", userID, "reservations", reservations)
		return
	}
	s.logger.Warn("reserved stock released after order write failure", "user_id", userID)
}

func validate(req *Request) error {
	if req.UserID == "" {
		return apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	if len(req.Items) == 0 {
		return apperr.Validation("cart is empty")
	}

	for i, l := range req.Items {
		if l.ProductID == "" {
			return apperr.Validation("item %d: product id is required", i)
		}
		if l.Quantity <= 0 {
			return apperr.Validation("item %d: quantity must be at least 1", i)
		}
		if l.Quantity > MaxLineQuantity {
			return apperr.Validation("item %d: quantity cannot exceed %d", i, MaxLineQuantity)
		}
		if l.Price <= 0 {
			return apperr.Validation("item %d: price must be greater than zero", i)
		}
	}

	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if req.PaymentMethod == "" {
		return apperr.Validation("payment method is required")
	}
	if !req.DeliveryOption.Valid() {
		return apperr.Validation("delivery option must be %q or %q", domain.DeliveryOptionDelivery, domain.DeliveryOptionPickup)
	}
	if req.Total < 0 {
		return apperr.Validation("total cannot be negative")
	}
	return nil
}

// liveProducts re-reads every product in the cart. Missing or hidden
// products, and prices that differ from the catalog, are all reported at once.
func (s *Service) liveProducts(ctx context.Context, lines []Line) (map[string]*domain.Product, error) {
	products := make(map[string]*domain.Product, len(lines))
	var missing []string
	var changes []PriceChange

	for _, l := range lines {
		p, seen := products[l.ProductID]
		if !seen {
			var err error
			p, err = s.catalog.Get(ctx, l.ProductID)
			if err != nil && !apperr.Is(err, apperr.KindNotFound) {
				return nil, err
			}
			if p != nil && !p.Active {
				p = nil
			}
			products[l.ProductID] = p
			if p == nil {
				missing = append(missing, l.ProductID)
			}
		}

		if p != nil && p.Price != l.Price {
			changes = append(changes, PriceChange{
				ProductID:      p.ID,
				Name:           p.Name,
				SubmittedPrice: l.Price,
				CurrentPrice:   p.Price,
			})
		}
	}

	if len(missing) > 0 {
		return nil, apperr.NotFound("products not available: %s", strings.Join(missing, ", ")).WithDetails(missing)
	}

	if len(changes) > 0 {
		names := make([]string, len(changes))
		for i, c := range changes {
			names[i] = fmt.Sprintf("%s (now %d)", c.Name, c.CurrentPrice)
		}
		return nil, apperr.New(apperr.KindPriceMismatch, "prices changed: %s; please review your cart", strings.Join(names, ", ")).
			WithDetails(changes)
	}

	return products, nil
}
