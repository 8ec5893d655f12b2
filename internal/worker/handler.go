// Package worker folds order events into the sales projection.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/joao-fontenele/despensa-storefront/internal/domain"
	"github.com/joao-fontenele/despensa-storefront/internal/messaging"
)

// Projector is satisfied by stats.RedisSales.
type Projector interface {
	Project(ctx context.Context, event domain.OrderCreatedEvent) (bool, error)
}

type OrderEventHandler struct {
	projector Projector
	logger    *slog.Logger
}

func NewOrderEventHandler(projector Projector, logger *slog.Logger) *OrderEventHandler {
	return &OrderEventHandler{
		projector: projector,
		logger:    logger,
	}
}

// Handle projects order.created events. Other event types are skipped so the
// topic can carry more kinds later. A malformed payload is logged and
// dropped; it would fail the same way on every redelivery.
func (h *OrderEventHandler) Handle(ctx context.Context, msg messaging.Message) error {
	if msg.Type != "" && msg.Type != domain.EventOrderCreated {
		h.logger.Debug("skipping event", "type", msg.Type, "key", msg.Key)
		return nil
	}

	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.Error("dropping malformed order event", "error", err, "key", msg.Key)
		return nil
	}

	applied, err := h.projector.Project(ctx, event)
	if err != nil {
		h.logger.Error("failed to project order", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("project order %s: %w", event.OrderID, err)
	}

	if !applied {
		h.logger.Info("order already projected", "order_id", event.OrderID)
		return nil
	}

	h.logger.Info("order projected", "order_id", event.OrderID, "total", event.Total, "items", len(event.Items))
	return nil
}
