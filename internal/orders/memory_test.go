package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

type staticUsers map[string]domain.User

func (u staticUsers) Get(_ context.Context, id string) (*domain.User, error) {
	user, ok := u[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &user, nil
}

func placeOrder(t *testing.T, ledger Ledger, userID string, total int64, at time.Time) *domain.Order {
	t.Helper()
	o := &domain.Order{
		UserID:         userID,
		Items:          []domain.OrderItem{{ProductID: "rice", Name: "Arroz", Price: total, Quantity: 1}},
		Subtotal:       total,
		Total:          total,
		PaymentMethod:  "cash",
		DeliveryOption: domain.DeliveryOptionPickup,
		CreatedAt:      at,
	}
	require.NoError(t, ledger.Create(context.Background(), o))
	return o
}

func TestMemoryLedger(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
	ledger := NewMemoryLedger(staticUsers{"ana": {ID: "ana", Name: "Ana", Email: "ana@example.com"}})

	first := placeOrder(t, ledger, "ana", 1000, base)
	second := placeOrder(t, ledger, "bob", 2000, base.Add(time.Minute))
	third := placeOrder(t, ledger, "ana", 3000, base.Add(2*time.Minute))

	t.Run("create assigns id and confirmed status", func(t *testing.T) {
		assert.NotEmpty(t, first.ID)
		assert.Equal(t, domain.OrderStatusConfirmed, first.Status)
	})

	t.Run("user listing is newest first and scoped", func(t *testing.T) {
		mine, err := ledger.ListForUser(ctx, "ana")
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, third.ID, mine[0].ID)
		assert.Equal(t, first.ID, mine[1].ID)
		assert.Nil(t, mine[0].Customer)
	})

	t.Run("admin listing annotates customers", func(t *testing.T) {
		all, err := ledger.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, third.ID, all[0].ID)
		assert.Equal(t, second.ID, all[1].ID)
		require.NotNil(t, all[0].Customer)
		assert.Equal(t, "Ana", all[0].Customer.Name)
		require.NotNil(t, all[1].Customer)
		assert.Empty(t, all[1].Customer.Name)
	})

	t.Run("stored orders are isolated from callers", func(t *testing.T) {
		got, err := ledger.Get(ctx, first.ID)
		require.NoError(t, err)
		got.Items[0].Name = "mutated"

		again, err := ledger.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "Arroz", again.Items[0].Name)
	})

	t.Run("status transitions", func(t *testing.T) {
		updated, err := ledger.TransitionStatus(ctx, first.ID, domain.OrderStatusPreparing)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPreparing, updated.Status)

		_, err = ledger.TransitionStatus(ctx, first.ID, domain.OrderStatusDelivered)
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))

		got, err := ledger.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPreparing, got.Status)
	})

	t.Run("unknown order is not found and nothing changes", func(t *testing.T) {
		_, err := ledger.TransitionStatus(ctx, "missing", domain.OrderStatusPreparing)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

		all, err := ledger.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("sales summary", func(t *testing.T) {
		summary, err := ledger.SalesSummary(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.SalesSummary{TotalOrders: 3, TotalSales: 6000}, summary)
	})
}
