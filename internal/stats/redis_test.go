package stats

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func orderEvent(id string, total int64, items ...domain.OrderItem) domain.OrderCreatedEvent {
	return domain.OrderCreatedEvent{
		OrderID:        id,
		UserID:         "user-1",
		Items:          items,
		Total:          total,
		DeliveryOption: domain.DeliveryOptionPickup,
		Timestamp:      time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC),
	}
}

func TestRedisSales_Project(t *testing.T) {
	ctx := context.Background()

	t.Run("accumulates orders", func(t *testing.T) {
		_, client := setupTestRedis(t)
		sales := NewRedisSales(client, "test")

		applied, err := sales.Project(ctx, orderEvent("o-1", 15300, domain.OrderItem{ProductID: "rice", Quantity: 2}))
		require.NoError(t, err)
		assert.True(t, applied)

		applied, err = sales.Project(ctx, orderEvent("o-2", 90000,
			domain.OrderItem{ProductID: "chicken", Quantity: 2},
			domain.OrderItem{ProductID: "rice", Quantity: 1},
		))
		require.NoError(t, err)
		assert.True(t, applied)

		summary, err := sales.SalesSummary(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.SalesSummary{TotalOrders: 2, TotalSales: 105300}, summary)

		units, err := sales.UnitsSold(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"rice": 3, "chicken": 2}, units)
	})

	t.Run("redelivered event is counted once", func(t *testing.T) {
		mr, client := setupTestRedis(t)
		sales := NewRedisSales(client, "test")
		event := orderEvent("o-1", 15300, domain.OrderItem{ProductID: "rice", Quantity: 2})

		applied, err := sales.Project(ctx, event)
		require.NoError(t, err)
		assert.True(t, applied)

		applied, err = sales.Project(ctx, event)
		require.NoError(t, err)
		assert.False(t, applied)

		summary, err := sales.SalesSummary(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.TotalOrders)
		assert.Equal(t, int64(15300), summary.TotalSales)

		assert.True(t, mr.Exists("test:orders:seen:o-1"))
		assert.Equal(t, seenTTL, mr.TTL("test:orders:seen:o-1"))
	})

	t.Run("event without order id", func(t *testing.T) {
		_, client := setupTestRedis(t)
		sales := NewRedisSales(client, "test")

		_, err := sales.Project(ctx, orderEvent("", 100))
		assert.Error(t, err)
	})
}

func TestRedisSales_EmptySummary(t *testing.T) {
	_, client := setupTestRedis(t)
	sales := NewRedisSales(client, "")

	summary, err := sales.SalesSummary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary)

	units, err := sales.UnitsSold(context.Background())
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	_, err = NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}
