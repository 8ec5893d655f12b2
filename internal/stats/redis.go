// Package stats keeps the admin dashboard figures: catalog counts read live
// and sales totals projected from order events.
package stats

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

const seenTTL = 7 * 24 * time.Hour

// NewRedisClient parses url and checks the server is reachable.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.DialTimeout = 5 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisSales is the sales projection. Each order is counted once no matter
// how often its event is delivered.
type RedisSales struct {
	client redis.Cmdable
	prefix string
}

func NewRedisSales(client redis.Cmdable, prefix string) *RedisSales {
	if prefix == "" {
		prefix = "storefront"
	}
	return &RedisSales{client: client, prefix: prefix}
}

func (s *RedisSales) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

// Project folds event into the totals. It reports false when the order was
// already counted.
func (s *RedisSales) Project(ctx context.Context, event domain.OrderCreatedEvent) (bool, error) {
	if event.OrderID == "" {
		return false, errors.New("order created event has no order id")
	}

	seenKey := s.key("orders", "seen", event.OrderID)
	fresh, err := s.client.SetNX(ctx, seenKey, event.Timestamp.Unix(), seenTTL).Result()
	if err != nil {
		return false, fmt.Errorf("mark order %s: %w", event.OrderID, err)
	}
	if !fresh {
		return false, nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, s.key("orders", "count"))
		pipe.IncrBy(ctx, s.key("orders", "sales"), event.Total)
		for _, item := range event.Items {
			pipe.HIncrBy(ctx, s.key("products", "units"), item.ProductID, int64(item.Quantity))
		}
		return nil
	})
	if err != nil {
		// Unmark so a redelivery can count the order.
		_ = s.client.Del(ctx, seenKey).Err()
		return false, fmt.Errorf("project order %s: %w", event.OrderID, err)
	}
	return true, nil
}

func (s *RedisSales) SalesSummary(ctx context.Context) (domain.SalesSummary, error) {
	values, err := s.client.MGet(ctx, s.key("orders", "count"), s.key("orders", "sales")).Result()
	if err != nil {
		return domain.SalesSummary{}, fmt.Errorf("read sales summary: %w", err)
	}

	var summary domain.SalesSummary
	if summary.TotalOrders, err = parseCounter(values[0]); err != nil {
		return domain.SalesSummary{}, err
	}
	if summary.TotalSales, err = parseCounter(values[1]); err != nil {
		return domain.SalesSummary{}, err
	}
	return summary, nil
}

// UnitsSold returns units sold per product id.
func (s *RedisSales) UnitsSold(ctx context.Context) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, s.key("products", "units")).Result()
	if err != nil {
		return nil, fmt.Errorf("read units sold: %w", err)
	}

	units := make(map[string]int64, len(raw))
	for id, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("units sold for %s: %w", id, err)
		}
		units[id] = n
	}
	return units, nil
}

func parseCounter(v any) (int64, error) {
	switch s := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse counter %q: %w", s, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected counter type %T", v)
	}
}
