package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

const orderColumns = `o.id, o.user_id, o.status, o.subtotal, o.discount, o.discount_text, o.delivery_fee, o.total,
	o.payment_method, o.delivery_option, o.created_at`

type PostgresLedger struct {
	db *sql.DB
}

func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (r *PostgresLedger) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	order.ID = uuid.New().String()
	order.Status = domain.OrderStatusConfirmed
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, status, subtotal, discount, discount_text, delivery_fee, total,
			payment_method, delivery_option, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
	`, order.ID, order.UserID, order.Status, order.Subtotal, order.Discount, order.DiscountText, order.DeliveryFee,
		order.Total, order.PaymentMethod, order.DeliveryOption, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, position, product_id, name, price, quantity, image)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, uuid.New().String(), order.ID, i, item.ProductID, item.Name, item.Price, item.Quantity, item.Image)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PostgresLedger) Get(ctx context.Context, id string) (*domain.Order, error) {
	orders, err := r.list(ctx, false, `WHERE o.id = $1`, id)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return nil, apperr.NotFound("order %s not found", id)
	}

	return &orders[0], nil
}

func (r *PostgresLedger) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, false, `WHERE o.user_id = $1`, userID)
}

func (r *PostgresLedger) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, true, ``)
}

// list loads orders newest first, then their items in a single query.
func (r *PostgresLedger) list(ctx context.Context, withCustomer bool, where string, args ...any) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + `, COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		` + where + `
		ORDER BY o.created_at DESC, o.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		var customer domain.Customer
		if err := rows.Scan(&order.ID, &order.UserID, &order.Status, &order.Subtotal, &order.Discount,
			&order.DiscountText, &order.DeliveryFee, &order.Total, &order.PaymentMethod, &order.DeliveryOption,
			&order.CreatedAt, &customer.Name, &customer.Email); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if withCustomer {
			order.Customer = &customer
		}
		order.Items = []domain.OrderItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, name, price, quantity, image
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Name, &item.Price, &item.Quantity, &item.Image); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

// TransitionStatus validates the move against the current status and applies
// it with a compare-and-set update, so a concurrent change is reported rather
// than overwritten.
func (r *PostgresLedger) TransitionStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	order, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := CheckTransition(order.Status, status); err != nil {
		return nil, err
	}

	if order.Status == status {
		return order, nil
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, status, id, order.Status)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, apperr.InvalidTransition("order %s changed status concurrently", id)
	}

	order.Status = status
	return order, nil
}

func (r *PostgresLedger) SalesSummary(ctx context.Context) (domain.SalesSummary, error) {
	var summary domain.SalesSummary
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(total), 0) FROM orders`).
		Scan(&summary.TotalOrders, &summary.TotalSales)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return summary, fmt.Errorf("sales summary: %w", err)
	}

	return summary, nil
}

var _ Ledger = (*PostgresLedger)(nil)
