package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

const productColumns = `id, name, category, price, stock, active, description, image, created_at`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.Active, &p.Description, &p.Image, &p.CreatedAt)
	return p, err
}

func (s *PostgresStore) list(ctx context.Context, query string) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]domain.Product, error) {
	return s.list(ctx, `SELECT `+productColumns+` FROM products WHERE active ORDER BY created_at, name`)
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, name`)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("product %s not found", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category, price, stock, active, description, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.Name, p.Category, p.Price, p.Stock, p.Active, p.Description, p.Image, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p *domain.Product) error {
	updated, err := scanProduct(s.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $2, category = $3, price = $4, stock = $5, active = $6, description = $7, image = $8
		WHERE id = $1
		RETURNING `+productColumns,
		p.ID, p.Name, p.Category, p.Price, p.Stock, p.Active, p.Description, p.Image))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("product %s not found", p.ID)
		}
		return fmt.Errorf("update product: %w", err)
	}

	*p = updated
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return apperr.NotFound("product %s not found", id)
	}

	return nil
}

func (s *PostgresStore) SetActive(ctx context.Context, id string, active bool) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `
		UPDATE products SET active = $2
		WHERE id = $1
		RETURNING `+productColumns, id, active))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("product %s not found", id)
		}
		return nil, fmt.Errorf("set product active: %w", err)
	}

	return &p, nil
}

func (s *PostgresStore) Reserve(ctx context.Context, id string, quantity int) error {
	return s.ReserveBatch(ctx, []domain.Reservation{{ProductID: id, Quantity: quantity}})
}

// ReserveBatch decrements every line inside one transaction. The conditional
// UPDATE makes each decrement atomic; failures are collected and the whole
// transaction is rolled back.
func (s *PostgresStore) ReserveBatch(ctx context.Context, reservations []domain.Reservation) error {
	merged, err := mergeReservations(reservations)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reservation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var failures []LineFailure
	for _, r := range merged {
		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $2
			WHERE id = $1 AND stock >= $2
		`, r.ProductID, r.Quantity)
		if err != nil {
			return fmt.Errorf("reserve product %s: %w", r.ProductID, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if rowsAffected == 0 {
			failure, err := describeFailure(ctx, tx, r)
			if err != nil {
				return err
			}
			failures = append(failures, failure)
		}
	}

	if len(failures) > 0 {
		return reservationError(failures)
	}

	return tx.Commit()
}

func describeFailure(ctx context.Context, tx *sql.Tx, r domain.Reservation) (LineFailure, error) {
	failure := LineFailure{ProductID: r.ProductID, Requested: r.Quantity, Reason: ReasonInsufficientStock}

	err := tx.QueryRowContext(ctx, `SELECT name, stock FROM products WHERE id = $1`, r.ProductID).
		Scan(&failure.Name, &failure.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			failure.Reason = ReasonNotFound
			return failure, nil
		}
		return failure, fmt.Errorf("read stock for %s: %w", r.ProductID, err)
	}

	return failure, nil
}

// Release restocks previously reserved quantities. Products deleted since the
// reservation are skipped.
func (s *PostgresStore) Release(ctx context.Context, reservations []domain.Reservation) error {
	merged, err := mergeReservations(reservations)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin release: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range merged {
		if _, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock + $2
			WHERE id = $1
		`, r.ProductID, r.Quantity); err != nil {
			return fmt.Errorf("release product %s: %w", r.ProductID, err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) Stats(ctx context.Context, lowStockThreshold int) (domain.CatalogStats, error) {
	var stats domain.CatalogStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE stock <= $1)
		FROM products
		WHERE active
	`, lowStockThreshold).Scan(&stats.ActiveProducts, &stats.LowStockProducts)
	if err != nil {
		return stats, fmt.Errorf("catalog stats: %w", err)
	}

	return stats, nil
}

var _ Store = (*PostgresStore)(nil)
