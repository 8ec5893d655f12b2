package discounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

const ruleColumns = `id, weekday, percentage, scope, text, active`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func scanRule(row interface{ Scan(...any) error }) (domain.DiscountRule, error) {
	var r domain.DiscountRule
	err := row.Scan(&r.ID, &r.Weekday, &r.Percentage, &r.Scope, &r.Text, &r.Active)
	return r, err
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.DiscountRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM discount_rules
		ORDER BY array_position(ARRAY['monday','tuesday','wednesday','thursday','friday','saturday','sunday'], weekday)
	`)
	if err != nil {
		return nil, fmt.Errorf("query discount rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rules := []domain.DiscountRule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan discount rule: %w", err)
		}
		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rules, nil
}

func (s *PostgresStore) get(ctx context.Context, column, value string) (*domain.DiscountRule, error) {
	r, err := scanRule(s.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM discount_rules WHERE `+column+` = $1`, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("discount rule not found")
		}
		return nil, fmt.Errorf("get discount rule: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.DiscountRule, error) {
	return s.get(ctx, "id", id)
}

func (s *PostgresStore) ForWeekday(ctx context.Context, weekday string) (*domain.DiscountRule, error) {
	return s.get(ctx, "weekday", weekday)
}

func (s *PostgresStore) Create(ctx context.Context, rule *domain.DiscountRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO discount_rules (id, weekday, percentage, scope, text, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rule.ID, rule.Weekday, rule.Percentage, rule.Scope, rule.Text, rule.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateWeekday(rule.Weekday)
		}
		return fmt.Errorf("insert discount rule: %w", err)
	}

	return nil
}

func (s *PostgresStore) Update(ctx context.Context, rule *domain.DiscountRule) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE discount_rules
		SET weekday = $2, percentage = $3, scope = $4, text = $5, active = $6
		WHERE id = $1
	`, rule.ID, rule.Weekday, rule.Percentage, rule.Scope, rule.Text, rule.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateWeekday(rule.Weekday)
		}
		return fmt.Errorf("update discount rule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return apperr.NotFound("discount rule not found")
	}

	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM discount_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete discount rule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return apperr.NotFound("discount rule not found")
	}

	return nil
}

var _ Store = (*PostgresStore)(nil)
