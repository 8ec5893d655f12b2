// Package auth registers users, issues bearer tokens and guards routes.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func duplicateEmail(email string) error {
	return apperr.Duplicate("email %s is already registered", email)
}

type PostgresUsers struct {
	db *sql.DB
}

func NewPostgresUsers(db *sql.DB) *PostgresUsers {
	return &PostgresUsers{db: db}
}

func (s *PostgresUsers) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Email = NormalizeEmail(user.Email)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Email, user.PasswordHash, user.Name, user.IsAdmin, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return duplicateEmail(user.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (s *PostgresUsers) get(ctx context.Context, column, value string) (*domain.User, error) {
	user := &domain.User{}

	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, is_admin, created_at
		FROM users
		WHERE `+column+` = $1
	`, value).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

func (s *PostgresUsers) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.get(ctx, "id", id)
}

func (s *PostgresUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.get(ctx, "email", NormalizeEmail(email))
}

type MemoryUsers struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]domain.User)}
}

func (s *MemoryUsers) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = NormalizeEmail(user.Email)
	for _, u := range s.users {
		if u.Email == user.Email {
			return duplicateEmail(user.Email)
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUsers) Get(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &u, nil
}

func (s *MemoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

var (
	_ UserStore = (*PostgresUsers)(nil)
	_ UserStore = (*MemoryUsers)(nil)
)
