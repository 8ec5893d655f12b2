// Package seed loads the starter catalog, admin account and discount
// schedule, and applies them without touching existing records.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/auth"
	"github.com/joao-fontenele/despensa-storefront/internal/catalog"
	"github.com/joao-fontenele/despensa-storefront/internal/discounts"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

//go:embed default.yaml
var defaultSeed []byte

// DefaultAdminPassword is the password of the built-in admin account. It is
// only ever seeded in development.
const DefaultAdminPassword = "admin123"

type Admin struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type Product struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Price       int64  `yaml:"price"`
	Stock       int    `yaml:"stock"`
	Image       string `yaml:"image"`
	Description string `yaml:"description"`
}

type Discount struct {
	Weekday    string `yaml:"weekday"`
	Percentage int    `yaml:"percentage"`
	Scope      string `yaml:"scope"`
	Text       string `yaml:"text"`
	Inactive   bool   `yaml:"inactive"`
}

type File struct {
	Admin     *Admin     `yaml:"admin"`
	Products  []Product  `yaml:"products"`
	Discounts []Discount `yaml:"discounts"`
}

// Load reads the seed file at path, or the built-in data when path is empty.
func Load(path string) (*File, error) {
	if path == "" {
		return Parse(bytes.NewReader(defaultSeed))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &file, nil
}

// SecureAdmin applies the admin password policy before seeding. A non-empty
// password replaces the one in the file. Outside development the built-in
// default password is never seeded: the admin entry is dropped and false is
// returned.
func (f *File) SecureAdmin(password string, development bool) bool {
	if f.Admin == nil {
		return true
	}
	if password != "" {
		f.Admin.Password = password
	}
	if !development && f.Admin.Password == DefaultAdminPassword {
		f.Admin = nil
		return false
	}
	return true
}

type Result struct {
	ProductsCreated int
	AdminCreated    bool
	RulesCreated    int
}

type Seeder struct {
	catalog   catalog.Store
	discounts discounts.Store
	users     auth.UserStore
	logger    *slog.Logger
}

func NewSeeder(store catalog.Store, rules discounts.Store, users auth.UserStore, logger *slog.Logger) *Seeder {
	return &Seeder{
		catalog:   store,
		discounts: rules,
		users:     users,
		logger:    logger,
	}
}

// Apply is idempotent: products are created only into an empty catalog, the
// admin only when the email is unused, and rules only for free weekdays.
func (s *Seeder) Apply(ctx context.Context, file *File) (Result, error) {
	var res Result

	created, err := s.seedProducts(ctx, file.Products)
	if err != nil {
		return res, err
	}
	res.ProductsCreated = created

	if file.Admin != nil {
		res.AdminCreated, err = s.seedAdmin(ctx, *file.Admin)
		if err != nil {
			return res, err
		}
	}

	res.RulesCreated, err = s.seedDiscounts(ctx, file.Discounts)
	if err != nil {
		return res, err
	}

	s.logger.Info("seed applied",
		"products_created", res.ProductsCreated,
		"admin_created", res.AdminCreated,
		"rules_created", res.RulesCreated,
	)
	return res, nil
}

func (s *Seeder) seedProducts(ctx context.Context, products []Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	existing, err := s.catalog.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i, sp := range products {
		p := &domain.Product{
			Name:        sp.Name,
			Category:    sp.Category,
			Price:       sp.Price,
			Stock:       sp.Stock,
			Image:       sp.Image,
			Description: sp.Description,
			Active:      true,
		}
		if err := catalog.Validate(p); err != nil {
			return i, fmt.Errorf("seed product %q: %w", sp.Name, err)
		}
		if err := s.catalog.Create(ctx, p); err != nil {
			return i, fmt.Errorf("create product %q: %w", sp.Name, err)
		}
	}
	return len(products), nil
}

func (s *Seeder) seedAdmin(ctx context.Context, admin Admin) (bool, error) {
	_, err := s.users.GetByEmail(ctx, admin.Email)
	if err == nil {
		return false, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return false, fmt.Errorf("look up admin: %w", err)
	}

	if admin.Password == "" {
		return false, errors.New("seed admin has no password")
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return false, err
	}

	user := &domain.User{
		Email:        admin.Email,
		PasswordHash: hash,
		Name:         admin.Name,
		IsAdmin:      true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperr.Is(err, apperr.KindDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}

func (s *Seeder) seedDiscounts(ctx context.Context, rules []Discount) (int, error) {
	created := 0
	for _, sd := range rules {
		rule := &domain.DiscountRule{
			Weekday:    sd.Weekday,
			Percentage: sd.Percentage,
			Scope:      sd.Scope,
			Text:       sd.Text,
			Active:     !sd.Inactive,
		}
		if err := discounts.Validate(rule); err != nil {
			return created, fmt.Errorf("seed discount for %s: %w", sd.Weekday, err)
		}

		_, err := s.discounts.ForWeekday(ctx, rule.Weekday)
		if err == nil {
			continue
		}
		if !apperr.Is(err, apperr.KindNotFound) {
			return created, fmt.Errorf("look up discount for %s: %w", rule.Weekday, err)
		}

		if err := s.discounts.Create(ctx, rule); err != nil {
			if apperr.Is(err, apperr.KindDuplicate) {
				continue
			}
			return created, fmt.Errorf("create discount for %s: %w", rule.Weekday, err)
		}
		created++
	}
	return created, nil
}
