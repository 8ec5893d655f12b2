package seed

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/despensa-storefront/internal/apperr"
	"github.com/joao-fontenele/despensa-storefront/internal/auth"
	"github.com/joao-fontenele/despensa-storefront/internal/catalog"
	"github.com/joao-fontenele/despensa-storefront/internal/discounts"
	"github.com/joao-fontenele/despensa-storefront/internal/domain"
)

func newSeeder() (*Seeder, *catalog.MemoryStore, *discounts.MemoryStore, *auth.MemoryUsers) {
	store := catalog.NewMemoryStore()
	rules := discounts.NewMemoryStore()
	users := auth.NewMemoryUsers()
	return NewSeeder(store, rules, users, slog.New(slog.NewTextHandler(io.Discard, nil))), store, rules, users
}

func TestLoad_Default(t *testing.T) {
	file, err := Load("")
	require.NoError(t, err)

	require.NotNil(t, file.Admin)
	assert.Equal(t, "admin@despensamurillo.com", file.Admin.Email)
	assert.Len(t, file.Products, 3)
	assert.Len(t, file.Discounts, 7)
	assert.Equal(t, int64(8500), file.Products[0].Price)
	assert.Equal(t, "saturday", file.Discounts[5].Weekday)
	assert.Equal(t, domain.ScopeDelivery, file.Discounts[5].Scope)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
products:
  - name: Yerba
    category: pantry
    price: 20000
    stock: 3
    description: Yerba mate
`), 0o600))

	file, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, file.Admin)
	require.Len(t, file.Products, 1)
	assert.Equal(t, "Yerba", file.Products[0].Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFile_SecureAdmin(t *testing.T) {
	tests := []struct {
		name         string
		password     string
		development  bool
		wantSeeded   bool
		wantPassword string
	}{
		{"development keeps the default", "", true, true, DefaultAdminPassword},
		{"production drops the default", "", false, false, ""},
		{"production with configured password", "long-random-pass", false, true, "long-random-pass"},
		{"configured password wins in development", "long-random-pass", true, true, "long-random-pass"},
		{"configured password equal to the default is still refused", DefaultAdminPassword, false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := Load("")
			require.NoError(t, err)
			require.Equal(t, DefaultAdminPassword, file.Admin.Password)

			seeded := file.SecureAdmin(tt.password, tt.development)
			assert.Equal(t, tt.wantSeeded, seeded)
			if !tt.wantSeeded {
				assert.Nil(t, file.Admin)
				return
			}
			require.NotNil(t, file.Admin)
			assert.Equal(t, tt.wantPassword, file.Admin.Password)
		})
	}

	t.Run("no admin in file", func(t *testing.T) {
		file := &File{}
		assert.True(t, file.SecureAdmin("", false))
		assert.Nil(t, file.Admin)
	})
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("products:\n  - name: x\n    colour: red\n"))
	assert.Error(t, err)
}

func TestSeeder_Apply(t *testing.T) {
	ctx := context.Background()
	file, err := Load("")
	require.NoError(t, err)

	t.Run("seeds an empty store", func(t *testing.T) {
		seeder, store, rules, users := newSeeder()

		res, err := seeder.Apply(ctx, file)
		require.NoError(t, err)
		assert.Equal(t, Result{ProductsCreated: 3, AdminCreated: true, RulesCreated: 7}, res)

		products, err := store.ListActive(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 3)

		monday, err := rules.ForWeekday(ctx, "monday")
		require.NoError(t, err)
		assert.Equal(t, 10, monday.Percentage)
		assert.True(t, monday.Active)

		admin, err := users.GetByEmail(ctx, "admin@despensamurillo.com")
		require.NoError(t, err)
		assert.True(t, admin.IsAdmin)
		assert.True(t, auth.CheckPassword(admin.PasswordHash, "admin123"))
	})

	t.Run("second run changes nothing", func(t *testing.T) {
		seeder, store, _, _ := newSeeder()

		_, err := seeder.Apply(ctx, file)
		require.NoError(t, err)

		res, err := seeder.Apply(ctx, file)
		require.NoError(t, err)
		assert.Equal(t, Result{}, res)

		products, err := store.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 3)
	})

	t.Run("keeps existing records", func(t *testing.T) {
		seeder, store, rules, _ := newSeeder()
		require.NoError(t, store.Create(ctx, &domain.Product{Name: "Yerba", Category: domain.CategoryPantry, Price: 20000, Stock: 1, Active: true}))
		require.NoError(t, rules.Create(ctx, &domain.DiscountRule{Weekday: "monday", Percentage: 50, Scope: domain.ScopeAll, Text: "half price", Active: true}))

		res, err := seeder.Apply(ctx, file)
		require.NoError(t, err)
		assert.Equal(t, 0, res.ProductsCreated)
		assert.Equal(t, 6, res.RulesCreated)

		monday, err := rules.ForWeekday(ctx, "monday")
		require.NoError(t, err)
		assert.Equal(t, 50, monday.Percentage)
	})

	t.Run("production seed skips the default admin", func(t *testing.T) {
		seeder, store, _, users := newSeeder()
		prod, err := Load("")
		require.NoError(t, err)
		prod.SecureAdmin("", false)

		res, err := seeder.Apply(ctx, prod)
		require.NoError(t, err)
		assert.False(t, res.AdminCreated)
		assert.Equal(t, 3, res.ProductsCreated)

		_, err = users.GetByEmail(ctx, "admin@despensamurillo.com")
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

		products, err := store.ListActive(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 3)
	})

	t.Run("legacy delivery scope is stored canonically", func(t *testing.T) {
		seeder, _, rules, _ := newSeeder()

		_, err := seeder.Apply(ctx, &File{Discounts: []Discount{{Weekday: "saturday", Percentage: 25, Scope: "delivery", Text: "25% OFF en delivery"}}})
		require.NoError(t, err)

		saturday, err := rules.ForWeekday(ctx, "saturday")
		require.NoError(t, err)
		assert.Equal(t, domain.ScopeDelivery, saturday.Scope)
	})

	t.Run("rejects invalid rules", func(t *testing.T) {
		seeder, _, _, _ := newSeeder()

		_, err := seeder.Apply(ctx, &File{Discounts: []Discount{{Weekday: "someday", Percentage: 10, Scope: "all", Text: "x"}}})
		assert.Error(t, err)
	})
}
