// Package config loads the storefront settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	Env  string `envconfig:"APP_ENV" default:"development"`
	Port string `envconfig:"PORT" default:"8080"`

	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"memory"`
	PostgresURL   string `envconfig:"POSTGRES_URL"`

	KafkaBrokers     []string `envconfig:"KAFKA_BROKERS"`
	OrderEventsTopic string   `envconfig:"ORDER_EVENTS_TOPIC" default:"order.created"`
	RedisURL         string   `envconfig:"REDIS_URL"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	DeliveryFee       int64  `envconfig:"DELIVERY_FEE" default:"5000"`
	StoreTimezone     string `envconfig:"STORE_TIMEZONE" default:"America/Asuncion"`
	LowStockThreshold int    `envconfig:"LOW_STOCK_THRESHOLD" default:"5"`
	SeedFile          string `envconfig:"SEED_FILE"`
	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD"`

	OTLPEndpoint   string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	TracingEnabled bool   `envconfig:"TRACING_ENABLED" default:"false"`

	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"file://migrations"`

	location *time.Location
}

// Load reads envFile when it exists and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings the storefront server needs.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.PostgresURL == "" {
			return errors.New("POSTGRES_URL is required when STORAGE_DRIVER is postgres")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.DeliveryFee < 0 {
		return errors.New("DELIVERY_FEE cannot be negative")
	}
	if c.LowStockThreshold < 0 {
		return errors.New("LOW_STOCK_THRESHOLD cannot be negative")
	}

	loc, err := time.LoadLocation(c.StoreTimezone)
	if err != nil {
		return fmt.Errorf("invalid STORE_TIMEZONE %q: %w", c.StoreTimezone, err)
	}
	c.location = loc
	return nil
}

// Location is the store's time zone. It falls back to UTC before Validate
// has run.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
