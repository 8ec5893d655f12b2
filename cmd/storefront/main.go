package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joao-fontenele/despensa-storefront/internal/config"
	"github.com/joao-fontenele/despensa-storefront/internal/messaging"
	"github.com/joao-fontenele/despensa-storefront/internal/seed"
	"github.com/joao-fontenele/despensa-storefront/internal/server"
	"github.com/joao-fontenele/despensa-storefront/internal/stats"
	"github.com/joao-fontenele/despensa-storefront/internal/telemetry"
)

const (
	serviceName    = "storefront"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(os.Stdout, cfg.Env)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	if cfg.TracingEnabled {
		shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, serviceName, serviceVersion)
		if err != nil {
			logger.Error("failed to initialize tracer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = shutdownTracer(context.Background()) }()
	} else {
		telemetry.InitPropagators()
	}

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(context.Background()) }()

	stores := server.MemoryStores()
	if cfg.StorageDriver == config.DriverPostgres {
		db, err := telemetry.OpenDB(ctx, cfg.PostgresURL, telemetry.DefaultPool)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		stores = server.PostgresStores(db)
	}

	seedFile, err := seed.Load(cfg.SeedFile)
	if err != nil {
		logger.Error("failed to load seed data", "error", err)
		os.Exit(1)
	}
	if !seedFile.SecureAdmin(cfg.SeedAdminPassword, cfg.IsDevelopment()) {
		logger.Warn("admin account not seeded: set SEED_ADMIN_PASSWORD to create it outside development")
	}
	if _, err := seed.NewSeeder(stores.Catalog, stores.Discounts, stores.Users, logger).Apply(ctx, seedFile); err != nil {
		logger.Error("failed to seed store", "error", err)
		os.Exit(1)
	}

	opts := server.Options{
		Location:          cfg.Location(),
		DeliveryFee:       cfg.DeliveryFee,
		JWTSecret:         cfg.JWTSecret,
		TokenTTL:          cfg.TokenTTL,
		LowStockThreshold: cfg.LowStockThreshold,
		Metrics:           metricsHandler,
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.OrderEventsTopic)
		defer func() { _ = producer.Close() }()
		opts.Publisher = producer
	}

	if cfg.RedisURL != "" {
		rdb, err := stats.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = rdb.Close() }()
		opts.Sales = stats.NewRedisSales(rdb, "")
	}

	mux, err := server.New(stores, opts, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.Instrument(mux, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting storefront",
			"port", cfg.Port,
			"storage", cfg.StorageDriver,
			"events", len(cfg.KafkaBrokers) > 0,
			"redis_stats", cfg.RedisURL != "",
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
