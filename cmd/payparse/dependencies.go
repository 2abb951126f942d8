package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/FACorreiaa/payment-reports/internal/domain/import/bank"
	"github.com/FACorreiaa/payment-reports/internal/domain/import/repository"
	"github.com/FACorreiaa/payment-reports/internal/domain/import/service"
	"github.com/FACorreiaa/payment-reports/pkg/config"
	"github.com/FACorreiaa/payment-reports/pkg/db"
	"github.com/FACorreiaa/payment-reports/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB // nil unless a command needs the database
	Logger *slog.Logger

	Registry        *bank.Registry
	MetricsRegistry *prometheus.Registry
	Metrics         *service.Metrics

	PaymentStore   *repository.PaymentStore
	FileStorage    storage.Storage
	PaymentService *service.PaymentService
}

// InitDependencies initializes all application dependencies. The database is
// only opened when withDB is set.
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger, withDB bool) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: bank.DefaultRegistry(),
	}

	if withDB {
		if err := deps.initDatabase(ctx); err != nil {
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
	}

	if err := deps.initServices(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Debug("all dependencies initialized")
	return deps, nil
}

// initDatabase opens the connection pool and the payment store on top of it
func (d *Dependencies) initDatabase(ctx context.Context) error {
	if !d.Config.Database.Enabled() {
		return fmt.Errorf("database is not configured, set POSTGRES_HOST")
	}

	database, err := db.New(ctx, db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        10,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database
	d.PaymentStore = repository.NewPaymentStore(d.DB.Pool, d.Logger)
	return nil
}

// initServices initializes metrics, staging storage and the payment service
func (d *Dependencies) initServices() error {
	d.MetricsRegistry = prometheus.NewRegistry()
	d.MetricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = service.NewMetrics(d.MetricsRegistry)

	fileStorage, err := storage.New(&storage.Config{LocalPath: d.Config.Storage.LocalPath})
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage

	d.PaymentService = service.NewPaymentService(d.Registry, d.Logger).
		WithStorage(d.FileStorage).
		WithMetrics(d.Metrics).
		WithWorkers(d.Config.Parse.Workers)
	if d.PaymentStore != nil {
		d.PaymentService.WithSink(d.PaymentStore)
	}
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
}
