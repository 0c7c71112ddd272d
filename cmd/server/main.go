package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/shopledger/backend/internal/application/backup"
	catalogapp "github.com/shopledger/backend/internal/application/catalog"
	financeapp "github.com/shopledger/backend/internal/application/finance"
	partnerapp "github.com/shopledger/backend/internal/application/partner"
	reportapp "github.com/shopledger/backend/internal/application/report"
	tradeapp "github.com/shopledger/backend/internal/application/trade"
	"github.com/shopledger/backend/internal/infrastructure/cache"
	"github.com/shopledger/backend/internal/infrastructure/config"
	"github.com/shopledger/backend/internal/infrastructure/event"
	"github.com/shopledger/backend/internal/infrastructure/logger"
	"github.com/shopledger/backend/internal/infrastructure/persistence"
	"github.com/shopledger/backend/internal/infrastructure/scheduler"
	"github.com/shopledger/backend/internal/infrastructure/storage"
	"github.com/shopledger/backend/internal/infrastructure/telemetry"
	"github.com/shopledger/backend/internal/interfaces/http/handler"
	"github.com/shopledger/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting shop ledger backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("driver", cfg.Database.Driver),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	db, err := persistence.Open(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.NewDBTracingConfig(cfg.Telemetry, cfg.Database), log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if meterProvider.IsEnabled() {
		dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter("shopledger/db"), poolStats(db), cfg.Database.SlowQueryThresh, log)
		if err != nil {
			log.Fatal("Failed to create database metrics", zap.Error(err))
		}
		defer dbMetrics.Stop()
		if err := dbMetrics.Register(db.DB); err != nil {
			log.Fatal("Failed to register database metrics", zap.Error(err))
		}
	}

	// Repositories
	partRepo := persistence.NewGormPartRepository(db.DB, log)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB, log)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB, log)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB, log)
	purchaseRepo := persistence.NewGormStockPurchaseRepository(db.DB, log)

	// Change events invalidate cached reports
	bus := event.NewInMemoryEventBus(log)
	ledgerOpts := []reportapp.LedgerServiceOption{reportapp.WithMetrics(meterProvider.Meter("shopledger/report"))}
	if reportCache := cache.OpenReportCache(cfg.Redis, log); reportCache != nil {
		defer func() {
			if err := reportCache.Close(); err != nil {
				log.Warn("Error closing report cache", zap.Error(err))
			}
		}()
		invalidator := reportapp.NewCacheInvalidator(reportCache, log)
		bus.Subscribe(invalidator, invalidator.EventTypes()...)
		ledgerOpts = append(ledgerOpts, reportapp.WithCache(reportCache))
	}
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	partService := catalogapp.NewPartService(partRepo, bus, log)
	supplierService := partnerapp.NewSupplierService(supplierRepo, log)
	transactionService := financeapp.NewTransactionService(transactionRepo, bus, log)
	invoiceService := tradeapp.NewInvoiceService(invoiceRepo, bus, log)
	purchaseService := tradeapp.NewStockPurchaseService(purchaseRepo, bus, log)
	ledgerService := reportapp.NewLedgerService(reportapp.Sources{
		Invoices:       invoiceRepo,
		StockPurchases: purchaseRepo,
		Transactions:   transactionRepo,
		Parts:          partRepo,
	}, nil, log, ledgerOpts...)

	backupService := backup.NewService(db, backupStorage(ctx, cfg, log), cfg.App.Name, log,
		backup.WithPrefix(cfg.Storage.BackupPrefix),
	)

	var backupScheduler *scheduler.BackupScheduler
	if cfg.Storage.Enabled && cfg.Storage.BackupSchedule != "" {
		hour, minute, err := scheduler.ParseCronSchedule(cfg.Storage.BackupSchedule)
		if err != nil {
			log.Fatal("Invalid backup schedule", zap.Error(err))
		}
		schedCfg := scheduler.DefaultBackupSchedulerConfig()
		schedCfg.Hour, schedCfg.Minute = hour, minute
		backupScheduler = scheduler.NewBackupScheduler(schedCfg, backupService, log)
		if err := backupScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start backup scheduler", zap.Error(err))
		}
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		Meter:          meterProvider.Meter("http.server"),
	}, log)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewPartHandler(partService)).
		Register(handler.NewSupplierHandler(supplierService)).
		Register(handler.NewTransactionHandler(transactionService)).
		Register(handler.NewInvoiceHandler(invoiceService)).
		Register(handler.NewStockPurchaseHandler(purchaseService)).
		Register(handler.NewReportHandler(ledgerService)).
		Register(handler.NewSystemHandler(cfg.App.Name, db, backupService)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if backupScheduler != nil {
		if err := backupScheduler.Stop(shutdownCtx); err != nil {
			log.Warn("Backup scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Error stopping event bus", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// backupStorage returns the S3 bucket when storage is enabled. A nil
// interface makes backups answer BACKUP_UNAVAILABLE.
func backupStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) backup.ObjectStorage {
	if !cfg.Storage.Enabled {
		log.Info("Object storage disabled, backups unavailable")
		return nil
	}
	s3, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to prepare backup bucket", zap.Error(err))
	}
	return s3
}

// poolStats exposes the database pool to the metrics gauges
func poolStats(db *persistence.Database) telemetry.PoolStatsFunc {
	return func() (telemetry.PoolStats, error) {
		stats, err := db.Stats()
		if err != nil {
			return telemetry.PoolStats{}, err
		}
		return telemetry.PoolStats{
			MaxOpen:   stats.MaxOpenConnections,
			Open:      stats.OpenConnections,
			InUse:     stats.InUse,
			Idle:      stats.Idle,
			WaitCount: stats.WaitCount,
		}, nil
	}
}
