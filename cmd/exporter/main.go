// Command exporter runs one connector job against the shop database and
// the plentymarkets SOAP API: the category export, the attribute export,
// a single order export or the generation of the next article number.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/cache"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/config"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/logger"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/persistence"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	var (
		configFile     string
		categories     bool
		attributes     bool
		orderID        int64
		nextItemNumber bool
		allowLocalLock bool
	)

	flag.StringVar(&configFile, "config", "", "Path to the TOML config file (default: search ./config.toml)")
	flag.BoolVar(&categories, "categories", false, "Export the shop category tree")
	flag.BoolVar(&attributes, "attributes", false, "Export configurator groups as item attributes")
	flag.Int64Var(&orderID, "order", 0, "Export the order with this shop order id")
	flag.BoolVar(&nextItemNumber, "next-item-number", false, "Generate and print the next free article number")
	flag.BoolVar(&allowLocalLock, "allow-local-lock", false, "Fall back to an in-process lock when Redis is unavailable")
	flag.Parse()

	selected, err := selectJob(categories, attributes, orderID, nextItemNumber)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(cfg, log, selected, allowLocalLock))
}

func run(cfg *config.Config, log *zap.Logger, j job, allowLocalLock bool) int {
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting connector job",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("job", j.name()),
		zap.String("version", version),
	)

	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tp, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Error("Failed to initialize tracing", zap.Error(err))
		return 1
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetryCfg, 0, log)
	if err != nil {
		log.Error("Failed to initialize metrics", zap.Error(err))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mp.Shutdown(shutdownCtx); err != nil {
			log.Warn("Error shutting down meter provider", zap.Error(err))
		}
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("Error shutting down tracer provider", zap.Error(err))
		}
	}()
	metrics, err := telemetry.NewExportMetrics(mp.Meter("connector"))
	if err != nil {
		log.Error("Failed to create export metrics", zap.Error(err))
		return 1
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.SQLLevel))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:  cfg.Telemetry.Enabled,
		DBSystem: persistence.DBSystem(&cfg.Database),
	}); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	if cfg.Database.Driver == "sqlite" {
		if err := persistence.EnsureConnectorTables(db.DB); err != nil {
			log.Error("Failed to prepare connector tables", zap.Error(err))
			return 1
		}
	}

	lockFactory := cache.NewExportLockFactory(cfg.Redis, cfg.Lock,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(allowLocalLock),
	)
	lock, closeLock, err := lockFactory.CreateLock(ctx)
	if err != nil {
		log.Error("Failed to create export lock", zap.Error(err))
		return 1
	}
	defer func() {
		if err := closeLock(); err != nil {
			log.Warn("Error closing export lock", zap.Error(err))
		}
	}()

	app, err := newApplication(cfg, db.DB, lock, metrics, log, j.needsERP())
	if err != nil {
		log.Error("Failed to set up connector", zap.Error(err))
		return 1
	}

	if err := j.run(ctx, app); err != nil {
		log.Error("Connector job failed", zap.String("job", j.name()), zap.Error(err))
		return 1
	}
	return 0
}
