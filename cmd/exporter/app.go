package main

import (
	"fmt"

	appintegration "github.com/DaHaiz/plentymarkets-shopware-connector/internal/application/integration"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/config"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/erp"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/persistence"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// application holds the wired services of one process
type application struct {
	categories  *appintegration.CategoryReconciler
	attributes  *appintegration.AttributeExporter
	orders      *appintegration.OrderExportService
	itemNumbers *appintegration.ItemNumberService
	logger      *zap.Logger
}

func newApplication(
	cfg *config.Config,
	db *gorm.DB,
	lock integration.ExportLock,
	metrics *telemetry.ExportMetrics,
	log *zap.Logger,
	withERP bool,
) (*application, error) {
	settings := settingsFromConfig(cfg.Export)
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	articles := persistence.NewGormArticleRepository(db)
	app := &application{
		itemNumbers: appintegration.NewItemNumberService(articles, settings.ItemNumberPrefix, log.Named("item_numbers")),
		logger:      log,
	}
	if !withERP {
		return app, nil
	}

	if err := cfg.ValidateERP(); err != nil {
		return nil, err
	}
	client, err := erp.NewClient(cfg.ERP, erp.WithLogger(log.Named("erp")))
	if err != nil {
		return nil, fmt.Errorf("failed to create erp client: %w", err)
	}

	mappings := persistence.NewGormMappingStore(db)
	catalog := persistence.NewGormCatalogReader(db)

	app.categories = appintegration.NewCategoryReconciler(client, catalog, catalog, mappings, settings, log.Named("categories")).
		WithLock(lock, cfg.Lock.CategoryTTL).
		WithMetrics(metrics)

	app.attributes = appintegration.NewAttributeExporter(client, persistence.NewGormConfiguratorGroupReader(db), mappings, settings, log.Named("attributes")).
		WithLock(lock, cfg.Lock.CategoryTTL).
		WithMetrics(metrics)

	app.orders = appintegration.NewOrderExportService(appintegration.OrderExportDeps{
		Orders:    persistence.NewGormOrderReader(db),
		Articles:  articles,
		Statuses:  persistence.NewGormExportStatusRepository(db),
		Mappings:  mappings,
		Customers: appintegration.NewCustomerExporter(mappings, client, log.Named("customers")),
		Payments:  appintegration.NewIncomingPaymentService(mappings, client, log.Named("payments")),
		Client:    client,
	}, settings, log.Named("orders")).
		WithLock(lock, cfg.Lock.OrderTTL).
		WithMetrics(metrics)

	return app, nil
}

// settingsFromConfig maps the export section onto the service settings
func settingsFromConfig(cfg config.ExportConfig) appintegration.ExportSettings {
	settings := appintegration.DefaultExportSettings()
	settings.OrderMarkingID = appintegration.OptionalID(cfg.OrderMarkingID)
	settings.ResponsibleUserID = appintegration.OptionalID(cfg.ResponsibleUserID)
	settings.DefaultReferrerID = cfg.DefaultReferrerID
	settings.ItemTextSync = cfg.ItemTextSync
	settings.ItemNumberPrefix = cfg.ItemNumberPrefix
	if cfg.PaidStatusID > 0 {
		settings.PaidStatusID = cfg.PaidStatusID
	}
	if cfg.DebitMethodOfPaymentID > 0 {
		settings.DebitMethodOfPaymentID = cfg.DebitMethodOfPaymentID
	}
	if cfg.PrimaryLanguage != "" {
		settings.PrimaryLanguage = cfg.PrimaryLanguage
	}
	return settings
}
