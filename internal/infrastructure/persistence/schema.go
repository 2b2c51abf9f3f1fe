package persistence

import (
	"fmt"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// EnsureConnectorTables creates the connector owned tables when they are
// missing. Postgres deployments use the SQL migrations instead; this is
// for sqlite databases, which golang-migrate is not wired for.
func EnsureConnectorTables(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.PlentyMappingModel{}, &models.PlentyOrderModel{}); err != nil {
		return fmt.Errorf("failed to create connector tables: %w", err)
	}
	return nil
}
