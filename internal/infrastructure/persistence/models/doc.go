// Package models contains GORM persistence models. The connector owns the
// plenty_* tables; the s_* models are read-only views of the Shopware
// schema and are never migrated by the connector.
//
// Structure:
// - integration.go: connector tables (plenty_mapping, plenty_order)
// - shopware.go: Shopware order, customer and article tables
// - catalog.go: Shopware category, shop and configurator tables
package models
