package persistence

import (
	"context"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCatalogReader reads the Shopware category tree, shops and
// configurator groups
type GormCatalogReader struct {
	db *gorm.DB
}

// NewGormCatalogReader creates a new GormCatalogReader
func NewGormCatalogReader(db *gorm.DB) *GormCatalogReader {
	return &GormCatalogReader{db: db}
}

// FindAll returns every category
func (r *GormCatalogReader) FindAll(ctx context.Context) ([]integration.CategoryNode, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).Order("position ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	nodes := make([]integration.CategoryNode, len(rows))
	for i := range rows {
		nodes[i] = rows[i].ToDomain()
	}
	return nodes, nil
}

type shopRow struct {
	models.ShopModel
	Locale string
}

// FindActive returns the active shops, default shop first
func (r *GormCatalogReader) FindActive(ctx context.Context) ([]integration.Shop, error) {
	var rows []shopRow
	err := r.db.WithContext(ctx).
		Model(&models.ShopModel{}).
		Select("s_core_shops.*, s_core_locales.locale AS locale").
		Joins("LEFT JOIN s_core_locales ON s_core_locales.id = s_core_shops.locale_id").
		Where("s_core_shops.active = ?", true).
		Order(`s_core_shops."default" DESC, s_core_shops.id ASC`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	shops := make([]integration.Shop, len(rows))
	for i, row := range rows {
		shops[i] = integration.Shop{
			ID:             row.ID,
			Name:           row.Name,
			RootCategoryID: row.CategoryID,
			Locale:         row.Locale,
			Active:         row.Active,
			Default:        row.Default,
		}
	}
	return shops, nil
}

// GormConfiguratorGroupReader reads configurator groups with their options
type GormConfiguratorGroupReader struct {
	db *gorm.DB
}

// NewGormConfiguratorGroupReader creates a new GormConfiguratorGroupReader
func NewGormConfiguratorGroupReader(db *gorm.DB) *GormConfiguratorGroupReader {
	return &GormConfiguratorGroupReader{db: db}
}

// FindAll returns every group ordered by position with its options
func (r *GormConfiguratorGroupReader) FindAll(ctx context.Context) ([]integration.ConfiguratorGroup, error) {
	db := r.db.WithContext(ctx)

	var groups []models.ConfiguratorGroupModel
	if err := db.Order("position ASC, id ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}

	var options []models.ConfiguratorOptionModel
	if err := db.Where("group_id IN ?", ids).Order("position ASC, id ASC").Find(&options).Error; err != nil {
		return nil, err
	}

	byGroup := make(map[int64][]integration.ConfiguratorOption, len(groups))
	for _, o := range options {
		byGroup[o.GroupID] = append(byGroup[o.GroupID], integration.ConfiguratorOption{
			ID:       o.ID,
			Name:     o.Name,
			Position: o.Position,
		})
	}

	result := make([]integration.ConfiguratorGroup, len(groups))
	for i, g := range groups {
		result[i] = integration.ConfiguratorGroup{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			Position:    g.Position,
			Options:     byGroup[g.ID],
		}
	}
	return result, nil
}

var (
	_ integration.CategoryReader          = (*GormCatalogReader)(nil)
	_ integration.ShopReader              = (*GormCatalogReader)(nil)
	_ integration.ConfiguratorGroupReader = (*GormConfiguratorGroupReader)(nil)
)
