package persistence

import (
	"context"
	"errors"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormArticleRepository reads article details and maintains the shop's
// article number counter. It implements integration.ArticleDetailReader
// and integration.ItemNumberRepository.
type GormArticleRepository struct {
	db *gorm.DB
}

// NewGormArticleRepository creates a new GormArticleRepository
func NewGormArticleRepository(db *gorm.DB) *GormArticleRepository {
	return &GormArticleRepository{db: db}
}

// ---------------------------------------------------------------------------
// ArticleDetailReader implementation
// ---------------------------------------------------------------------------

// FindByNumber finds the article detail carrying an order number
func (r *GormArticleRepository) FindByNumber(ctx context.Context, number string) (*integration.ArticleDetail, bool, error) {
	var model models.ArticleDetailModel
	if err := r.db.WithContext(ctx).Where("ordernumber = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return model.ToDomain(), true, nil
}

// ---------------------------------------------------------------------------
// ItemNumberRepository implementation
// ---------------------------------------------------------------------------

// Exists reports whether any article detail uses the number
func (r *GormArticleRepository) Exists(ctx context.Context, number string) (bool, error) {
	return r.exists(r.db.WithContext(ctx).Where("ordernumber = ?", number))
}

// ExistsForArticle reports whether a detail of the article uses the number
func (r *GormArticleRepository) ExistsForArticle(ctx context.Context, number string, articleID int64) (bool, error) {
	return r.exists(r.db.WithContext(ctx).Where(map[string]any{"ordernumber": number, "articleID": articleID}))
}

// ExistsForDetail reports whether the detail uses the number
func (r *GormArticleRepository) ExistsForDetail(ctx context.Context, number string, detailID int64) (bool, error) {
	return r.exists(r.db.WithContext(ctx).Where("ordernumber = ? AND id = ?", number, detailID))
}

func (r *GormArticleRepository) exists(scope *gorm.DB) (bool, error) {
	var count int64
	if err := scope.Model(&models.ArticleDetailModel{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CounterValue returns the last issued article number; a missing counter
// row counts as zero
func (r *GormArticleRepository) CounterValue(ctx context.Context) (int64, error) {
	var model models.OrderNumberModel
	if err := r.db.WithContext(ctx).Where("name = ?", models.ArticleNumberCounter).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return model.Number, nil
}

// SetCounterValue stores the last issued article number
func (r *GormArticleRepository) SetCounterValue(ctx context.Context, value int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.OrderNumberModel{}).
			Where("name = ?", models.ArticleNumberCounter).
			Update("number", value)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
		return tx.Create(&models.OrderNumberModel{Name: models.ArticleNumberCounter, Number: value}).Error
	})
}

// Ensure GormArticleRepository implements the article ports
var (
	_ integration.ArticleDetailReader  = (*GormArticleRepository)(nil)
	_ integration.ItemNumberRepository = (*GormArticleRepository)(nil)
)
