package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExportStatusRepository implements integration.ExportStatusRepository
// on the plenty_order table
type GormExportStatusRepository struct {
	db *gorm.DB
}

// NewGormExportStatusRepository creates a new GormExportStatusRepository
func NewGormExportStatusRepository(db *gorm.DB) *GormExportStatusRepository {
	return &GormExportStatusRepository{db: db}
}

// RecordFailure stores a failed attempt. Remote IDs of an earlier success
// are kept.
func (r *GormExportStatusRepository) RecordFailure(ctx context.Context, orderID int64, status integration.ExportStatus, at time.Time) error {
	if !status.IsValid() || !status.IsError() {
		return &integration.ValidationError{Field: "status", Value: status.String(), Reason: "must be an error status"}
	}
	return r.upsertAttempt(ctx, orderID, map[string]any{
		"status":             int(status),
		"timestamp_last_try": at,
	}, &models.PlentyOrderModel{
		OrderID:          orderID,
		Status:           int(status),
		TimestampLastTry: at,
	})
}

// RecordSuccess stores a successful attempt with the remote order reference
func (r *GormExportStatusRepository) RecordSuccess(ctx context.Context, orderID int64, remoteOrderID int64, remoteStatus float64, at time.Time) error {
	return r.upsertAttempt(ctx, orderID, map[string]any{
		"status":              int(integration.ExportStatusSuccess),
		"timestamp_last_try":  at,
		"timestamp_success":   at,
		"plenty_order_id":     remoteOrderID,
		"plenty_order_status": remoteStatus,
	}, &models.PlentyOrderModel{
		OrderID:           orderID,
		Status:            int(integration.ExportStatusSuccess),
		TimestampLastTry:  at,
		TimestampSuccess:  &at,
		PlentyOrderID:     &remoteOrderID,
		PlentyOrderStatus: &remoteStatus,
	})
}

// upsertAttempt increments the try counter of an existing record or
// creates the first one
func (r *GormExportStatusRepository) upsertAttempt(ctx context.Context, orderID int64, updates map[string]any, first *models.PlentyOrderModel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates["number_of_tries"] = gorm.Expr("number_of_tries + 1")
		result := tx.Model(&models.PlentyOrderModel{}).
			Where("order_id = ?", orderID).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
		first.NumberOfTries = 1
		return tx.Create(first).Error
	})
}

// FindByOrderID returns the export status of an order
func (r *GormExportStatusRepository) FindByOrderID(ctx context.Context, orderID int64) (*integration.ExportStatusRecord, error) {
	var model models.PlentyOrderModel
	if err := r.db.WithContext(ctx).First(&model, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormExportStatusRepository implements integration.ExportStatusRepository
var _ integration.ExportStatusRepository = (*GormExportStatusRepository)(nil)
