package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMappingStore implements integration.MappingStore on the plenty_mapping table
type GormMappingStore struct {
	db *gorm.DB
}

// NewGormMappingStore creates a new GormMappingStore
func NewGormMappingStore(db *gorm.DB) *GormMappingStore {
	return &GormMappingStore{db: db}
}

// ---------------------------------------------------------------------------
// MappingReader implementation
// ---------------------------------------------------------------------------

// Resolve returns the remote ID mapped to the local ID
func (r *GormMappingStore) Resolve(ctx context.Context, entityType integration.EntityType, localID string) (string, bool, error) {
	model, found, err := r.find(ctx, r.db, entityType, localID)
	if err != nil || !found {
		return "", false, err
	}
	return model.RemoteID, true, nil
}

// ResolvePath returns the remote path mapped to the local ID
func (r *GormMappingStore) ResolvePath(ctx context.Context, entityType integration.EntityType, localID string) ([]string, bool, error) {
	model, found, err := r.find(ctx, r.db, entityType, localID)
	if err != nil || !found {
		return nil, false, err
	}
	return integration.SplitPath(model.Path), true, nil
}

func (r *GormMappingStore) find(ctx context.Context, db *gorm.DB, entityType integration.EntityType, localID string) (*models.PlentyMappingModel, bool, error) {
	var model models.PlentyMappingModel
	err := db.WithContext(ctx).
		Where("entity_type = ? AND local_id = ?", string(entityType), localID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &model, true, nil
}

// ---------------------------------------------------------------------------
// MappingWriter implementation
// ---------------------------------------------------------------------------

// Register stores the entry unless the key is already mapped. An identical
// existing entry is accepted; a different one is a conflict.
func (r *GormMappingStore) Register(ctx context.Context, entry integration.MappingEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	existing, found, err := r.find(ctx, r.db, entry.EntityType, entry.LocalID)
	if err != nil {
		return err
	}
	if found {
		return sameOrConflict(existing, entry)
	}

	model := newMappingModel(entry)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		// lost a race against a concurrent writer
		existing, found, err := r.find(ctx, r.db, entry.EntityType, entry.LocalID)
		if err != nil {
			return err
		}
		if !found {
			return integration.ErrMappingConflict
		}
		return sameOrConflict(existing, entry)
	}
	return nil
}

// Replace stores the entry, overwriting the remote ID and path of an
// existing key
func (r *GormMappingStore) Replace(ctx context.Context, entry integration.MappingEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	model := newMappingModel(entry)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_type"}, {Name: "local_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"remote_id", "path", "updated_at"}),
		}).
		Create(model).Error
}

// Delete removes the entry; a missing entry is not an error
func (r *GormMappingStore) Delete(ctx context.Context, entityType integration.EntityType, localID string) error {
	return r.db.WithContext(ctx).
		Where("entity_type = ? AND local_id = ?", string(entityType), localID).
		Delete(&models.PlentyMappingModel{}).Error
}

func newMappingModel(entry integration.MappingEntry) *models.PlentyMappingModel {
	now := time.Now().UTC()
	model := &models.PlentyMappingModel{CreatedAt: now, UpdatedAt: now}
	model.FromDomain(entry)
	return model
}

func sameOrConflict(existing *models.PlentyMappingModel, entry integration.MappingEntry) error {
	if existing.ToDomain().Equal(entry) {
		return nil
	}
	return integration.ErrMappingConflict
}

// Ensure GormMappingStore implements integration.MappingStore
var _ integration.MappingStore = (*GormMappingStore)(nil)
