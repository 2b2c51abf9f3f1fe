package models

import (
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
)

// PlentyMappingModel is the persistence model for integration.MappingEntry
type PlentyMappingModel struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	EntityType string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_plenty_mapping_entity_local,priority:1"`
	LocalID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_plenty_mapping_entity_local,priority:2"`
	RemoteID   string    `gorm:"type:varchar(255);not null"`
	Path       string    `gorm:"type:text;not null;default:''"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PlentyMappingModel) TableName() string {
	return "plenty_mapping"
}

// ToDomain converts the persistence model to a domain MappingEntry
func (m *PlentyMappingModel) ToDomain() integration.MappingEntry {
	return integration.MappingEntry{
		EntityType: integration.EntityType(m.EntityType),
		LocalID:    m.LocalID,
		RemoteID:   m.RemoteID,
		Path:       integration.SplitPath(m.Path),
	}
}

// FromDomain populates the persistence model from a domain MappingEntry
func (m *PlentyMappingModel) FromDomain(e integration.MappingEntry) {
	m.EntityType = string(e.EntityType)
	m.LocalID = e.LocalID
	m.RemoteID = e.RemoteID
	m.Path = e.JoinedPath()
}

// PlentyOrderModel is the persistence model for integration.ExportStatusRecord
type PlentyOrderModel struct {
	OrderID           int64      `gorm:"primaryKey;autoIncrement:false"`
	Status            int        `gorm:"not null;index"`
	TimestampLastTry  time.Time  `gorm:"not null"`
	NumberOfTries     int        `gorm:"not null;default:0"`
	TimestampSuccess  *time.Time
	PlentyOrderID     *int64
	PlentyOrderStatus *float64
}

// TableName returns the table name for GORM
func (PlentyOrderModel) TableName() string {
	return "plenty_order"
}

// ToDomain converts the persistence model to a domain ExportStatusRecord
func (m *PlentyOrderModel) ToDomain() *integration.ExportStatusRecord {
	return &integration.ExportStatusRecord{
		OrderID:           m.OrderID,
		Status:            integration.ExportStatus(m.Status),
		TimestampLastTry:  m.TimestampLastTry,
		NumberOfTries:     m.NumberOfTries,
		TimestampSuccess:  m.TimestampSuccess,
		RemoteOrderID:     m.PlentyOrderID,
		RemoteOrderStatus: m.PlentyOrderStatus,
	}
}
