package integration

import (
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Run results
// ---------------------------------------------------------------------------

// SkippedCategory is a shop category left out of a reconciliation run
type SkippedCategory struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Code       int    `json:"code"`
	Reason     string `json:"reason"`
}

// CategoryRunResult summarizes a category reconciliation run
type CategoryRunResult struct {
	RunID         string            `json:"run_id"`
	IndexedRemote int               `json:"indexed_remote"`
	Created       int               `json:"created"`
	Reused        int               `json:"reused"`
	Translated    int               `json:"translated"`
	PathsRebuilt  int               `json:"paths_rebuilt"`
	Skipped       []SkippedCategory `json:"skipped,omitempty"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
}

// AttributeRunResult summarizes an item attribute export run
type AttributeRunResult struct {
	RunID   string `json:"run_id"`
	Created int    `json:"created"`
	Reused  int    `json:"reused"`
}

// OrderExportResult is returned by a successful order export
type OrderExportResult struct {
	OrderID           int64                    `json:"order_id"`
	OrderNumber       string                   `json:"order_number"`
	Status            integration.ExportStatus `json:"status"`
	RemoteOrderID     int64                    `json:"remote_order_id"`
	RemoteOrderStatus float64                  `json:"remote_order_status"`
	PaymentBooked     bool                     `json:"payment_booked"`
}

// CustomerRefs are the remote customer and delivery address of an order
type CustomerRefs struct {
	CustomerID        int64
	DeliveryAddressID int64
}
