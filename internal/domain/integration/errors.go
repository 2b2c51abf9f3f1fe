package integration

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Integration Errors
// ---------------------------------------------------------------------------

var (
	// Mapping errors
	ErrNotMapped          = errors.New("integration: local entity is not mapped")
	ErrMappingConflict    = errors.New("integration: entity is already mapped to a different remote id")
	ErrInvalidMapping     = errors.New("integration: invalid mapping entry")
	ErrInvalidEntityType  = errors.New("integration: invalid entity type")
	ErrInvalidRemoteID    = errors.New("integration: invalid remote id")
	ErrInvalidShippingRef = errors.New("integration: invalid shipping profile mapping")

	// Export errors
	ErrOrderNotFound    = errors.New("integration: order not found")
	ErrExportInProgress = errors.New("integration: export already in progress")

	// Remote service errors
	ErrRemoteRejected        = errors.New("integration: remote service rejected the request")
	ErrRemoteUnavailable     = errors.New("integration: remote service unavailable")
	ErrRemoteInvalidResponse = errors.New("integration: invalid remote response")
)

// Error codes reported alongside export failures.
const (
	CodeCustomerExportFailed      = 4100
	CodeMethodOfPaymentNotMapped  = 4030
	CodeOrderRejected             = 4010
	CodeOrderResponseIncomplete   = 4020
	CodeOrderInvalid              = 4040
	CodeCatalogPageFailed         = 2920
	CodeCategoryNotConnected      = 2921
	CodeCategoryCreateFailed      = 2922
	CodeCategoryTranslationFailed = 2923
	CodeAttributeCreateFailed     = 2950
	CodeIncomingPaymentFailed     = 4200
)

// UnresolvedReferenceError reports a required cross-system mapping that
// does not exist.
type UnresolvedReferenceError struct {
	EntityType EntityType
	LocalID    string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("integration: no remote mapping for %s %q", e.EntityType, e.LocalID)
}

// Unwrap makes errors.Is(err, ErrNotMapped) hold.
func (e *UnresolvedReferenceError) Unwrap() error {
	return ErrNotMapped
}

// NewUnresolvedReferenceError returns the error for a missing mapping.
func NewUnresolvedReferenceError(entityType EntityType, localID string) *UnresolvedReferenceError {
	return &UnresolvedReferenceError{EntityType: entityType, LocalID: localID}
}

// RemoteOperationError reports a remote call that failed or returned an
// unusable result. Err is the transport error, if any.
type RemoteOperationError struct {
	Operation string
	Subject   string
	Code      int
	Err       error
}

func (e *RemoteOperationError) Error() string {
	msg := fmt.Sprintf("integration: %s failed for %s", e.Operation, e.Subject)
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteOperationError) Unwrap() error {
	if e.Err == nil {
		return ErrRemoteRejected
	}
	return e.Err
}

// ValidationError reports locally detected invalid input. Under a correct
// configuration it signals a defect.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("integration: invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// OrderExportError is returned for every failed order export after the
// failure status has been recorded.
type OrderExportError struct {
	OrderID     int64
	OrderNumber string
	Status      ExportStatus
	Code        int
	Err         error
}

func (e *OrderExportError) Error() string {
	msg := fmt.Sprintf("integration: order %q (id %d) could not be exported, status %s, code %d",
		e.OrderNumber, e.OrderID, e.Status, e.Code)
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *OrderExportError) Unwrap() error {
	return e.Err
}
