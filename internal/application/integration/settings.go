package integration

import (
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
)

// Export defaults
const (
	DefaultPaidStatusID           int64 = 12
	DefaultDebitMethodOfPaymentID int64 = 3
	DefaultPrimaryLanguage              = "de"
)

// ExportSettings holds the configured defaults applied to remote payloads.
// Optional IDs are nil when not configured.
type ExportSettings struct {
	OrderMarkingID         *int64
	ResponsibleUserID      *int64
	DefaultReferrerID      int64
	PaidStatusID           int64
	DebitMethodOfPaymentID int64
	ItemTextSync           bool
	PrimaryLanguage        string
	ItemNumberPrefix       string
}

// DefaultExportSettings returns the settings used when nothing is configured
func DefaultExportSettings() ExportSettings {
	return ExportSettings{
		PaidStatusID:           DefaultPaidStatusID,
		DebitMethodOfPaymentID: DefaultDebitMethodOfPaymentID,
		PrimaryLanguage:        DefaultPrimaryLanguage,
	}
}

// OptionalID turns a configured ID into an optional one. Zero and negative
// values mean "not configured".
func OptionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

// Validate checks the settings
func (s ExportSettings) Validate() error {
	if s.PaidStatusID <= 0 {
		return &integration.ValidationError{Field: "paid status", Value: integration.FormatID(s.PaidStatusID), Reason: "must be positive"}
	}
	if s.DebitMethodOfPaymentID <= 0 {
		return &integration.ValidationError{Field: "debit method of payment", Value: integration.FormatID(s.DebitMethodOfPaymentID), Reason: "must be positive"}
	}
	if s.DefaultReferrerID < 0 {
		return &integration.ValidationError{Field: "default referrer", Value: integration.FormatID(s.DefaultReferrerID), Reason: "must not be negative"}
	}
	if len(s.PrimaryLanguage) != 2 {
		return &integration.ValidationError{Field: "primary language", Value: s.PrimaryLanguage, Reason: "must be a two letter code"}
	}
	return nil
}
