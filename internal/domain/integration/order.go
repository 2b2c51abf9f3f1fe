package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// ExportStatus
// ---------------------------------------------------------------------------

// ExportStatus is the status code persisted for an order export attempt
type ExportStatus int

const (
	ExportStatusErrorCustomer        ExportStatus = 1
	ExportStatusSuccess              ExportStatus = 2
	ExportStatusErrorMethodOfPayment ExportStatus = 4
	ExportStatusErrorSOAP            ExportStatus = 8
)

// IsValid returns true if the status is a known code
func (s ExportStatus) IsValid() bool {
	switch s {
	case ExportStatusErrorCustomer, ExportStatusSuccess, ExportStatusErrorMethodOfPayment, ExportStatusErrorSOAP:
		return true
	}
	return false
}

// IsError returns true for all failure codes
func (s ExportStatus) IsError() bool {
	return s.IsValid() && s != ExportStatusSuccess
}

func (s ExportStatus) String() string {
	switch s {
	case ExportStatusErrorCustomer:
		return "ERROR_CUSTOMER"
	case ExportStatusSuccess:
		return "SUCCESS"
	case ExportStatusErrorMethodOfPayment:
		return "ERROR_MOP"
	case ExportStatusErrorSOAP:
		return "ERROR_SOAP"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// ExportStatusRecord is the per-order retry bookkeeping. NumberOfTries and
// TimestampLastTry change on every attempt; the remote fields are only set
// by a successful attempt.
type ExportStatusRecord struct {
	OrderID           int64
	Status            ExportStatus
	TimestampLastTry  time.Time
	NumberOfTries     int
	TimestampSuccess  *time.Time
	RemoteOrderID     *int64
	RemoteOrderStatus *float64
}

// IsExported returns true when a remote order exists
func (r *ExportStatusRecord) IsExported() bool {
	return r != nil && r.Status == ExportStatusSuccess && r.RemoteOrderID != nil
}

// ---------------------------------------------------------------------------
// ExportableOrder
// ---------------------------------------------------------------------------

// LineMode is the shop's order line discriminator
type LineMode int

const (
	LineModeArticle   LineMode = 0
	LineModePremium   LineMode = 1
	LineModeVoucher   LineMode = 2
	LineModeRebate    LineMode = 3
	LineModeSurcharge LineMode = 4
)

// Address is a billing or shipping address of an order
type Address struct {
	ID          int64
	Company     string
	Salutation  string
	FirstName   string
	LastName    string
	Street      string
	HouseNumber string
	ZipCode     string
	City        string
	CountryISO  string
	Phone       string
}

// Customer is the shop customer who placed an order
type Customer struct {
	ID     int64
	Number string
	Email  string
	// Language is the two letter language of the shop the customer signed up in
	Language string
}

// DebitDetails holds direct debit bank data of an order
type DebitDetails struct {
	AccountHolder string
	BankName      string
	BankCode      string
	AccountNumber string
}

// OrderLine is one position of an order
type OrderLine struct {
	ID            int64
	ArticleNumber string
	ArticleName   string
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	TaxRate       decimal.Decimal
	Mode          LineMode
}

// IsVoucher returns true for voucher lines
func (l OrderLine) IsVoucher() bool {
	return l.Mode == LineModeVoucher
}

// ExportableOrder is a read-only snapshot of a shop order
type ExportableOrder struct {
	ID              int64
	Number          string
	Customer        Customer
	Billing         Address
	Shipping        *Address
	Currency        string
	PaymentMethodID int64
	DispatchID      int64
	ShopID          int64
	PartnerID       int64
	OrderTime       time.Time
	InvoiceAmount   decimal.Decimal
	InvoiceShipping decimal.Decimal
	InternalComment string
	CustomerComment string
	Comment         string
	PaymentStatusID int64
	Debit           *DebitDetails
	Lines           []OrderLine
}

// ExternalOrderID is the identifier the ERP stores for the shop order
func (o *ExportableOrder) ExternalOrderID() string {
	return fmt.Sprintf("Swag/%d/%s", o.ID, o.Number)
}

// HasBillingAddress returns false when the shop stored no billing address
func (o *ExportableOrder) HasBillingAddress() bool {
	return o.Billing.ID > 0
}

// HasAffiliate returns true when the order came in through a partner
func (o *ExportableOrder) HasAffiliate() bool {
	return o.PartnerID > 0
}

// DeliveryAddress returns the shipping address, or the billing address if
// the order has none.
func (o *ExportableOrder) DeliveryAddress() Address {
	if o.Shipping != nil {
		return *o.Shipping
	}
	return o.Billing
}

// ---------------------------------------------------------------------------
// Line item references
// ---------------------------------------------------------------------------

// LineItemRef is the resolved remote item of an order line. It is one of
// VariantRef, ItemRef, VoucherRef or UnmappedRef.
type LineItemRef interface {
	lineItemRef()
}

// VariantRef points to a specific remote variant
type VariantRef struct {
	SKU string
}

// ItemRef points to a remote base item without variant
type ItemRef struct {
	ItemID int64
}

// VoucherRef marks a voucher line
type VoucherRef struct{}

// UnmappedRef marks a line whose article has no remote counterpart
type UnmappedRef struct {
	Description string
}

func (VariantRef) lineItemRef()  {}
func (ItemRef) lineItemRef()     {}
func (VoucherRef) lineItemRef()  {}
func (UnmappedRef) lineItemRef() {}

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// ArticleDetail identifies the shop article behind an order number
type ArticleDetail struct {
	DetailID  int64
	ArticleID int64
	Kind      int
}

// OrderReader loads exportable orders
type OrderReader interface {
	// FindExportable returns ErrOrderNotFound when the order does not exist
	FindExportable(ctx context.Context, orderID int64) (*ExportableOrder, error)
}

// ArticleDetailReader looks up articles by their order number
type ArticleDetailReader interface {
	FindByNumber(ctx context.Context, number string) (detail *ArticleDetail, found bool, err error)
}

// ExportStatusRepository persists export status records. Both record
// methods increment NumberOfTries and set TimestampLastTry to at.
type ExportStatusRepository interface {
	RecordFailure(ctx context.Context, orderID int64, status ExportStatus, at time.Time) error
	RecordSuccess(ctx context.Context, orderID int64, remoteOrderID int64, remoteStatus float64, at time.Time) error
	// FindByOrderID returns ErrOrderNotFound when no attempt was recorded
	FindByOrderID(ctx context.Context, orderID int64) (*ExportStatusRecord, error)
}
