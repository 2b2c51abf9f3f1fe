package integration

import (
	"context"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Remote results
// ---------------------------------------------------------------------------

// KeyValue is one entry of a remote result message list
type KeyValue struct {
	Key   string
	Value string
}

// RemoteResult is the outcome of a remote write call. Success false means
// the ERP rejected the request; transport failures are returned as errors
// by the client instead.
type RemoteResult struct {
	Success         bool
	SuccessMessages []KeyValue
	ErrorMessages   []KeyValue
}

// Value returns the last success message with the given key
func (r RemoteResult) Value(key string) (string, bool) {
	for i := len(r.SuccessMessages) - 1; i >= 0; i-- {
		if r.SuccessMessages[i].Key == key {
			return r.SuccessMessages[i].Value, true
		}
	}
	return "", false
}

// Values returns every success message value with the given key, in order
func (r RemoteResult) Values(key string) []string {
	var values []string
	for _, kv := range r.SuccessMessages {
		if kv.Key == key {
			values = append(values, kv.Value)
		}
	}
	return values
}

// FirstValue returns the value of the first success message
func (r RemoteResult) FirstValue() (string, bool) {
	if len(r.SuccessMessages) == 0 {
		return "", false
	}
	return r.SuccessMessages[0].Value, true
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// RemoteOrderType is the only order type the connector creates
const RemoteOrderType = "order"

// RemoteOrderHead is the header of a remote order. Nil pointers are sent
// as unset values.
type RemoteOrderHead struct {
	Currency          string
	CustomerID        int64
	DeliveryAddressID int64
	DoneTimestamp     *int64
	ExchangeRatio     *float64
	ExternalOrderID   string
	IsNetto           bool
	Marking1ID        *int64
	MethodOfPaymentID int64
	OrderTimestamp    int64
	OrderType         string
	ReferrerID        *int64
	ResponsibleID     *int64
	ShippingCosts     *decimal.Decimal
	ShippingMethodID  *int64
	ShippingProfileID *int64
	StoreID           *int64
}

// RemoteOrderInfo is a note attached to a remote order
type RemoteOrderInfo struct {
	Info            string
	CustomerVisible bool
	InfoDate        int64
}

// RemoteOrderItem is one line of a remote order
type RemoteOrderItem struct {
	ExternalOrderItemID string
	Item                LineItemRef
	ReferrerID          *int64
	ItemText            string
	Price               decimal.Decimal
	Quantity            decimal.Decimal
	SKU                 string
	VAT                 decimal.Decimal
	WarehouseID         *int64
}

// RemoteOrder is the complete AddOrders payload for one order
type RemoteOrder struct {
	Head  RemoteOrderHead
	Infos []RemoteOrderInfo
	Items []RemoteOrderItem
}

// Keys of the AddOrders success messages
const (
	ResultKeyOrderID     = "OrderID"
	ResultKeyOrderStatus = "Status"
)

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

// CatalogPageRequest requests one page of the remote category catalog.
// A nil Level lists all levels.
type CatalogPageRequest struct {
	Lang  string
	Level *int
	Page  int
}

// CatalogPage is one page of the remote category catalog
type CatalogPage struct {
	Success    bool
	Categories []RemoteCategory
	Pages      int
}

// RemoteCategoryRequest creates a remote category in the primary language
type RemoteCategoryRequest struct {
	Lang            string
	Level           int
	MetaDescription string
	MetaKeywords    string
	MetaTitle       string
	Name            string
	Text            string
	Position        int
}

// RemoteCategoryTranslation adds a language to an existing remote category
type RemoteCategoryTranslation struct {
	CategoryID      int64
	Level           int
	Lang            string
	MetaDescription string
	MetaKeywords    string
	MetaTitle       string
	Name            string
	Text            string
}

// ---------------------------------------------------------------------------
// Customers and payments
// ---------------------------------------------------------------------------

// RemoteCustomer creates a remote customer from the billing address
type RemoteCustomer struct {
	ExternalCustomerID string
	CustomerNumber     string
	Company            string
	FormOfAddress      string
	FirstName          string
	Surname            string
	Street             string
	HouseNumber        string
	ZIP                string
	City               string
	CountryISO         string
	Telephone          string
	Email              string
	Language           string
}

// RemoteDeliveryAddress creates a delivery address of a remote customer
type RemoteDeliveryAddress struct {
	CustomerID                int64
	ExternalDeliveryAddressID string
	Company                   string
	FirstName                 string
	Surname                   string
	Street                    string
	HouseNumber               string
	ZIP                       string
	City                      string
	CountryISO                string
}

// Keys of customer related success messages
const (
	ResultKeyCustomerID        = "CustomerID"
	ResultKeyDeliveryAddressID = "DeliveryAddressID"
)

// IncomingPayment books a payment against a remote order
type IncomingPayment struct {
	OrderID           int64
	MethodOfPaymentID int64
	Amount            decimal.Decimal
	Currency          string
	ReasonForPayment  string
	TransactionTime   int64
}

// ---------------------------------------------------------------------------
// Item attributes
// ---------------------------------------------------------------------------

// ItemAttributeValue is one value of a remote item attribute
type ItemAttributeValue struct {
	BackendName  string
	FrontendName string
	Position     int
}

// ItemAttribute creates a remote item attribute with its values
type ItemAttribute struct {
	BackendName  string
	FrontendName string
	FrontendLang string
	Position     int
	Values       []ItemAttributeValue
}

// Keys of the AddItemAttribute success messages. Value IDs are returned in
// the order the values were sent.
const (
	ResultKeyAttributeID      = "AttributeID"
	ResultKeyAttributeValueID = "AttributeValueID"
)

// ---------------------------------------------------------------------------
// ERP client ports
// ---------------------------------------------------------------------------

// OrderClient creates remote orders
type OrderClient interface {
	AddOrder(ctx context.Context, order RemoteOrder) (RemoteResult, error)
}

// CategoryClient reads and writes the remote category catalog
type CategoryClient interface {
	GetCategoryCatalogPage(ctx context.Context, req CatalogPageRequest) (CatalogPage, error)
	AddCategory(ctx context.Context, req RemoteCategoryRequest) (RemoteResult, error)
	AddCategoryTranslation(ctx context.Context, req RemoteCategoryTranslation) (RemoteResult, error)
}

// CustomerClient creates remote customers and delivery addresses
type CustomerClient interface {
	AddCustomer(ctx context.Context, customer RemoteCustomer) (RemoteResult, error)
	AddDeliveryAddress(ctx context.Context, address RemoteDeliveryAddress) (RemoteResult, error)
}

// PaymentClient books incoming payments
type PaymentClient interface {
	AddIncomingPayment(ctx context.Context, payment IncomingPayment) (RemoteResult, error)
}

// AttributeClient creates remote item attributes
type AttributeClient interface {
	AddItemAttribute(ctx context.Context, attribute ItemAttribute) (RemoteResult, error)
}

// ERPClient is the full plentymarkets SOAP service as used by the connector
type ERPClient interface {
	OrderClient
	CategoryClient
	CustomerClient
	PaymentClient
	AttributeClient
}
