package erp

import (
	"encoding/xml"
	"strings"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
)

const (
	envelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	serviceNS  = "urn:plenty"
)

// ---------------------------------------------------------------------------
// Envelope
// ---------------------------------------------------------------------------

type requestEnvelope struct {
	XMLName   xml.Name      `xml:"soapenv:Envelope"`
	EnvelopNS string        `xml:"xmlns:soapenv,attr"`
	ServiceNS string        `xml:"xmlns:ns,attr"`
	Header    requestHeader `xml:"soapenv:Header"`
	Body      requestBody   `xml:"soapenv:Body"`
}

type requestHeader struct {
	Token verifyingToken `xml:"ns:verifyingToken"`
}

type verifyingToken struct {
	UserID string `xml:"UserID"`
	Token  string `xml:"Token"`
}

type requestBody struct {
	Content any
}

type responseEnvelope struct {
	Body struct {
		Fault  *soapFault `xml:"Fault"`
		Result struct {
			XMLName  xml.Name
			Response *soapResponse `xml:"Response"`
		} `xml:",any"`
	} `xml:"Body"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

// soapResponse carries the fields of every response the connector reads.
// Unused fields stay zero.
type soapResponse struct {
	Success          bool              `xml:"Success"`
	ResponseMessages []responseMessage `xml:"ResponseMessages>item"`
	Pages            int               `xml:"Pages"`
	Categories       []catalogItem     `xml:"Categories>item"`
}

type responseMessage struct {
	Code                string     `xml:"Code"`
	IdentificationValue string     `xml:"IdentificationValue"`
	SuccessMessages     []keyValue `xml:"SuccessMessages>item"`
	ErrorMessages       []keyValue `xml:"ErrorMessages>item"`
}

type keyValue struct {
	Key   string `xml:"Key"`
	Value string `xml:"Value"`
}

type catalogItem struct {
	CategoryID int64  `xml:"CategoryID"`
	Level      int    `xml:"Level"`
	Name       string `xml:"Name"`
}

// result flattens the response messages into a RemoteResult
func (r *soapResponse) result() integration.RemoteResult {
	res := integration.RemoteResult{Success: r.Success}
	for _, msg := range r.ResponseMessages {
		for _, kv := range msg.SuccessMessages {
			res.SuccessMessages = append(res.SuccessMessages, integration.KeyValue{
				Key: strings.TrimSpace(kv.Key), Value: strings.TrimSpace(kv.Value),
			})
		}
		for _, kv := range msg.ErrorMessages {
			res.ErrorMessages = append(res.ErrorMessages, integration.KeyValue{
				Key: strings.TrimSpace(kv.Key), Value: strings.TrimSpace(kv.Value),
			})
		}
	}
	return res
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

type addOrdersRequest struct {
	XMLName xml.Name    `xml:"ns:AddOrders"`
	Orders  []soapOrder `xml:"oPlentySoapRequest_AddOrders>Orders>item"`
}

type soapOrder struct {
	OrderHead  soapOrderHead   `xml:"OrderHead"`
	OrderInfos []soapOrderInfo `xml:"OrderInfos>item,omitempty"`
	OrderItems []soapOrderItem `xml:"OrderItems>item"`
}

type soapOrderHead struct {
	Currency          string
	CustomerID        int64
	DeliveryAddressID int64    `xml:"DeliveryAddressID,omitempty"`
	DoneTimestamp     *int64   `xml:"DoneTimestamp,omitempty"`
	ExchangeRatio     *float64 `xml:"ExchangeRatio,omitempty"`
	ExternalOrderID   string
	IsNetto           bool
	Marking1ID        *int64 `xml:"Marking1ID,omitempty"`
	MethodOfPaymentID int64
	OrderTimestamp    int64
	OrderType         string
	ReferrerID        *int64  `xml:"ReferrerID,omitempty"`
	ResponsibleID     *int64  `xml:"ResponsibleID,omitempty"`
	ShippingCosts     *string `xml:"ShippingCosts,omitempty"`
	ShippingMethodID  *int64  `xml:"ShippingMethodID,omitempty"`
	ShippingProfileID *int64  `xml:"ShippingProfileID,omitempty"`
	StoreID           *int64  `xml:"StoreID,omitempty"`
}

type soapOrderInfo struct {
	Info         string
	InfoCustomer int
	InfoDate     int64
}

type soapOrderItem struct {
	ExternalOrderItemID string
	ItemID              *int64 `xml:"ItemID,omitempty"`
	ReferrerID          *int64 `xml:"ReferrerID,omitempty"`
	ItemText            string `xml:"ItemText,omitempty"`
	Price               string
	Quantity            string
	SKU                 string `xml:"SKU,omitempty"`
	VAT                 string
	WarehouseID         *int64 `xml:"WarehouseID,omitempty"`
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

type getCatalogRequest struct {
	XMLName xml.Name `xml:"ns:GetItemCategoryCatalogBase"`
	Lang    string   `xml:"oPlentySoapRequest_GetItemCategoryCatalogBase>Lang"`
	Level   *int     `xml:"oPlentySoapRequest_GetItemCategoryCatalogBase>Level,omitempty"`
	Page    int      `xml:"oPlentySoapRequest_GetItemCategoryCatalogBase>Page"`
}

type addCategoryRequest struct {
	XMLName    xml.Name       `xml:"ns:AddItemCategory"`
	Categories []soapCategory `xml:"oPlentySoapRequest_AddItemCategory>Categories>item"`
}

type soapCategory struct {
	CategoryID      int64 `xml:"CategoryID,omitempty"`
	Lang            string
	Level           int
	MetaDescription string
	MetaKeywords    string
	MetaTitle       string
	Name            string
	Text            string
	Position        int `xml:"Position,omitempty"`
}

type addCategoryTranslationRequest struct {
	XMLName    xml.Name       `xml:"ns:AddItemCategoryTranslation"`
	Categories []soapCategory `xml:"oPlentySoapRequest_AddItemCategoryTranslation>Categories>item"`
}

// ---------------------------------------------------------------------------
// Customers and payments
// ---------------------------------------------------------------------------

type addCustomersRequest struct {
	XMLName   xml.Name       `xml:"ns:AddCustomers"`
	Customers []soapCustomer `xml:"oPlentySoapRequest_AddCustomers>Customers>item"`
}

type soapCustomer struct {
	ExternalCustomerID string
	CustomerNumber     string `xml:"CustomerNumber,omitempty"`
	Company            string `xml:"Company,omitempty"`
	FormOfAddress      string `xml:"FormOfAddress,omitempty"`
	FirstName          string
	Surname            string
	Street             string
	HouseNo            string
	ZIP                string
	City               string
	CountryISO2        string
	Telephone          string `xml:"Telephone,omitempty"`
	Email              string `xml:"Email,omitempty"`
	Language           string `xml:"Language,omitempty"`
}

type addDeliveryAddressesRequest struct {
	XMLName   xml.Name              `xml:"ns:AddCustomerDeliveryAddresses"`
	Addresses []soapDeliveryAddress `xml:"oPlentySoapRequest_AddCustomerDeliveryAddresses>DeliveryAddresses>item"`
}

type soapDeliveryAddress struct {
	CustomerID                int64
	ExternalDeliveryAddressID string
	Company                   string `xml:"Company,omitempty"`
	FirstName                 string
	Surname                   string
	Street                    string
	HouseNumber               string
	ZIP                       string
	City                      string
	CountryISO2               string
}

type addIncomingPaymentsRequest struct {
	XMLName  xml.Name              `xml:"ns:AddIncomingPayments"`
	Payments []soapIncomingPayment `xml:"oPlentySoapRequest_AddIncomingPayments>IncomingPayments>item"`
}

type soapIncomingPayment struct {
	OrderID           int64
	MethodOfPaymentID int64
	Amount            string
	Currency          string
	ReasonForPayment  string
	TransactionTime   int64
}

// ---------------------------------------------------------------------------
// Item attributes
// ---------------------------------------------------------------------------

type addItemAttributeRequest struct {
	XMLName    xml.Name            `xml:"ns:AddItemAttribute"`
	Attributes []soapItemAttribute `xml:"oPlentySoapRequest_AddItemAttribute>Attributes>item"`
}

type soapItemAttribute struct {
	BackendName  string
	FrontendLang string
	FrontendName string
	Position     int
	Values       []soapItemAttributeValue `xml:"Values>item"`
}

type soapItemAttributeValue struct {
	BackendName  string
	FrontendName string
	Position     int
}
