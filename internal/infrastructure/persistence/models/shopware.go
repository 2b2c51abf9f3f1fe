package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/shopspring/decimal"
)

// ShopOrderModel maps s_order
type ShopOrderModel struct {
	ID              int64           `gorm:"column:id;primaryKey"`
	Number          string          `gorm:"column:ordernumber"`
	UserID          int64           `gorm:"column:userID"`
	InvoiceAmount   decimal.Decimal `gorm:"column:invoice_amount;type:decimal(10,2)"`
	InvoiceShipping decimal.Decimal `gorm:"column:invoice_shipping;type:decimal(10,2)"`
	OrderTime       time.Time       `gorm:"column:ordertime"`
	PaymentStatusID int64           `gorm:"column:cleared"`
	PaymentID       int64           `gorm:"column:paymentID"`
	DispatchID      int64           `gorm:"column:dispatchID"`
	PartnerID       string          `gorm:"column:partnerID"`
	ShopID          int64           `gorm:"column:subshopID"`
	Comment         string          `gorm:"column:comment"`
	CustomerComment string          `gorm:"column:customercomment"`
	InternalComment string          `gorm:"column:internalcomment"`
	Currency        string          `gorm:"column:currency"`
}

// TableName returns the table name for GORM
func (ShopOrderModel) TableName() string {
	return "s_order"
}

// Partner returns the numeric partner ID; non-numeric partner codes count
// as no partner.
func (m *ShopOrderModel) Partner() int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(m.PartnerID), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// ShopOrderDetailModel maps s_order_details
type ShopOrderDetailModel struct {
	ID            int64           `gorm:"column:id;primaryKey"`
	OrderID       int64           `gorm:"column:orderID"`
	ArticleNumber string          `gorm:"column:articleordernumber"`
	Name          string          `gorm:"column:name"`
	Price         decimal.Decimal `gorm:"column:price;type:decimal(10,2)"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:decimal(10,3)"`
	TaxRate       decimal.Decimal `gorm:"column:tax_rate;type:decimal(5,2)"`
	Mode          int             `gorm:"column:modus"`
}

// TableName returns the table name for GORM
func (ShopOrderDetailModel) TableName() string {
	return "s_order_details"
}

// ToDomain converts the row to an order line
func (m *ShopOrderDetailModel) ToDomain() integration.OrderLine {
	return integration.OrderLine{
		ID:            m.ID,
		ArticleNumber: m.ArticleNumber,
		ArticleName:   m.Name,
		Quantity:      m.Quantity,
		Price:         m.Price,
		TaxRate:       m.TaxRate,
		Mode:          integration.LineMode(m.Mode),
	}
}

// ShopOrderAddressModel holds the columns shared by billing and shipping
// addresses of an order
type ShopOrderAddressModel struct {
	ID          int64  `gorm:"column:id;primaryKey"`
	OrderID     int64  `gorm:"column:orderID"`
	Company     string `gorm:"column:company"`
	Salutation  string `gorm:"column:salutation"`
	FirstName   string `gorm:"column:firstname"`
	LastName    string `gorm:"column:lastname"`
	Street      string `gorm:"column:street"`
	HouseNumber string `gorm:"column:streetnumber"`
	ZipCode     string `gorm:"column:zipcode"`
	City        string `gorm:"column:city"`
	CountryID   int64  `gorm:"column:countryID"`
}

// ToDomain converts the row to an address with the resolved country code
func (m *ShopOrderAddressModel) ToDomain(countryISO, phone string) integration.Address {
	return integration.Address{
		ID:          m.ID,
		Company:     m.Company,
		Salutation:  m.Salutation,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Street:      m.Street,
		HouseNumber: m.HouseNumber,
		ZipCode:     m.ZipCode,
		City:        m.City,
		CountryISO:  countryISO,
		Phone:       phone,
	}
}

// ShopBillingAddressModel maps s_order_billingaddress
type ShopBillingAddressModel struct {
	ShopOrderAddressModel
	CustomerNumber string `gorm:"column:customernumber"`
	Phone          string `gorm:"column:phone"`
}

// TableName returns the table name for GORM
func (ShopBillingAddressModel) TableName() string {
	return "s_order_billingaddress"
}

// ShopShippingAddressModel maps s_order_shippingaddress
type ShopShippingAddressModel struct {
	ShopOrderAddressModel
}

// TableName returns the table name for GORM
func (ShopShippingAddressModel) TableName() string {
	return "s_order_shippingaddress"
}

// ShopCountryModel maps s_core_countries
type ShopCountryModel struct {
	ID  int64  `gorm:"column:id;primaryKey"`
	ISO string `gorm:"column:countryiso"`
}

// TableName returns the table name for GORM
func (ShopCountryModel) TableName() string {
	return "s_core_countries"
}

// ShopUserModel maps s_user
type ShopUserModel struct {
	ID    int64  `gorm:"column:id;primaryKey"`
	Email string `gorm:"column:email"`
}

// TableName returns the table name for GORM
func (ShopUserModel) TableName() string {
	return "s_user"
}

// ShopUserDebitModel maps s_user_debit
type ShopUserDebitModel struct {
	ID            int64  `gorm:"column:id;primaryKey"`
	UserID        int64  `gorm:"column:userID"`
	AccountNumber string `gorm:"column:account"`
	BankCode      string `gorm:"column:bankcode"`
	BankName      string `gorm:"column:bankname"`
	AccountHolder string `gorm:"column:bankholder"`
}

// TableName returns the table name for GORM
func (ShopUserDebitModel) TableName() string {
	return "s_user_debit"
}

// ToDomain converts the row to debit details
func (m *ShopUserDebitModel) ToDomain() *integration.DebitDetails {
	return &integration.DebitDetails{
		AccountHolder: m.AccountHolder,
		BankName:      m.BankName,
		BankCode:      m.BankCode,
		AccountNumber: m.AccountNumber,
	}
}

// ArticleDetailModel maps s_articles_details
type ArticleDetailModel struct {
	ID        int64  `gorm:"column:id;primaryKey"`
	ArticleID int64  `gorm:"column:articleID"`
	Number    string `gorm:"column:ordernumber"`
	Kind      int    `gorm:"column:kind"`
}

// TableName returns the table name for GORM
func (ArticleDetailModel) TableName() string {
	return "s_articles_details"
}

// ToDomain converts the row to an article detail
func (m *ArticleDetailModel) ToDomain() *integration.ArticleDetail {
	return &integration.ArticleDetail{
		DetailID:  m.ID,
		ArticleID: m.ArticleID,
		Kind:      m.Kind,
	}
}

// OrderNumberModel maps s_order_number, the shop's number counters
type OrderNumberModel struct {
	ID     int64  `gorm:"column:id;primaryKey"`
	Number int64  `gorm:"column:number"`
	Name   string `gorm:"column:name"`
}

// TableName returns the table name for GORM
func (OrderNumberModel) TableName() string {
	return "s_order_number"
}

// ArticleNumberCounter is the s_order_number row of article numbers
const ArticleNumberCounter = "articleordernumber"
