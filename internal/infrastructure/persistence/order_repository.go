package persistence

import (
	"context"
	"errors"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderReader implements integration.OrderReader on the Shopware order tables
type GormOrderReader struct {
	db *gorm.DB
}

// NewGormOrderReader creates a new GormOrderReader
func NewGormOrderReader(db *gorm.DB) *GormOrderReader {
	return &GormOrderReader{db: db}
}

// FindExportable loads an order with its lines, addresses, customer and
// debit details
func (r *GormOrderReader) FindExportable(ctx context.Context, orderID int64) (*integration.ExportableOrder, error) {
	db := r.db.WithContext(ctx)

	var head models.ShopOrderModel
	if err := db.First(&head, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrOrderNotFound
		}
		return nil, err
	}

	var details []models.ShopOrderDetailModel
	if err := db.Where(map[string]any{"orderID": orderID}).Order("id ASC").Find(&details).Error; err != nil {
		return nil, err
	}

	// A missing billing row leaves the zero address, rejected by the customer export
	var billing models.ShopBillingAddressModel
	err := db.Where(map[string]any{"orderID": orderID}).First(&billing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var shipping *models.ShopShippingAddressModel
	var shippingRow models.ShopShippingAddressModel
	err = db.Where(map[string]any{"orderID": orderID}).First(&shippingRow).Error
	switch {
	case err == nil:
		shipping = &shippingRow
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	countries, err := r.countryCodes(db, billing.CountryID, shipping)
	if err != nil {
		return nil, err
	}

	order := &integration.ExportableOrder{
		ID:              head.ID,
		Number:          head.Number,
		Currency:        head.Currency,
		PaymentMethodID: head.PaymentID,
		DispatchID:      head.DispatchID,
		ShopID:          head.ShopID,
		PartnerID:       head.Partner(),
		OrderTime:       head.OrderTime,
		InvoiceAmount:   head.InvoiceAmount,
		InvoiceShipping: head.InvoiceShipping,
		InternalComment: head.InternalComment,
		CustomerComment: head.CustomerComment,
		Comment:         head.Comment,
		PaymentStatusID: head.PaymentStatusID,
		Billing:         billing.ToDomain(countries[billing.CountryID], billing.Phone),
		Lines:           make([]integration.OrderLine, 0, len(details)),
	}
	if shipping != nil {
		address := shipping.ToDomain(countries[shipping.CountryID], billing.Phone)
		order.Shipping = &address
	}
	for i := range details {
		order.Lines = append(order.Lines, details[i].ToDomain())
	}

	order.Customer, err = r.customer(db, head, billing.CustomerNumber)
	if err != nil {
		return nil, err
	}

	var debit models.ShopUserDebitModel
	err = db.Where(map[string]any{"userID": head.UserID}).First(&debit).Error
	switch {
	case err == nil:
		order.Debit = debit.ToDomain()
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	return order, nil
}

func (r *GormOrderReader) countryCodes(db *gorm.DB, billingCountryID int64, shipping *models.ShopShippingAddressModel) (map[int64]string, error) {
	ids := []int64{billingCountryID}
	if shipping != nil && shipping.CountryID != billingCountryID {
		ids = append(ids, shipping.CountryID)
	}

	var rows []models.ShopCountryModel
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	codes := make(map[int64]string, len(rows))
	for _, row := range rows {
		codes[row.ID] = row.ISO
	}
	return codes, nil
}

func (r *GormOrderReader) customer(db *gorm.DB, head models.ShopOrderModel, number string) (integration.Customer, error) {
	customer := integration.Customer{ID: head.UserID, Number: number}

	var user models.ShopUserModel
	err := db.First(&user, "id = ?", head.UserID).Error
	switch {
	case err == nil:
		customer.Email = user.Email
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return integration.Customer{}, err
	}

	var locale models.LocaleModel
	err = db.Model(&models.LocaleModel{}).
		Joins("JOIN s_core_shops ON s_core_shops.locale_id = s_core_locales.id").
		Where("s_core_shops.id = ?", head.ShopID).
		First(&locale).Error
	switch {
	case err == nil:
		customer.Language, _ = integration.LocaleLanguage(locale.Locale)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return integration.Customer{}, err
	}

	return customer, nil
}

// Ensure GormOrderReader implements integration.OrderReader
var _ integration.OrderReader = (*GormOrderReader)(nil)
