package integration

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/shopspring/decimal"
)

// ResolvedReferences are the remote identifiers an order refers to. Lines
// is parallel to the order lines.
type ResolvedReferences struct {
	CustomerID        int64
	DeliveryAddressID int64
	MethodOfPaymentID *int64
	ShippingProfile   *integration.ShippingProfile
	StoreID           *int64
	ReferrerID        int64
	Currency          string
	Lines             []integration.LineItemRef
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// TranslateOrder builds the AddOrders payload of an order
func TranslateOrder(order *integration.ExportableOrder, refs ResolvedReferences, settings ExportSettings) (integration.RemoteOrder, error) {
	customerKey := integration.FormatID(order.Customer.ID)
	if refs.CustomerID <= 0 {
		return integration.RemoteOrder{}, integration.NewUnresolvedReferenceError(integration.EntityCustomer, customerKey)
	}
	if refs.DeliveryAddressID <= 0 {
		return integration.RemoteOrder{}, integration.NewUnresolvedReferenceError(integration.EntityDeliveryAddress, customerKey)
	}
	if refs.MethodOfPaymentID == nil {
		return integration.RemoteOrder{}, integration.NewUnresolvedReferenceError(integration.EntityMethodOfPayment, integration.FormatID(order.PaymentMethodID))
	}
	if len(refs.Lines) != len(order.Lines) {
		return integration.RemoteOrder{}, &integration.ValidationError{
			Field:  "line references",
			Value:  fmt.Sprintf("%d", len(refs.Lines)),
			Reason: fmt.Sprintf("order has %d lines", len(order.Lines)),
		}
	}

	referrerID := refs.ReferrerID
	head := integration.RemoteOrderHead{
		Currency:          refs.Currency,
		CustomerID:        refs.CustomerID,
		DeliveryAddressID: refs.DeliveryAddressID,
		ExternalOrderID:   order.ExternalOrderID(),
		IsNetto:           false,
		Marking1ID:        settings.OrderMarkingID,
		MethodOfPaymentID: *refs.MethodOfPaymentID,
		OrderTimestamp:    order.OrderTime.Unix(),
		OrderType:         integration.RemoteOrderType,
		ReferrerID:        &referrerID,
		ResponsibleID:     settings.ResponsibleUserID,
		StoreID:           refs.StoreID,
	}
	if !order.InvoiceShipping.IsNegative() {
		shipping := order.InvoiceShipping
		head.ShippingCosts = &shipping
	}
	if refs.ShippingProfile != nil {
		profileID := refs.ShippingProfile.PresetID
		methodID := refs.ShippingProfile.ServiceID
		head.ShippingProfileID = &profileID
		head.ShippingMethodID = &methodID
	}

	items := make([]integration.RemoteOrderItem, 0, len(order.Lines))
	for i, line := range order.Lines {
		items = append(items, TranslateOrderLine(line, refs.Lines[i], referrerID, settings.ItemTextSync))
	}

	return integration.RemoteOrder{
		Head:  head,
		Infos: BuildOrderInfos(order, head.MethodOfPaymentID, settings.DebitMethodOfPaymentID),
		Items: items,
	}, nil
}

// BuildOrderInfos collects the notes attached to a remote order. Bank data
// is only added for debit orders, and empty texts are left out.
func BuildOrderInfos(order *integration.ExportableOrder, methodOfPaymentID, debitMethodID int64) []integration.RemoteOrderInfo {
	infoDate := order.OrderTime.Unix()
	var infos []integration.RemoteOrderInfo

	add := func(text string, visible bool) {
		if text == "" {
			return
		}
		infos = append(infos, integration.RemoteOrderInfo{Info: text, CustomerVisible: visible, InfoDate: infoDate})
	}

	if order.Debit != nil && order.Debit.AccountHolder != "" && methodOfPaymentID == debitMethodID {
		add(fmt.Sprintf("Account holder: %s\nBank name: %s\nBank code: %s\nAccount number: %s\n",
			order.Debit.AccountHolder, order.Debit.BankName, order.Debit.BankCode, order.Debit.AccountNumber), false)
	}
	add(order.InternalComment, false)
	add(order.CustomerComment, true)
	add(order.Comment, true)

	return infos
}

// TranslateOrderLine builds one remote order line. The item text is sent
// when text sync is on and always for lines without a remote item.
// Voucher lines become VoucherRef whatever ref is.
func TranslateOrderLine(line integration.OrderLine, ref integration.LineItemRef, referrerID int64, textSync bool) integration.RemoteOrderItem {
	item := integration.RemoteOrderItem{
		ExternalOrderItemID: line.ArticleNumber,
		Item:                ref,
		ReferrerID:          &referrerID,
		Price:               line.Price,
		Quantity:            line.Quantity,
		VAT:                 line.TaxRate,
	}

	switch r := ref.(type) {
	case integration.VariantRef:
		item.SKU = r.SKU
	case integration.UnmappedRef:
		item.ItemText = line.ArticleName
	}
	if textSync {
		item.ItemText = line.ArticleName
	}

	if line.IsVoucher() {
		item.Item = integration.VoucherRef{}
		item.SKU = ""
	}
	return item
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

// TranslateCategory builds the AddCategory request of a category on level
func TranslateCategory(node integration.CategoryNode, level int, language string) integration.RemoteCategoryRequest {
	return integration.RemoteCategoryRequest{
		Lang:            language,
		Level:           level,
		MetaDescription: node.MetaDescription,
		MetaKeywords:    node.MetaKeywords,
		MetaTitle:       node.MetaTitle,
		Name:            node.Name,
		Text:            node.Text,
		Position:        node.Position,
	}
}

// TranslateCategoryTranslation builds the translation request of an
// exported category
func TranslateCategoryTranslation(node integration.CategoryNode, remoteID int64, language string) integration.RemoteCategoryTranslation {
	return integration.RemoteCategoryTranslation{
		CategoryID:      remoteID,
		Level:           node.Level(),
		Lang:            language,
		MetaDescription: node.MetaDescription,
		MetaKeywords:    node.MetaKeywords,
		MetaTitle:       node.MetaTitle,
		Name:            node.Name,
		Text:            node.Text,
	}
}

// ---------------------------------------------------------------------------
// Item attributes
// ---------------------------------------------------------------------------

// TranslateItemAttribute builds the AddItemAttribute request of a
// configurator group. Values keep the option order by position, then ID.
func TranslateItemAttribute(group integration.ConfiguratorGroup, language string) integration.ItemAttribute {
	options := SortedOptions(group)
	values := make([]integration.ItemAttributeValue, 0, len(options))
	for _, option := range options {
		values = append(values, integration.ItemAttributeValue{
			BackendName:  option.Name,
			FrontendName: option.Name,
			Position:     option.Position,
		})
	}

	return integration.ItemAttribute{
		BackendName:  group.Name,
		FrontendName: group.Name,
		FrontendLang: language,
		Position:     group.Position,
		Values:       values,
	}
}

func compareOptions(a, b integration.ConfiguratorOption) int {
	if c := cmp.Compare(a.Position, b.Position); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortedOptions returns the options of group in request order
func SortedOptions(group integration.ConfiguratorGroup) []integration.ConfiguratorOption {
	options := slices.Clone(group.Options)
	slices.SortStableFunc(options, compareOptions)
	return options
}

// ---------------------------------------------------------------------------
// Customers and payments
// ---------------------------------------------------------------------------

// TranslateCustomer builds the AddCustomer request from the billing address
func TranslateCustomer(order *integration.ExportableOrder) integration.RemoteCustomer {
	billing := order.Billing
	return integration.RemoteCustomer{
		ExternalCustomerID: fmt.Sprintf("Swag/%d", order.Customer.ID),
		CustomerNumber:     order.Customer.Number,
		Company:            billing.Company,
		FormOfAddress:      billing.Salutation,
		FirstName:          billing.FirstName,
		Surname:            billing.LastName,
		Street:             billing.Street,
		HouseNumber:        billing.HouseNumber,
		ZIP:                billing.ZipCode,
		City:               billing.City,
		CountryISO:         billing.CountryISO,
		Telephone:          billing.Phone,
		Email:              order.Customer.Email,
		Language:           order.Customer.Language,
	}
}

// TranslateDeliveryAddress builds the AddDeliveryAddress request for the
// order's delivery address
func TranslateDeliveryAddress(order *integration.ExportableOrder, remoteCustomerID int64) integration.RemoteDeliveryAddress {
	address := order.DeliveryAddress()
	return integration.RemoteDeliveryAddress{
		CustomerID:                remoteCustomerID,
		ExternalDeliveryAddressID: "Swag/" + DeliveryAddressKey(order),
		Company:                   address.Company,
		FirstName:                 address.FirstName,
		Surname:                   address.LastName,
		Street:                    address.Street,
		HouseNumber:               address.HouseNumber,
		ZIP:                       address.ZipCode,
		City:                      address.City,
		CountryISO:                address.CountryISO,
	}
}

// DeliveryAddressKey is the mapping key of the order's delivery address.
// Billing and shipping addresses live in different tables, so the key is
// prefixed with the kind.
func DeliveryAddressKey(order *integration.ExportableOrder) string {
	if order.Shipping != nil {
		return "shipping/" + integration.FormatID(order.Shipping.ID)
	}
	return "billing/" + integration.FormatID(order.Billing.ID)
}

// TranslateIncomingPayment books the invoice amount of order against the
// remote order
func TranslateIncomingPayment(order *integration.ExportableOrder, remoteOrderID, methodOfPaymentID int64, at time.Time) integration.IncomingPayment {
	amount := order.InvoiceAmount
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return integration.IncomingPayment{
		OrderID:           remoteOrderID,
		MethodOfPaymentID: methodOfPaymentID,
		Amount:            amount,
		Currency:          order.Currency,
		ReasonForPayment:  order.Number,
		TransactionTime:   at.Unix(),
	}
}
