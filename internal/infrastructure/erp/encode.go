package erp

import (
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
)

// Item IDs the ERP reserves for order lines without a real item
const (
	voucherItemID  int64 = -1
	unmappedItemID int64 = -2
)

func encodeOrder(order integration.RemoteOrder) soapOrder {
	h := order.Head
	head := soapOrderHead{
		Currency:          h.Currency,
		CustomerID:        h.CustomerID,
		DeliveryAddressID: h.DeliveryAddressID,
		DoneTimestamp:     h.DoneTimestamp,
		ExchangeRatio:     h.ExchangeRatio,
		ExternalOrderID:   h.ExternalOrderID,
		IsNetto:           h.IsNetto,
		Marking1ID:        h.Marking1ID,
		MethodOfPaymentID: h.MethodOfPaymentID,
		OrderTimestamp:    h.OrderTimestamp,
		OrderType:         h.OrderType,
		ReferrerID:        h.ReferrerID,
		ResponsibleID:     h.ResponsibleID,
		ShippingMethodID:  h.ShippingMethodID,
		ShippingProfileID: h.ShippingProfileID,
		StoreID:           h.StoreID,
	}
	if h.ShippingCosts != nil {
		costs := h.ShippingCosts.StringFixed(2)
		head.ShippingCosts = &costs
	}

	out := soapOrder{OrderHead: head}
	for _, info := range order.Infos {
		visible := 0
		if info.CustomerVisible {
			visible = 1
		}
		out.OrderInfos = append(out.OrderInfos, soapOrderInfo{
			Info:         info.Info,
			InfoCustomer: visible,
			InfoDate:     info.InfoDate,
		})
	}
	for _, item := range order.Items {
		out.OrderItems = append(out.OrderItems, encodeOrderItem(item))
	}
	return out
}

func encodeOrderItem(item integration.RemoteOrderItem) soapOrderItem {
	out := soapOrderItem{
		ExternalOrderItemID: item.ExternalOrderItemID,
		ReferrerID:          item.ReferrerID,
		ItemText:            item.ItemText,
		Price:               item.Price.StringFixed(2),
		Quantity:            item.Quantity.String(),
		SKU:                 item.SKU,
		VAT:                 item.VAT.StringFixed(2),
		WarehouseID:         item.WarehouseID,
	}
	out.ItemID = encodeItemRef(item.Item)
	return out
}

// encodeItemRef returns the ItemID sent for a line; variants are
// identified by SKU alone
func encodeItemRef(ref integration.LineItemRef) *int64 {
	var id int64
	switch r := ref.(type) {
	case integration.VariantRef:
		return nil
	case integration.ItemRef:
		id = r.ItemID
	case integration.VoucherRef:
		id = voucherItemID
	case integration.UnmappedRef:
		id = unmappedItemID
	default:
		id = unmappedItemID
	}
	return &id
}

func encodeCategory(req integration.RemoteCategoryRequest) soapCategory {
	return soapCategory{
		Lang:            req.Lang,
		Level:           req.Level,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
		MetaTitle:       req.MetaTitle,
		Name:            req.Name,
		Text:            req.Text,
		Position:        req.Position,
	}
}

func encodeCategoryTranslation(req integration.RemoteCategoryTranslation) soapCategory {
	return soapCategory{
		CategoryID:      req.CategoryID,
		Lang:            req.Lang,
		Level:           req.Level,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
		MetaTitle:       req.MetaTitle,
		Name:            req.Name,
		Text:            req.Text,
	}
}

func encodeCustomer(c integration.RemoteCustomer) soapCustomer {
	return soapCustomer{
		ExternalCustomerID: c.ExternalCustomerID,
		CustomerNumber:     c.CustomerNumber,
		Company:            c.Company,
		FormOfAddress:      c.FormOfAddress,
		FirstName:          c.FirstName,
		Surname:            c.Surname,
		Street:             c.Street,
		HouseNo:            c.HouseNumber,
		ZIP:                c.ZIP,
		City:               c.City,
		CountryISO2:        c.CountryISO,
		Telephone:          c.Telephone,
		Email:              c.Email,
		Language:           c.Language,
	}
}

func encodeDeliveryAddress(a integration.RemoteDeliveryAddress) soapDeliveryAddress {
	return soapDeliveryAddress{
		CustomerID:                a.CustomerID,
		ExternalDeliveryAddressID: a.ExternalDeliveryAddressID,
		Company:                   a.Company,
		FirstName:                 a.FirstName,
		Surname:                   a.Surname,
		Street:                    a.Street,
		HouseNumber:               a.HouseNumber,
		ZIP:                       a.ZIP,
		City:                      a.City,
		CountryISO2:               a.CountryISO,
	}
}

func encodeIncomingPayment(p integration.IncomingPayment) soapIncomingPayment {
	return soapIncomingPayment{
		OrderID:           p.OrderID,
		MethodOfPaymentID: p.MethodOfPaymentID,
		Amount:            p.Amount.StringFixed(2),
		Currency:          p.Currency,
		ReasonForPayment:  p.ReasonForPayment,
		TransactionTime:   p.TransactionTime,
	}
}

func encodeItemAttribute(a integration.ItemAttribute) soapItemAttribute {
	out := soapItemAttribute{
		BackendName:  a.BackendName,
		FrontendLang: a.FrontendLang,
		FrontendName: a.FrontendName,
		Position:     a.Position,
	}
	for _, v := range a.Values {
		out.Values = append(out.Values, soapItemAttributeValue{
			BackendName:  v.BackendName,
			FrontendName: v.FrontendName,
			Position:     v.Position,
		})
	}
	return out
}
