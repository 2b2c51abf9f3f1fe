package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var exportTime = time.Date(2013, 10, 1, 13, 0, 0, 0, time.UTC)

type orderExportFixture struct {
	orders    *MockOrderReader
	articles  *MockArticleDetailReader
	statuses  *MockExportStatusRepository
	customers *MockCustomerExporter
	payments  *MockPaymentBooker
	client    *MockERPClient
	mappings  *memMappingStore
	service   *OrderExportService
}

func newOrderExportFixture(t *testing.T) *orderExportFixture {
	f := &orderExportFixture{
		orders:    new(MockOrderReader),
		articles:  new(MockArticleDetailReader),
		statuses:  new(MockExportStatusRepository),
		customers: new(MockCustomerExporter),
		payments:  new(MockPaymentBooker),
		client:    new(MockERPClient),
		mappings:  newMemMappingStore(),
	}
	f.mappings.put(integration.EntityMethodOfPayment, "5", "2")

	f.service = NewOrderExportService(OrderExportDeps{
		Orders:    f.orders,
		Articles:  f.articles,
		Statuses:  f.statuses,
		Mappings:  f.mappings,
		Customers: f.customers,
		Payments:  f.payments,
		Client:    f.client,
	}, DefaultExportSettings(), zaptest.NewLogger(t))
	f.service.now = func() time.Time { return exportTime }
	return f
}

// expectOrder sets up an order whose lines have no local article
func (f *orderExportFixture) expectOrder(order *integration.ExportableOrder) {
	f.orders.On("FindExportable", mock.Anything, order.ID).Return(order, nil)
	f.customers.On("Export", mock.Anything, order).Return(CustomerRefs{CustomerID: 700, DeliveryAddressID: 701}, nil)
	for _, line := range order.Lines {
		f.articles.On("FindByNumber", mock.Anything, line.ArticleNumber).Return(nil, false, nil).Maybe()
	}
}

func (f *orderExportFixture) assertExpectations(t *testing.T) {
	f.orders.AssertExpectations(t)
	f.statuses.AssertExpectations(t)
	f.customers.AssertExpectations(t)
	f.client.AssertExpectations(t)
	f.payments.AssertExpectations(t)
}

func TestExport_Success(t *testing.T) {
	f := newOrderExportFixture(t)
	order := newTestOrder()
	f.expectOrder(order)

	var sent integration.RemoteOrder
	f.client.On("AddOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(integration.RemoteOrder) }).
		Return(success("OrderID", "4711", "Status", "2.0"), nil)
	f.statuses.On("RecordSuccess", mock.Anything, int64(57), int64(4711), 2.0, exportTime).Return(nil)

	// Execute
	result, err := f.service.Export(context.Background(), 57)

	// Verify
	require.NoError(t, err)
	assert.Equal(t, integration.ExportStatusSuccess, result.Status)
	assert.Equal(t, int64(4711), result.RemoteOrderID)
	assert.Equal(t, 2.0, result.RemoteOrderStatus)
	assert.False(t, result.PaymentBooked)

	assert.Equal(t, "Swag/57/20001", sent.Head.ExternalOrderID)
	assert.Equal(t, int64(2), sent.Head.MethodOfPaymentID)
	assert.Equal(t, "EUR", sent.Head.Currency)
	assert.Nil(t, sent.Head.ShippingMethodID)
	assert.Nil(t, sent.Head.StoreID)
	require.Len(t, sent.Items, 2)
	assert.Equal(t, integration.UnmappedRef{Description: "Shirt"}, sent.Items[0].Item)
	assert.Equal(t, "Shirt", sent.Items[0].ItemText)
	f.payments.AssertNotCalled(t, "Book", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestExport_ResolvesOptionalReferences(t *testing.T) {
	f := newOrderExportFixture(t)
	f.mappings.
		put(integration.EntityShippingProfile, "9", "7;12").
		put(integration.EntityShop, "1", "3").
		put(integration.EntityReferrer, "4", "25").
		put(integration.EntityCurrency, "EUR", "EURO").
		put(integration.EntityItemVariant, "301", "123-0-45").
		put(integration.EntityItem, "200", "88").
		put(integration.EntityItem, "201", "89")

	order := newTestOrder()
	order.PartnerID = 4
	f.orders.On("FindExportable", mock.Anything, int64(57)).Return(order, nil)
	f.customers.On("Export", mock.Anything, order).Return(CustomerRefs{CustomerID: 700, DeliveryAddressID: 701}, nil)
	f.articles.On("FindByNumber", mock.Anything, "SW10001").Return(&integration.ArticleDetail{DetailID: 301, ArticleID: 200}, true, nil)
	f.articles.On("FindByNumber", mock.Anything, "SW10002").Return(&integration.ArticleDetail{DetailID: 302, ArticleID: 201}, true, nil)

	var sent integration.RemoteOrder
	f.client.On("AddOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(integration.RemoteOrder) }).
		Return(success("OrderID", "4711", "Status", "3"), nil)
	f.statuses.On("RecordSuccess", mock.Anything, int64(57), int64(4711), 3.0, exportTime).Return(nil)

	_, err := f.service.Export(context.Background(), 57)
	require.NoError(t, err)

	assert.Equal(t, int64(7), *sent.Head.ShippingProfileID)
	assert.Equal(t, int64(12), *sent.Head.ShippingMethodID)
	assert.Equal(t, int64(3), *sent.Head.StoreID)
	assert.Equal(t, int64(25), *sent.Head.ReferrerID)
	assert.Equal(t, "EURO", sent.Head.Currency)
	assert.Equal(t, integration.VariantRef{SKU: "123-0-45"}, sent.Items[0].Item, "variant mapping wins")
	assert.Equal(t, integration.ItemRef{ItemID: 89}, sent.Items[1].Item)
	assert.Empty(t, sent.Items[1].ItemText, "text sync is off")
	assert.Equal(t, int64(25), *sent.Items[1].ReferrerID)
}

func TestExport_UnmappedPartnerUsesDefaultReferrer(t *testing.T) {
	f := newOrderExportFixture(t)
	f.service.settings.DefaultReferrerID = 1

	order := newTestOrder()
	order.PartnerID = 99
	f.expectOrder(order)

	var sent integration.RemoteOrder
	f.client.On("AddOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(integration.RemoteOrder) }).
		Return(success("OrderID", "4711", "Status", "2"), nil)
	f.statuses.On("RecordSuccess", mock.Anything, int64(57), int64(4711), 2.0, exportTime).Return(nil)

	_, err := f.service.Export(context.Background(), 57)
	require.NoError(t, err)
	assert.Equal(t, int64(1), *sent.Head.ReferrerID)
}

func TestExport_MethodOfPaymentNotMapped(t *testing.T) {
	f := newOrderExportFixture(t)
	order := newTestOrder()
	order.PaymentMethodID = 6
	f.orders.On("FindExportable", mock.Anything, int64(57)).Return(order, nil)
	f.customers.On("Export", mock.Anything, order).Return(CustomerRefs{CustomerID: 700, DeliveryAddressID: 701}, nil)
	f.statuses.On("RecordFailure", mock.Anything, int64(57), integration.ExportStatusErrorMethodOfPayment, exportTime).Return(nil)

	result, err := f.service.Export(context.Background(), 57)

	assert.Nil(t, result)
	var exportErr *integration.OrderExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, integration.ExportStatusErrorMethodOfPayment, exportErr.Status)
	assert.Equal(t, integration.CodeMethodOfPaymentNotMapped, exportErr.Code)
	assert.ErrorIs(t, err, integration.ErrNotMapped)
	f.client.AssertNotCalled(t, "AddOrder", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestExport_CustomerFailure(t *testing.T) {
	f := newOrderExportFixture(t)
	order := newTestOrder()
	f.orders.On("FindExportable", mock.Anything, int64(57)).Return(order, nil)
	f.customers.On("Export", mock.Anything, order).Return(CustomerRefs{}, &integration.RemoteOperationError{Operation: "AddCustomers", Code: integration.CodeCustomerExportFailed})
	f.statuses.On("RecordFailure", mock.Anything, int64(57), integration.ExportStatusErrorCustomer, exportTime).Return(nil)

	_, err := f.service.Export(context.Background(), 57)

	var exportErr *integration.OrderExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, integration.ExportStatusErrorCustomer, exportErr.Status)
	assert.Equal(t, integration.CodeCustomerExportFailed, exportErr.Code)
	assert.ErrorIs(t, err, integration.ErrRemoteRejected)
	f.assertExpectations(t)
}

func TestExport_MissingBillingAddressRecordsCustomerError(t *testing.T) {
	f := newOrderExportFixture(t)
	f.service.deps.Customers = NewCustomerExporter(f.mappings, f.client, zaptest.NewLogger(t))

	order := newTestOrder()
	order.ID = 60
	order.Billing = integration.Address{}
	f.orders.On("FindExportable", mock.Anything, int64(60)).Return(order, nil)
	f.statuses.On("RecordFailure", mock.Anything, int64(60), integration.ExportStatusErrorCustomer, exportTime).Return(nil)

	result, err := f.service.Export(context.Background(), 60)

	assert.Nil(t, result)
	var exportErr *integration.OrderExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, integration.ExportStatusErrorCustomer, exportErr.Status)
	assert.Equal(t, integration.CodeCustomerExportFailed, exportErr.Code)
	var validationErr *integration.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	f.client.AssertNotCalled(t, "AddCustomer", mock.Anything, mock.Anything)
	f.client.AssertNotCalled(t, "AddOrder", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestExport_UnresolvedCustomerIsNotARemoteError(t *testing.T) {
	f := newOrderExportFixture(t)
	order := newTestOrder()
	f.orders.On("FindExportable", mock.Anything, int64(57)).Return(order, nil)
	f.customers.On("Export", mock.Anything, order).Return(CustomerRefs{CustomerID: 700}, nil)
	f.articles.On("FindByNumber", mock.Anything, mock.Anything).Return(nil, false, nil)
	f.statuses.On("RecordFailure", mock.Anything, int64(57), integration.ExportStatusErrorCustomer, exportTime).Return(nil)

	_, err := f.service.Export(context.Background(), 57)

	var exportErr *integration.OrderExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, integration.ExportStatusErrorCustomer, exportErr.Status)
	assert.Equal(t, integration.CodeCustomerExportFailed, exportErr.Code)
	assert.ErrorIs(t, err, integration.ErrNotMapped)
	f.client.AssertNotCalled(t, "AddOrder", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestClassifyTranslateError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus integration.ExportStatus
		wantCode   int
	}{
		{"customer", integration.NewUnresolvedReferenceError(integration.EntityCustomer, "9"), integration.ExportStatusErrorCustomer, integration.CodeCustomerExportFailed},
		{"delivery address", integration.NewUnresolvedReferenceError(integration.EntityDeliveryAddress, "9"), integration.ExportStatusErrorCustomer, integration.CodeCustomerExportFailed},
		{"method of payment", integration.NewUnresolvedReferenceError(integration.EntityMethodOfPayment, "5"), integration.ExportStatusErrorMethodOfPayment, integration.CodeMethodOfPaymentNotMapped},
		{"line count", &integration.ValidationError{Field: "line references", Value: "1", Reason: "order has 2 lines"}, integration.ExportStatusErrorSOAP, integration.CodeOrderInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := classifyTranslateError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestExport_RepeatedResultKeysUseLastMessage(t *testing.T) {
	f := newOrderExportFixture(t)
	order := newTestOrder()
	f.expectOrder(order)
	f.client.On("AddOrder", mock.Anything, mock.Anything).
		Return(success("OrderID", "4700", "Status", "1", "OrderID", "4711", "Status", "3"), nil)
	f.statuses.On("RecordSuccess", mock.Anything, int64(57), int64(4711), 3.0, exportTime).Return(nil)

	result, err := f.service.Export(context.Background(), 57)

	require.NoError(t, err)
	assert.Equal(t, int64(4711), result.RemoteOrderID)
	assert.Equal(t, 3.0, result.RemoteOrderStatus)
	f.assertExpectations(t)
}

func TestExport_RemoteRejected(t *testing.T) {
	f := newOrderExportFixture(t)
	order := newTestOrder()
	f.expectOrder(order)
	f.client.On("AddOrder", mock.Anything, mock.Anything).Return(integration.RemoteResult{Success: false}, nil)
	f.statuses.On("RecordFailure", mock.Anything, int64(57), integration.ExportStatusErrorSOAP, exportTime).Return(nil)

	_, err := f.service.Export(context.Background(), 57)

	var exportErr *integration.OrderExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, integration.ExportStatusErrorSOAP, exportErr.Status)
	assert.Equal(t, integration.CodeOrderRejected, exportErr.Code)
	f.statuses.AssertNotCalled(t, "RecordSuccess", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestExport_TransportError(t *testing.T) {
	f := newOrderExportFixture(t)
	order := newTestOrder()
	f.expectOrder(order)
	f.client.On("AddOrder", mock.Anything, mock.Anything).Return(integration.RemoteResult{}, integration.ErrRemoteUnavailable)
	f.statuses.On("RecordFailure", mock.Anything, int64(57), integration.ExportStatusErrorSOAP, exportTime).Return(nil)

	_, err := f.service.Export(context.Background(), 57)

	assert.ErrorIs(t, err, integration.ErrRemoteUnavailable)
	f.assertExpectations(t)
}

func TestExport_IncompleteResponse(t *testing.T) {
	tests := []struct {
		name string
		res  integration.RemoteResult
	}{
		{"missing status", success("OrderID", "4711")},
		{"missing order id", success("Status", "2")},
		{"zero order id", success("OrderID", "0", "Status", "2")},
		{"zero status", success("OrderID", "4711", "Status", "0")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderExportFixture(t)
			order := newTestOrder()
			f.expectOrder(order)
			f.client.On("AddOrder", mock.Anything, mock.Anything).Return(tt.res, nil)
			f.statuses.On("RecordFailure", mock.Anything, int64(57), integration.ExportStatusErrorSOAP, exportTime).Return(nil)

			_, err := f.service.Export(context.Background(), 57)

			var exportErr *integration.OrderExportError
			require.True(t, errors.As(err, &exportErr))
			assert.Equal(t, integration.CodeOrderResponseIncomplete, exportErr.Code)
			assert.ErrorIs(t, err, integration.ErrRemoteInvalidResponse)
		})
	}
}

func TestExport_RecordFailureErrorIsJoined(t *testing.T) {
	f := newOrderExportFixture(t)
	order := newTestOrder()
	f.expectOrder(order)
	f.client.On("AddOrder", mock.Anything, mock.Anything).Return(integration.RemoteResult{Success: false}, nil)
	dbErr := errors.New("database is locked")
	f.statuses.On("RecordFailure", mock.Anything, int64(57), integration.ExportStatusErrorSOAP, exportTime).Return(dbErr)

	_, err := f.service.Export(context.Background(), 57)

	assert.ErrorIs(t, err, dbErr)
	var exportErr *integration.OrderExportError
	assert.True(t, errors.As(err, &exportErr))
}

func TestExport_OrderNotFound(t *testing.T) {
	f := newOrderExportFixture(t)
	f.orders.On("FindExportable", mock.Anything, int64(58)).Return(nil, integration.ErrOrderNotFound)

	_, err := f.service.Export(context.Background(), 58)

	assert.ErrorIs(t, err, integration.ErrOrderNotFound)
	f.statuses.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExport_PaidOrderBooksPayment(t *testing.T) {
	f := newOrderExportFixture(t)
	order := newTestOrder()
	order.PaymentStatusID = DefaultPaidStatusID
	f.expectOrder(order)
	f.client.On("AddOrder", mock.Anything, mock.Anything).Return(success("OrderID", "4711", "Status", "2.0"), nil)
	f.statuses.On("RecordSuccess", mock.Anything, int64(57), int64(4711), 2.0, exportTime).Return(nil)
	f.payments.On("Book", mock.Anything, order, int64(4711)).Return(nil)

	result, err := f.service.Export(context.Background(), 57)

	require.NoError(t, err)
	assert.True(t, result.PaymentBooked)
	f.assertExpectations(t)
}

func TestExport_PaymentFailureKeepsSuccess(t *testing.T) {
	f := newOrderExportFixture(t)
	order := newTestOrder()
	order.PaymentStatusID = DefaultPaidStatusID
	f.expectOrder(order)
	f.client.On("AddOrder", mock.Anything, mock.Anything).Return(success("OrderID", "4711", "Status", "2.0"), nil)
	f.statuses.On("RecordSuccess", mock.Anything, int64(57), int64(4711), 2.0, exportTime).Return(nil)
	bookErr := &integration.RemoteOperationError{Operation: "AddIncomingPayments", Code: integration.CodeIncomingPaymentFailed}
	f.payments.On("Book", mock.Anything, order, int64(4711)).Return(bookErr)

	result, err := f.service.Export(context.Background(), 57)

	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrRemoteRejected)
	require.NotNil(t, result)
	assert.Equal(t, int64(4711), result.RemoteOrderID)
	assert.False(t, result.PaymentBooked)
	f.statuses.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExport_LockHeld(t *testing.T) {
	f := newOrderExportFixture(t)
	lock := new(MockExportLock)
	lock.On("TryAcquire", mock.Anything, "order:57", DefaultOrderLockTTL).Return(integration.ErrExportInProgress)
	f.service.WithLock(lock, 0)

	_, err := f.service.Export(context.Background(), 57)

	assert.ErrorIs(t, err, integration.ErrExportInProgress)
	f.orders.AssertNotCalled(t, "FindExportable", mock.Anything, mock.Anything)
	f.statuses.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExport_LockReleased(t *testing.T) {
	f := newOrderExportFixture(t)
	lock := new(MockExportLock)
	lock.On("TryAcquire", mock.Anything, "order:57", time.Minute).Return(nil)
	f.service.WithLock(lock, time.Minute)

	order := newTestOrder()
	f.expectOrder(order)
	f.client.On("AddOrder", mock.Anything, mock.Anything).Return(integration.RemoteResult{Success: false}, nil)
	f.statuses.On("RecordFailure", mock.Anything, int64(57), integration.ExportStatusErrorSOAP, exportTime).Return(nil)

	_, err := f.service.Export(context.Background(), 57)

	require.Error(t, err)
	assert.Equal(t, []string{"order:57"}, lock.released)
}

func TestExport_MappingStoreFailure(t *testing.T) {
	f := newOrderExportFixture(t)
	order := newTestOrder()
	f.orders.On("FindExportable", mock.Anything, int64(57)).Return(order, nil)
	f.customers.On("Export", mock.Anything, order).Return(CustomerRefs{CustomerID: 700, DeliveryAddressID: 701}, nil)
	storeErr := errors.New("connection refused")
	f.mappings.failWith = storeErr

	_, err := f.service.Export(context.Background(), 57)

	assert.ErrorIs(t, err, storeErr)
	var exportErr *integration.OrderExportError
	assert.False(t, errors.As(err, &exportErr))
	f.statuses.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
