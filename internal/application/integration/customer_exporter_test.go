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

func TestCustomerExport_UsesExistingMappings(t *testing.T) {
	client := new(MockERPClient)
	mappings := newMemMappingStore().
		put(integration.EntityCustomer, "9", "700").
		put(integration.EntityDeliveryAddress, "billing/31", "701")
	exporter := NewCustomerExporter(mappings, client, zaptest.NewLogger(t))

	refs, err := exporter.Export(context.Background(), newTestOrder())

	require.NoError(t, err)
	assert.Equal(t, CustomerRefs{CustomerID: 700, DeliveryAddressID: 701}, refs)
	client.AssertNotCalled(t, "AddCustomer", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "AddDeliveryAddress", mock.Anything, mock.Anything)
}

func TestCustomerExport_RejectsOrderWithoutBillingAddress(t *testing.T) {
	client := new(MockERPClient)
	exporter := NewCustomerExporter(newMemMappingStore(), client, zaptest.NewLogger(t))

	order := newTestOrder()
	order.Billing = integration.Address{}

	_, err := exporter.Export(context.Background(), order)

	var validationErr *integration.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "20001", validationErr.Value)
	client.AssertNotCalled(t, "AddCustomer", mock.Anything, mock.Anything)
}

func TestCustomerExport_CreatesAndRegisters(t *testing.T) {
	client := new(MockERPClient)
	mappings := newMemMappingStore()
	exporter := NewCustomerExporter(mappings, client, zaptest.NewLogger(t))

	order := newTestOrder()
	order.Shipping = &integration.Address{ID: 44, FirstName: "Erika", LastName: "Muster", City: "Hamburg", CountryISO: "DE"}

	client.On("AddCustomer", mock.Anything, mock.MatchedBy(func(c integration.RemoteCustomer) bool {
		return c.ExternalCustomerID == "Swag/9" && c.Surname == "Mustermann"
	})).Return(success("CustomerID", "700"), nil).Once()
	client.On("AddDeliveryAddress", mock.Anything, mock.MatchedBy(func(a integration.RemoteDeliveryAddress) bool {
		return a.CustomerID == 700 && a.City == "Hamburg"
	})).Return(success("DeliveryAddressID", "701"), nil).Once()

	refs, err := exporter.Export(context.Background(), order)

	require.NoError(t, err)
	assert.Equal(t, CustomerRefs{CustomerID: 700, DeliveryAddressID: 701}, refs)
	customer, ok := mappings.get(integration.EntityCustomer, "9")
	require.True(t, ok)
	assert.Equal(t, "700", customer.RemoteID)
	address, ok := mappings.get(integration.EntityDeliveryAddress, "shipping/44")
	require.True(t, ok)
	assert.Equal(t, "701", address.RemoteID)
	client.AssertExpectations(t)
}

func TestCustomerExport_Failures(t *testing.T) {
	tests := []struct {
		name    string
		res     integration.RemoteResult
		callErr error
		target  error
	}{
		{"rejected", integration.RemoteResult{Success: false}, nil, integration.ErrRemoteRejected},
		{"transport", integration.RemoteResult{}, integration.ErrRemoteUnavailable, integration.ErrRemoteUnavailable},
		{"no id", success("Other", "1"), nil, integration.ErrRemoteInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockERPClient)
			mappings := newMemMappingStore()
			exporter := NewCustomerExporter(mappings, client, nil)
			client.On("AddCustomer", mock.Anything, mock.Anything).Return(tt.res, tt.callErr)

			_, err := exporter.Export(context.Background(), newTestOrder())

			assert.ErrorIs(t, err, tt.target)
			var opErr *integration.RemoteOperationError
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, integration.CodeCustomerExportFailed, opErr.Code)
			assert.Zero(t, mappings.count(integration.EntityCustomer))
			client.AssertNotCalled(t, "AddDeliveryAddress", mock.Anything, mock.Anything)
		})
	}
}

func TestIncomingPayment_Book(t *testing.T) {
	client := new(MockERPClient)
	mappings := newMemMappingStore().put(integration.EntityMethodOfPayment, "5", "2")
	service := NewIncomingPaymentService(mappings, client, zaptest.NewLogger(t))
	bookedAt := time.Date(2013, 10, 2, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return bookedAt }

	order := newTestOrder()
	client.On("AddIncomingPayment", mock.Anything, integration.IncomingPayment{
		OrderID:           4711,
		MethodOfPaymentID: 2,
		Amount:            order.InvoiceAmount,
		Currency:          "EUR",
		ReasonForPayment:  "20001",
		TransactionTime:   bookedAt.Unix(),
	}).Return(success(), nil).Once()

	require.NoError(t, service.Book(context.Background(), order, 4711))
	client.AssertExpectations(t)
}

func TestIncomingPayment_Failures(t *testing.T) {
	t.Run("method not mapped", func(t *testing.T) {
		client := new(MockERPClient)
		service := NewIncomingPaymentService(newMemMappingStore(), client, nil)

		err := service.Book(context.Background(), newTestOrder(), 4711)

		assert.ErrorIs(t, err, integration.ErrNotMapped)
		client.AssertNotCalled(t, "AddIncomingPayment", mock.Anything, mock.Anything)
	})

	t.Run("rejected", func(t *testing.T) {
		client := new(MockERPClient)
		mappings := newMemMappingStore().put(integration.EntityMethodOfPayment, "5", "2")
		service := NewIncomingPaymentService(mappings, client, nil)
		client.On("AddIncomingPayment", mock.Anything, mock.Anything).Return(integration.RemoteResult{Success: false}, nil)

		err := service.Book(context.Background(), newTestOrder(), 4711)

		var opErr *integration.RemoteOperationError
		require.True(t, errors.As(err, &opErr))
		assert.Equal(t, integration.CodeIncomingPaymentFailed, opErr.Code)
	})
}
