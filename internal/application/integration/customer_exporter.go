package integration

import (
	"context"
	"fmt"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// CustomerExporter makes sure the customer and delivery address of an order
// exist in the ERP, creating them on first use.
type CustomerExporter struct {
	mappings integration.MappingStore
	client   integration.CustomerClient
	logger   *zap.Logger
}

// NewCustomerExporter creates a new CustomerExporter
func NewCustomerExporter(mappings integration.MappingStore, client integration.CustomerClient, logger *zap.Logger) *CustomerExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerExporter{
		mappings: mappings,
		client:   client,
		logger:   logger,
	}
}

// Export resolves or creates the remote customer and delivery address
func (e *CustomerExporter) Export(ctx context.Context, order *integration.ExportableOrder) (CustomerRefs, error) {
	log := logger.ForContext(ctx, e.logger).With(zap.Int64("customer_id", order.Customer.ID))

	if !order.HasBillingAddress() {
		return CustomerRefs{}, &integration.ValidationError{
			Field: "order", Value: order.Number, Reason: "has no billing address",
		}
	}

	customerKey := integration.FormatID(order.Customer.ID)
	customerID, found, err := integration.ResolveInt(ctx, e.mappings, integration.EntityCustomer, customerKey)
	if err != nil {
		return CustomerRefs{}, fmt.Errorf("failed to resolve customer %s: %w", customerKey, err)
	}
	if !found {
		res, err := e.client.AddCustomer(ctx, TranslateCustomer(order))
		customerID, err = createdID(res, err, integration.ResultKeyCustomerID, "AddCustomers", "customer "+customerKey)
		if err != nil {
			return CustomerRefs{}, err
		}
		if err := e.register(ctx, integration.EntityCustomer, customerKey, customerID); err != nil {
			return CustomerRefs{}, err
		}
		log.Info("customer created", zap.Int64("remote_customer_id", customerID))
	}

	addressKey := DeliveryAddressKey(order)
	addressID, found, err := integration.ResolveInt(ctx, e.mappings, integration.EntityDeliveryAddress, addressKey)
	if err != nil {
		return CustomerRefs{}, fmt.Errorf("failed to resolve delivery address %s: %w", addressKey, err)
	}
	if !found {
		res, err := e.client.AddDeliveryAddress(ctx, TranslateDeliveryAddress(order, customerID))
		addressID, err = createdID(res, err, integration.ResultKeyDeliveryAddressID, "AddCustomerDeliveryAddresses", "delivery address "+addressKey)
		if err != nil {
			return CustomerRefs{}, err
		}
		if err := e.register(ctx, integration.EntityDeliveryAddress, addressKey, addressID); err != nil {
			return CustomerRefs{}, err
		}
		log.Info("delivery address created", zap.Int64("remote_address_id", addressID))
	}

	return CustomerRefs{CustomerID: customerID, DeliveryAddressID: addressID}, nil
}

func (e *CustomerExporter) register(ctx context.Context, entityType integration.EntityType, localID string, remoteID int64) error {
	entry, err := integration.NewMappingEntry(entityType, localID, integration.FormatID(remoteID))
	if err != nil {
		return err
	}
	if err := e.mappings.Register(ctx, entry); err != nil {
		return fmt.Errorf("failed to register %s %s: %w", entityType, localID, err)
	}
	return nil
}

// createdID extracts the positive remote ID stored under key from the
// result of a create call.
func createdID(res integration.RemoteResult, callErr error, key, operation, subject string) (int64, error) {
	if callErr == nil && res.Success {
		if value, ok := res.Value(key); ok {
			if id, err := integration.ParseRemoteID(value); err == nil && id > 0 {
				return id, nil
			}
		}
		callErr = integration.ErrRemoteInvalidResponse
	}
	return 0, &integration.RemoteOperationError{
		Operation: operation,
		Subject:   subject,
		Code:      integration.CodeCustomerExportFailed,
		Err:       callErr,
	}
}
