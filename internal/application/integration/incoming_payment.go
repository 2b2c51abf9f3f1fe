package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/logger"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// IncomingPaymentService books the payment of paid orders in the ERP
type IncomingPaymentService struct {
	mappings integration.MappingReader
	client   integration.PaymentClient
	logger   *zap.Logger
	now      func() time.Time
}

// NewIncomingPaymentService creates a new IncomingPaymentService
func NewIncomingPaymentService(mappings integration.MappingReader, client integration.PaymentClient, logger *zap.Logger) *IncomingPaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncomingPaymentService{
		mappings: mappings,
		client:   client,
		logger:   logger,
		now:      time.Now,
	}
}

// Book books the invoice amount of order against the remote order
func (s *IncomingPaymentService) Book(ctx context.Context, order *integration.ExportableOrder, remoteOrderID int64) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_export", "book_payment",
		telemetry.SpanAttrOrderID, order.ID,
		telemetry.SpanAttrRemoteOrderID, remoteOrderID,
	)
	defer span.End()

	methodKey := integration.FormatID(order.PaymentMethodID)
	methodID, found, err := integration.ResolveInt(ctx, s.mappings, integration.EntityMethodOfPayment, methodKey)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to resolve method of payment %s: %w", methodKey, err)
	}
	if !found {
		err := integration.NewUnresolvedReferenceError(integration.EntityMethodOfPayment, methodKey)
		telemetry.RecordError(span, err)
		return err
	}

	res, err := s.client.AddIncomingPayment(ctx, TranslateIncomingPayment(order, remoteOrderID, methodID, s.now()))
	if err != nil || !res.Success {
		opErr := &integration.RemoteOperationError{
			Operation: "AddIncomingPayments",
			Subject:   fmt.Sprintf("order %q", order.Number),
			Code:      integration.CodeIncomingPaymentFailed,
			Err:       err,
		}
		telemetry.RecordError(span, opErr)
		return opErr
	}

	logger.ForContext(ctx, s.logger).Info("incoming payment booked",
		zap.Int64("order_id", order.ID),
		zap.Int64("remote_order_id", remoteOrderID),
		zap.String("amount", order.InvoiceAmount.String()),
	)
	return nil
}
