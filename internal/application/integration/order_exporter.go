package integration

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/logger"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultOrderLockTTL bounds how long a crashed export blocks the order
const DefaultOrderLockTTL = 5 * time.Minute

// OrderCustomerExporter provides the remote customer of an order
type OrderCustomerExporter interface {
	Export(ctx context.Context, order *integration.ExportableOrder) (CustomerRefs, error)
}

// PaymentBooker books the payment of a paid order
type PaymentBooker interface {
	Book(ctx context.Context, order *integration.ExportableOrder, remoteOrderID int64) error
}

// OrderExportDeps are the collaborators of the OrderExportService
type OrderExportDeps struct {
	Orders    integration.OrderReader
	Articles  integration.ArticleDetailReader
	Statuses  integration.ExportStatusRepository
	Mappings  integration.MappingReader
	Customers OrderCustomerExporter
	Payments  PaymentBooker
	Client    integration.OrderClient
}

// OrderExportService exports single shop orders into the ERP and records
// the outcome of every attempt.
type OrderExportService struct {
	deps     OrderExportDeps
	settings ExportSettings
	lock     integration.ExportLock
	lockTTL  time.Duration
	metrics  *telemetry.ExportMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrderExportService creates a new OrderExportService
func NewOrderExportService(deps OrderExportDeps, settings ExportSettings, logger *zap.Logger) *OrderExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderExportService{
		deps:     deps,
		settings: settings,
		lockTTL:  DefaultOrderLockTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// WithLock serializes exports of the same order through lock
func (s *OrderExportService) WithLock(lock integration.ExportLock, ttl time.Duration) *OrderExportService {
	s.lock = lock
	if ttl > 0 {
		s.lockTTL = ttl
	}
	return s
}

// WithMetrics records export outcomes
func (s *OrderExportService) WithMetrics(metrics *telemetry.ExportMetrics) *OrderExportService {
	s.metrics = metrics
	return s
}

// Export exports one order. Failures classified by the export are recorded
// in the status repository and returned as *integration.OrderExportError.
// When a paid order was exported but its payment could not be booked, the
// result is returned together with the booking error.
func (s *OrderExportService) Export(ctx context.Context, orderID int64) (*OrderExportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_export", "export", telemetry.SpanAttrOrderID, orderID)
	defer span.End()

	log := logger.ForContext(ctx, s.logger).With(zap.Int64("order_id", orderID))

	if s.lock != nil {
		release, err := s.lock.TryAcquire(ctx, integration.OrderLockKey(orderID), s.lockTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to lock order %d: %w", orderID, err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("failed to release order lock", zap.Error(err))
			}
		}()
	}

	order, err := s.deps.Orders.FindExportable(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	log = log.With(zap.String("order_number", order.Number))
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderNumber, order.Number)

	// Customer
	customer, err := s.deps.Customers.Export(ctx, order)
	if err != nil {
		return nil, s.fail(ctx, span, log, order, integration.ExportStatusErrorCustomer, integration.CodeCustomerExportFailed, err)
	}

	refs := ResolvedReferences{
		CustomerID:        customer.CustomerID,
		DeliveryAddressID: customer.DeliveryAddressID,
	}

	// Shipping profile
	shippingKey := integration.FormatID(order.DispatchID)
	if value, found, err := s.deps.Mappings.Resolve(ctx, integration.EntityShippingProfile, shippingKey); err != nil {
		return nil, s.abort(span, fmt.Errorf("failed to resolve shipping profile %s: %w", shippingKey, err))
	} else if found {
		profile, err := integration.ParseShippingProfile(value)
		if err != nil {
			log.Warn("invalid shipping profile mapping ignored", zap.String("dispatch_id", shippingKey), zap.String("value", value))
		} else {
			refs.ShippingProfile = &profile
		}
	}

	// Method of payment
	methodKey := integration.FormatID(order.PaymentMethodID)
	methodID, found, err := integration.ResolveInt(ctx, s.deps.Mappings, integration.EntityMethodOfPayment, methodKey)
	if err != nil {
		return nil, s.abort(span, fmt.Errorf("failed to resolve method of payment %s: %w", methodKey, err))
	}
	if !found {
		return nil, s.fail(ctx, span, log, order, integration.ExportStatusErrorMethodOfPayment, integration.CodeMethodOfPaymentNotMapped,
			integration.NewUnresolvedReferenceError(integration.EntityMethodOfPayment, methodKey))
	}
	refs.MethodOfPaymentID = &methodID

	// Shop, referrer and currency
	if err := s.resolveOptional(ctx, order, &refs); err != nil {
		return nil, s.abort(span, err)
	}

	// Lines
	refs.Lines = make([]integration.LineItemRef, 0, len(order.Lines))
	for _, line := range order.Lines {
		ref, err := s.resolveLine(ctx, line)
		if err != nil {
			return nil, s.abort(span, err)
		}
		refs.Lines = append(refs.Lines, ref)
	}

	remoteOrder, err := TranslateOrder(order, refs, s.settings)
	if err != nil {
		status, code := classifyTranslateError(err)
		return nil, s.fail(ctx, span, log, order, status, code, err)
	}

	res, err := s.deps.Client.AddOrder(ctx, remoteOrder)
	if err != nil || !res.Success {
		return nil, s.fail(ctx, span, log, order, integration.ExportStatusErrorSOAP, integration.CodeOrderRejected,
			&integration.RemoteOperationError{
				Operation: "AddOrders",
				Subject:   fmt.Sprintf("order %q", order.Number),
				Code:      integration.CodeOrderRejected,
				Err:       err,
			})
	}

	remoteOrderID, remoteStatus, ok := parseOrderResult(res)
	if !ok {
		return nil, s.fail(ctx, span, log, order, integration.ExportStatusErrorSOAP, integration.CodeOrderResponseIncomplete,
			&integration.RemoteOperationError{
				Operation: "AddOrders",
				Subject:   fmt.Sprintf("order %q", order.Number),
				Code:      integration.CodeOrderResponseIncomplete,
				Err:       integration.ErrRemoteInvalidResponse,
			})
	}

	if err := s.deps.Statuses.RecordSuccess(ctx, order.ID, remoteOrderID, remoteStatus, s.now()); err != nil {
		return nil, s.abort(span, fmt.Errorf("failed to record export of order %d: %w", order.ID, err))
	}
	s.metrics.RecordOrderExport(ctx, integration.ExportStatusSuccess.String())
	telemetry.SetAttributes(span,
		telemetry.SpanAttrExportStatus, integration.ExportStatusSuccess.String(),
		telemetry.SpanAttrRemoteOrderID, remoteOrderID,
	)
	log.Info("order exported",
		zap.Int64("remote_order_id", remoteOrderID),
		zap.Float64("remote_order_status", remoteStatus),
	)

	result := &OrderExportResult{
		OrderID:           order.ID,
		OrderNumber:       order.Number,
		Status:            integration.ExportStatusSuccess,
		RemoteOrderID:     remoteOrderID,
		RemoteOrderStatus: remoteStatus,
	}

	if order.PaymentStatusID == s.settings.PaidStatusID && s.deps.Payments != nil {
		if err := s.deps.Payments.Book(ctx, order, remoteOrderID); err != nil {
			telemetry.RecordError(span, err)
			log.Error("incoming payment could not be booked", zap.Error(err))
			return result, fmt.Errorf("order %q exported but payment not booked: %w", order.Number, err)
		}
		result.PaymentBooked = true
	}

	return result, nil
}

func (s *OrderExportService) resolveOptional(ctx context.Context, order *integration.ExportableOrder, refs *ResolvedReferences) error {
	shopKey := integration.FormatID(order.ShopID)
	storeID, found, err := integration.ResolveInt(ctx, s.deps.Mappings, integration.EntityShop, shopKey)
	if err != nil {
		return fmt.Errorf("failed to resolve shop %s: %w", shopKey, err)
	}
	if found {
		refs.StoreID = &storeID
	}

	refs.ReferrerID = s.settings.DefaultReferrerID
	if order.HasAffiliate() {
		partnerKey := integration.FormatID(order.PartnerID)
		referrerID, found, err := integration.ResolveInt(ctx, s.deps.Mappings, integration.EntityReferrer, partnerKey)
		if err != nil {
			return fmt.Errorf("failed to resolve referrer %s: %w", partnerKey, err)
		}
		if found {
			refs.ReferrerID = referrerID
		}
	}

	refs.Currency = order.Currency
	currency, found, err := s.deps.Mappings.Resolve(ctx, integration.EntityCurrency, order.Currency)
	if err != nil {
		return fmt.Errorf("failed to resolve currency %s: %w", order.Currency, err)
	}
	if found {
		refs.Currency = currency
	}
	return nil
}

// resolveLine finds the remote item of an order line: the variant mapping
// of the article detail wins over the item mapping of the article.
func (s *OrderExportService) resolveLine(ctx context.Context, line integration.OrderLine) (integration.LineItemRef, error) {
	unmapped := integration.UnmappedRef{Description: line.ArticleName}

	detail, found, err := s.deps.Articles.FindByNumber(ctx, line.ArticleNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to look up article %q: %w", line.ArticleNumber, err)
	}
	if !found {
		return unmapped, nil
	}

	sku, found, err := s.deps.Mappings.Resolve(ctx, integration.EntityItemVariant, integration.FormatID(detail.DetailID))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve variant of article %q: %w", line.ArticleNumber, err)
	}
	if found {
		return integration.VariantRef{SKU: sku}, nil
	}

	itemID, found, err := integration.ResolveInt(ctx, s.deps.Mappings, integration.EntityItem, integration.FormatID(detail.ArticleID))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve item of article %q: %w", line.ArticleNumber, err)
	}
	if found {
		return integration.ItemRef{ItemID: itemID}, nil
	}
	return unmapped, nil
}

// fail records a failed attempt and returns the export error
func (s *OrderExportService) fail(
	ctx context.Context,
	span trace.Span,
	log *zap.Logger,
	order *integration.ExportableOrder,
	status integration.ExportStatus,
	code int,
	cause error,
) error {
	exportErr := &integration.OrderExportError{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Status:      status,
		Code:        code,
		Err:         cause,
	}

	s.metrics.RecordOrderExport(ctx, status.String())
	telemetry.SetAttributes(span, telemetry.SpanAttrExportStatus, status.String())
	telemetry.RecordError(span, exportErr)
	log.Error("order export failed",
		zap.Stringer("status", status),
		zap.Int("code", code),
		zap.Error(cause),
	)

	if err := s.deps.Statuses.RecordFailure(ctx, order.ID, status, s.now()); err != nil {
		log.Error("failed to record export status", zap.Error(err))
		return errors.Join(exportErr, fmt.Errorf("failed to record export status: %w", err))
	}
	return exportErr
}

// classifyTranslateError maps a payload that could not be built to the step
// whose reference is missing. Nothing was sent to the ERP at this point.
func classifyTranslateError(err error) (integration.ExportStatus, int) {
	var unresolved *integration.UnresolvedReferenceError
	if errors.As(err, &unresolved) {
		switch unresolved.EntityType {
		case integration.EntityCustomer, integration.EntityDeliveryAddress:
			return integration.ExportStatusErrorCustomer, integration.CodeCustomerExportFailed
		case integration.EntityMethodOfPayment:
			return integration.ExportStatusErrorMethodOfPayment, integration.CodeMethodOfPaymentNotMapped
		}
	}
	return integration.ExportStatusErrorSOAP, integration.CodeOrderInvalid
}

func (s *OrderExportService) abort(span trace.Span, err error) error {
	telemetry.RecordError(span, err)
	return err
}

// parseOrderResult reads the remote order ID and status of an AddOrders
// response. Both must be present and non-zero.
func parseOrderResult(res integration.RemoteResult) (int64, float64, bool) {
	idValue, ok := res.Value(integration.ResultKeyOrderID)
	if !ok {
		return 0, 0, false
	}
	statusValue, ok := res.Value(integration.ResultKeyOrderStatus)
	if !ok {
		return 0, 0, false
	}

	orderID, err := integration.ParseRemoteID(idValue)
	if err != nil || orderID <= 0 {
		return 0, 0, false
	}
	status, err := strconv.ParseFloat(strings.TrimSpace(statusValue), 64)
	if err != nil || status == 0 {
		return 0, 0, false
	}
	return orderID, status, true
}
