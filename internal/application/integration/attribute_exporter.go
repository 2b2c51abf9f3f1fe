package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/logger"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AttributeExporter creates an ERP item attribute for every shop
// configurator group that has no attribute mapping yet.
type AttributeExporter struct {
	client   integration.AttributeClient
	groups   integration.ConfiguratorGroupReader
	mappings integration.MappingStore
	language string
	lock     integration.ExportLock
	lockTTL  time.Duration
	metrics  *telemetry.ExportMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewAttributeExporter creates a new AttributeExporter
func NewAttributeExporter(
	client integration.AttributeClient,
	groups integration.ConfiguratorGroupReader,
	mappings integration.MappingStore,
	settings ExportSettings,
	logger *zap.Logger,
) *AttributeExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	lang := settings.PrimaryLanguage
	if lang == "" {
		lang = DefaultPrimaryLanguage
	}
	return &AttributeExporter{
		client:   client,
		groups:   groups,
		mappings: mappings,
		language: lang,
		lockTTL:  DefaultCategoryLockTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// WithLock serializes runs through lock
func (e *AttributeExporter) WithLock(lock integration.ExportLock, ttl time.Duration) *AttributeExporter {
	e.lock = lock
	if ttl > 0 {
		e.lockTTL = ttl
	}
	return e
}

// WithMetrics records run outcomes
func (e *AttributeExporter) WithMetrics(metrics *telemetry.ExportMetrics) *AttributeExporter {
	e.metrics = metrics
	return e
}

// Export runs one attribute export. The first failed remote call aborts
// the run; attributes created before stay mapped.
func (e *AttributeExporter) Export(ctx context.Context) (*AttributeRunResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "attribute_export", "run")
	defer span.End()

	runID := uuid.NewString()
	ctx, log := logger.WithRunID(ctx, e.logger, runID)
	started := e.now()

	if e.lock != nil {
		release, err := e.lock.TryAcquire(ctx, integration.LockKeyAttributes, e.lockTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to acquire attribute lock: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("failed to release attribute lock", zap.Error(err))
			}
		}()
	}

	groups, err := e.groups.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load configurator groups: %w", err)
	}

	result := &AttributeRunResult{RunID: runID}
	for _, group := range groups {
		key := integration.FormatID(group.ID)
		_, found, err := e.mappings.Resolve(ctx, integration.EntityAttribute, key)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to resolve attribute %s: %w", key, err)
		}
		if found {
			result.Reused++
			continue
		}

		if err := e.create(ctx, log, group); err != nil {
			telemetry.RecordError(span, err)
			log.Error("attribute export aborted", zap.Int64("group_id", group.ID), zap.Error(err))
			e.metrics.RecordAttributeOutcomes(ctx, result.Created, result.Reused)
			return nil, err
		}
		result.Created++
	}

	e.metrics.RecordAttributeOutcomes(ctx, result.Created, result.Reused)
	e.metrics.RecordRunDuration(ctx, "attributes", e.now().Sub(started))
	log.Info("attribute export finished", zap.Int("created", result.Created), zap.Int("reused", result.Reused))
	return result, nil
}

func (e *AttributeExporter) create(ctx context.Context, log *zap.Logger, group integration.ConfiguratorGroup) error {
	res, err := e.client.AddItemAttribute(ctx, TranslateItemAttribute(group, e.language))
	attributeID, err := remoteAttributeID(res, err, group)
	if err != nil {
		return err
	}

	entry, err := integration.NewMappingEntry(integration.EntityAttribute, integration.FormatID(group.ID), integration.FormatID(attributeID))
	if err != nil {
		return err
	}
	if err := e.mappings.Register(ctx, entry); err != nil {
		return fmt.Errorf("failed to register attribute %d: %w", group.ID, err)
	}

	options := SortedOptions(group)
	valueIDs := res.Values(integration.ResultKeyAttributeValueID)
	if len(valueIDs) != len(options) {
		log.Warn("attribute value count mismatch",
			zap.Int64("group_id", group.ID),
			zap.Int("options", len(options)),
			zap.Int("values", len(valueIDs)),
		)
	}
	for i := 0; i < len(options) && i < len(valueIDs); i++ {
		entry, err := integration.NewMappingEntry(integration.EntityAttributeValue, integration.FormatID(options[i].ID), valueIDs[i])
		if err != nil {
			return err
		}
		if err := e.mappings.Register(ctx, entry); err != nil {
			return fmt.Errorf("failed to register attribute value %d: %w", options[i].ID, err)
		}
	}

	log.Info("attribute created",
		zap.Int64("group_id", group.ID),
		zap.String("name", group.Name),
		zap.Int64("remote_attribute_id", attributeID),
	)
	return nil
}

func remoteAttributeID(res integration.RemoteResult, callErr error, group integration.ConfiguratorGroup) (int64, error) {
	if callErr == nil && res.Success {
		if value, ok := res.Value(integration.ResultKeyAttributeID); ok {
			if id, err := integration.ParseRemoteID(value); err == nil && id > 0 {
				return id, nil
			}
		}
		callErr = integration.ErrRemoteInvalidResponse
	}
	return 0, &integration.RemoteOperationError{
		Operation: "AddItemAttribute",
		Subject:   fmt.Sprintf("attribute %q", group.Name),
		Code:      integration.CodeAttributeCreateFailed,
		Err:       callErr,
	}
}
