package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrExportStatus = attribute.Key("export_status")
	AttrOutcome      = attribute.Key("outcome")
)

// ExportMetrics records the outcome of export runs.
type ExportMetrics struct {
	orderExports      metric.Int64Counter
	categoryOutcomes  metric.Int64Counter
	attributeOutcomes metric.Int64Counter
	runDuration       metric.Float64Histogram
}

// NewExportMetrics creates the export instruments on meter.
func NewExportMetrics(meter metric.Meter) (*ExportMetrics, error) {
	orderExports, err := meter.Int64Counter("connector.order.exports",
		metric.WithDescription("Order export attempts by resulting status"),
		metric.WithUnit("{attempt}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create order export counter: %w", err)
	}

	categoryOutcomes, err := meter.Int64Counter("connector.category.outcomes",
		metric.WithDescription("Categories created, reused or skipped by reconciliation runs"),
		metric.WithUnit("{category}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create category counter: %w", err)
	}

	attributeOutcomes, err := meter.Int64Counter("connector.attribute.outcomes",
		metric.WithDescription("Item attributes created or reused"),
		metric.WithUnit("{attribute}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create attribute counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("connector.run.duration",
		metric.WithDescription("Duration of export runs"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create run duration histogram: %w", err)
	}

	return &ExportMetrics{
		orderExports:      orderExports,
		categoryOutcomes:  categoryOutcomes,
		attributeOutcomes: attributeOutcomes,
		runDuration:       runDuration,
	}, nil
}

// RecordOrderExport counts one order export attempt. A nil receiver is a no-op.
func (m *ExportMetrics) RecordOrderExport(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.orderExports.Add(ctx, 1, metric.WithAttributes(AttrExportStatus.String(status)))
}

// RecordCategoryOutcomes counts categories of one reconciliation run.
func (m *ExportMetrics) RecordCategoryOutcomes(ctx context.Context, created, reused, skipped int) {
	if m == nil {
		return
	}
	m.categoryOutcomes.Add(ctx, int64(created), metric.WithAttributes(AttrOutcome.String("created")))
	m.categoryOutcomes.Add(ctx, int64(reused), metric.WithAttributes(AttrOutcome.String("reused")))
	m.categoryOutcomes.Add(ctx, int64(skipped), metric.WithAttributes(AttrOutcome.String("skipped")))
}

// RecordAttributeOutcomes counts attributes of one attribute export run.
func (m *ExportMetrics) RecordAttributeOutcomes(ctx context.Context, created, reused int) {
	if m == nil {
		return
	}
	m.attributeOutcomes.Add(ctx, int64(created), metric.WithAttributes(AttrOutcome.String("created")))
	m.attributeOutcomes.Add(ctx, int64(reused), metric.WithAttributes(AttrOutcome.String("reused")))
}

// RecordRunDuration records how long a run of kind took.
func (m *ExportMetrics) RecordRunDuration(ctx context.Context, kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("run", kind)))
}
