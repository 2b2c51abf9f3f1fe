package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey contextKey = "logger"
	runIDKey  contextKey = "export_run_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, falling back to a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRunID tags the context with the identifier of one export run and
// returns the enriched logger.
func WithRunID(ctx context.Context, logger *zap.Logger, runID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, runIDKey, runID)
	enriched := logger.With(zap.String("export_run_id", runID))
	return WithContext(ctx, enriched), enriched
}

// RunID returns the export run identifier stored in ctx, if any.
func RunID(ctx context.Context) string {
	if runID, ok := ctx.Value(runIDKey).(string); ok {
		return runID
	}
	return ""
}

// ForContext returns logger enriched with the run ID and the active
// span's trace_id and span_id.
func ForContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if logger == nil {
		// the context logger already carries the run ID
		logger = FromContext(ctx)
	} else if runID := RunID(ctx); runID != "" {
		logger = logger.With(zap.String("export_run_id", runID))
	}

	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}
