package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowStatement is the duration above which a statement is logged as slow
const DefaultSlowStatement = 200 * time.Millisecond

// GormLogger writes the statements of the connector's stores to zap. Each
// entry is tagged through ForContext, so statements of an export run carry
// its export_run_id and the trace_id of the active span.
type GormLogger struct {
	base  *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the slow statement threshold. Zero disables it.
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.slow = threshold
	}
}

// NewGormLogger creates a GormLogger
func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{
		base:  base.Named("sql"),
		level: level,
		slow:  DefaultSlowStatement,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	copied := *l
	copied.level = level
	return &copied
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		ForContext(ctx, l.base).Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		ForContext(ctx, l.base).Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		ForContext(ctx, l.base).Sugar().Errorf(msg, data...)
	}
}

// Trace logs one executed statement. Record-not-found is an expected lookup
// outcome for mappings and export status and is never logged.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent || errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}

	elapsed := time.Since(begin)
	statement, rows := fc()
	log := ForContext(ctx, l.base).With(
		zap.String("statement", statement),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)

	if err != nil {
		if l.level >= gormlogger.Error {
			log.Error("sql statement failed", zap.Error(err))
		}
		return
	}
	if l.slow > 0 && elapsed > l.slow {
		if l.level >= gormlogger.Warn {
			log.Warn("slow sql statement", zap.Duration("threshold", l.slow))
		}
		return
	}
	if l.level >= gormlogger.Info {
		log.Debug("sql statement")
	}
}

// MapGormLogLevel maps the log.sql_level setting to a GORM log level.
// Unknown values fall back to warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent", "off":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
