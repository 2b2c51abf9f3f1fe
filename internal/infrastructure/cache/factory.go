package cache

import (
	"context"
	"fmt"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ExportLockFactory creates export locks based on configuration
type ExportLockFactory struct {
	redisConfig           config.RedisConfig
	keyPrefix             string
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ExportLockFactoryOption is a functional option for configuring the factory
type ExportLockFactoryOption func(*ExportLockFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ExportLockFactoryOption {
	return func(f *ExportLockFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory lock
// when Redis is unavailable. Default is false.
func WithInMemoryFallback(allow bool) ExportLockFactoryOption {
	return func(f *ExportLockFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewExportLockFactory creates a new factory
func NewExportLockFactory(redisCfg config.RedisConfig, lockCfg config.LockConfig, opts ...ExportLockFactoryOption) *ExportLockFactory {
	f := &ExportLockFactory{
		redisConfig: redisCfg,
		keyPrefix:   lockCfg.KeyPrefix,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateLock returns a Redis lock when Redis is enabled, the in-memory lock
// otherwise. An unreachable Redis is an error unless fallback is allowed.
func (f *ExportLockFactory) CreateLock(ctx context.Context) (integration.ExportLock, func() error, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory export lock")
		return NewInMemoryExportLock(), func() error { return nil }, nil
	}

	lock, err := NewRedisExportLock(ctx, RedisConfig{
		Addr:     f.redisConfig.RedisAddr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.keyPrefix)
	if err == nil {
		f.logger.Info("using Redis export lock", zap.String("addr", f.redisConfig.RedisAddr()))
		return lock, lock.Close, nil
	}

	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("redis required for export locking but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory export lock. "+
		"Exports started by other processes are not serialized.",
		zap.Error(err),
	)
	return NewInMemoryExportLock(), func() error { return nil }, nil
}
