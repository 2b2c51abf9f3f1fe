package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultLockKeyPrefix namespaces export lock keys in Redis
const DefaultLockKeyPrefix = "connector:lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another run is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisExportLock implements ExportLock with Redis SET NX PX.
// This is suitable for deployments where several connector processes may
// run exports at the same time.
type RedisExportLock struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisExportLock connects to Redis and verifies the connection
func NewRedisExportLock(ctx context.Context, cfg RedisConfig, keyPrefix string) (*RedisExportLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisExportLockWithClient(client, keyPrefix), nil
}

// NewRedisExportLockWithClient creates a lock with an existing Redis client
func NewRedisExportLockWithClient(client *redis.Client, keyPrefix string) *RedisExportLock {
	if keyPrefix == "" {
		keyPrefix = DefaultLockKeyPrefix
	}
	return &RedisExportLock{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// TryAcquire takes the lock for key. It returns ErrExportInProgress when
// another holder owns it.
func (l *RedisExportLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (integration.ReleaseFunc, error) {
	redisKey := l.keyPrefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire export lock %q: %w", key, err)
	}
	if !ok {
		return nil, integration.ErrExportInProgress
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			return fmt.Errorf("failed to release export lock %q: %w", key, err)
		}
		return nil
	}, nil
}

// Close closes the Redis client
func (l *RedisExportLock) Close() error {
	return l.client.Close()
}

// Ensure RedisExportLock implements ExportLock
var _ integration.ExportLock = (*RedisExportLock)(nil)
