//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func TestRedisExportLock(t *testing.T) {
	ctx := context.Background()
	lock, err := NewRedisExportLock(ctx, RedisConfig{Addr: startRedis(t)}, "test:lock:")
	require.NoError(t, err)
	defer lock.Close()

	release, err := lock.TryAcquire(ctx, "order:57", time.Minute)
	require.NoError(t, err)

	_, err = lock.TryAcquire(ctx, "order:57", time.Minute)
	assert.ErrorIs(t, err, integration.ErrExportInProgress)

	require.NoError(t, release(ctx))

	release, err = lock.TryAcquire(ctx, "order:57", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release(ctx))

	t.Run("stale release keeps the new holder", func(t *testing.T) {
		stale, err := lock.TryAcquire(ctx, "categories", 50*time.Millisecond)
		require.NoError(t, err)
		time.Sleep(100 * time.Millisecond)

		fresh, err := lock.TryAcquire(ctx, "categories", time.Minute)
		require.NoError(t, err)

		require.NoError(t, stale(ctx))
		_, err = lock.TryAcquire(ctx, "categories", time.Minute)
		assert.ErrorIs(t, err, integration.ErrExportInProgress)
		require.NoError(t, fresh(ctx))
	})
}
