package integration

import (
	"context"
	"time"
)

// ReleaseFunc releases a held export lock
type ReleaseFunc func(ctx context.Context) error

// ExportLock serializes export runs that touch the same entities.
// TryAcquire returns ErrExportInProgress when the key is already held. A
// lock that is never released expires after ttl.
type ExportLock interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}

// Lock keys
const (
	LockKeyCategories = "categories"
	LockKeyAttributes = "attributes"
)

// OrderLockKey returns the lock key of a single order export
func OrderLockKey(orderID int64) string {
	return "order:" + FormatID(orderID)
}
