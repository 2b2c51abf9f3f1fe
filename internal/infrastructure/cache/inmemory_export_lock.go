package cache

import (
	"context"
	"sync"
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
)

type lockEntry struct {
	token     uint64
	expiresAt time.Time
}

// InMemoryExportLock implements ExportLock with a process-local map.
// It only serializes exports within one process.
type InMemoryExportLock struct {
	mu      sync.Mutex
	entries map[string]lockEntry
	next    uint64
	now     func() time.Time
}

// NewInMemoryExportLock creates a new in-memory export lock
func NewInMemoryExportLock() *InMemoryExportLock {
	return &InMemoryExportLock{
		entries: make(map[string]lockEntry),
		now:     time.Now,
	}
}

// TryAcquire takes the lock for key unless an unexpired holder owns it
func (l *InMemoryExportLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (integration.ReleaseFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, held := l.entries[key]; held && now.Before(e.expiresAt) {
		return nil, integration.ErrExportInProgress
	}

	l.next++
	token := l.next
	l.entries[key] = lockEntry{token: token, expiresAt: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if e, held := l.entries[key]; held && e.token == token {
			delete(l.entries, key)
		}
		return nil
	}, nil
}

// Size returns the number of held or expired-but-unreleased locks
func (l *InMemoryExportLock) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Ensure InMemoryExportLock implements ExportLock
var _ integration.ExportLock = (*InMemoryExportLock)(nil)
