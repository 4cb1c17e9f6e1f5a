package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tour-itinerary-service/internal/domain"
)

// MemoryTourLocker serializes itinerary generation per tour within a single
// process. It is the default locker for local runs without Redis; a
// multi-instance deployment needs RedisTourLocker instead.
//
// Lock channels live for the life of the process, one per tour id ever
// locked: waiters may hold a channel reference across a release, so removing
// entries would let two acquirers hold different channels for the same tour.
// Memory use is bounded by the tour catalog, not by request volume.
type MemoryTourLocker struct {
	WaitTimeout time.Duration

	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewMemoryTourLocker() *MemoryTourLocker {
	return &MemoryTourLocker{
		WaitTimeout: 3 * time.Second,
		locks:       make(map[string]chan struct{}),
	}
}

func (l *MemoryTourLocker) AcquireTourLock(ctx context.Context, tourID string) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[tourID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[tourID] = ch
	}
	l.mu.Unlock()

	timer := time.NewTimer(l.WaitTimeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("memory tour lock: tour %q: %w", tourID, ctx.Err())
	case <-timer.C:
		return nil, fmt.Errorf("memory tour lock: tour %q: %w", tourID, domain.ErrLockTimeout)
	}
}
