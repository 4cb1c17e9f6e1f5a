package ports

import "context"

// Port: per-tour mutual exclusion for itinerary generation.
// At most one generation run may hold a tour's lock at a time; a second
// acquirer waits up to a bounded timeout and then fails with
// domain.ErrLockTimeout.
type TourLocker interface {
	// Acquire the lock for tourID. On success the returned release func
	// must be called exactly once when generation finishes.
	AcquireTourLock(ctx context.Context, tourID string) (release func(), err error)
}
