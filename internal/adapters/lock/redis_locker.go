package lock

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tour-itinerary-service/internal/domain"
)

// Release only the lock we own: a generation run that outlived the TTL must
// not delete a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisTourLocker serializes itinerary generation per tour across service
// instances using a Redis SET NX PX lock. The TTL bounds how long a crashed
// holder can block a tour.
type RedisTourLocker struct {
	Client       *redis.Client
	TTL          time.Duration
	WaitTimeout  time.Duration
	PollInterval time.Duration
}

func NewRedisTourLocker(client *redis.Client) *RedisTourLocker {
	return &RedisTourLocker{
		Client:       client,
		TTL:          30 * time.Second,
		WaitTimeout:  3 * time.Second,
		PollInterval: 50 * time.Millisecond,
	}
}

func (l *RedisTourLocker) AcquireTourLock(ctx context.Context, tourID string) (func(), error) {
	key := "tour-lock:" + tourID
	token := uuid.NewString()
	deadline := time.Now().Add(l.WaitTimeout)

	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis tour lock: tour %q: %w", tourID, err)
		}
		if ok {
			break
		}

		if !time.Now().Add(l.PollInterval).Before(deadline) {
			return nil, fmt.Errorf("redis tour lock: tour %q: %w", tourID, domain.ErrLockTimeout)
		}

		timer := time.NewTimer(l.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("redis tour lock: tour %q: %w", tourID, ctx.Err())
		case <-timer.C:
		}
	}

	release := func() {
		// Release must not inherit a canceled request context.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.Client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			log.Printf("release tour lock failed: tour_id=%s err=%v", tourID, err)
		}
	}

	return release, nil
}
