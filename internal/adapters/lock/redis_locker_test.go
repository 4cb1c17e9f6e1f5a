package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"tour-itinerary-service/internal/domain"
)

func newTestLocker(t *testing.T) (*RedisTourLocker, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewRedisTourLocker(client)
	locker.WaitTimeout = 200 * time.Millisecond
	locker.PollInterval = 10 * time.Millisecond
	return locker, srv
}

func TestRedisTourLockerAcquireRelease(t *testing.T) {
	locker, srv := newTestLocker(t)

	release, err := locker.AcquireTourLock(context.Background(), "tour-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !srv.Exists("tour-lock:tour-1") {
		t.Fatal("lock key missing after acquire")
	}

	release()
	if srv.Exists("tour-lock:tour-1") {
		t.Fatal("lock key still present after release")
	}

	// The lock is reusable after release.
	release2, err := locker.AcquireTourLock(context.Background(), "tour-1")
	if err != nil {
		t.Fatalf("reacquire failed: %v", err)
	}
	release2()
}

func TestRedisTourLockerTimeout(t *testing.T) {
	locker, _ := newTestLocker(t)

	release, err := locker.AcquireTourLock(context.Background(), "tour-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()

	_, err = locker.AcquireTourLock(context.Background(), "tour-1")
	if !errors.Is(err, domain.ErrLockTimeout) {
		t.Fatalf("err = %v, want ErrLockTimeout", err)
	}
}

func TestRedisTourLockerIndependentTours(t *testing.T) {
	locker, _ := newTestLocker(t)

	releaseA, err := locker.AcquireTourLock(context.Background(), "tour-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer releaseA()

	releaseB, err := locker.AcquireTourLock(context.Background(), "tour-b")
	if err != nil {
		t.Fatalf("lock for another tour blocked: %v", err)
	}
	releaseB()
}

func TestRedisTourLockerReleaseIgnoresForeignLock(t *testing.T) {
	locker, srv := newTestLocker(t)

	release, err := locker.AcquireTourLock(context.Background(), "tour-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Simulate TTL expiry and a successor taking the lock.
	srv.Del("tour-lock:tour-1")
	if err := srv.Set("tour-lock:tour-1", "someone-else"); err != nil {
		t.Fatalf("seed foreign lock: %v", err)
	}

	release()
	got, err := srv.Get("tour-lock:tour-1")
	if err != nil || got != "someone-else" {
		t.Fatalf("foreign lock was touched: val=%q err=%v", got, err)
	}
}
