package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestStartRefresher_PeriodicForceFetch(t *testing.T) {
	var calls atomic.Int32
	r := New("test", time.Hour, func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "v", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := StartRefresher(ctx, r, 10*time.Millisecond)

	// The TTL is an hour: only forced refreshes can fetch more than once.
	waitFor(t, func() bool { return calls.Load() >= 3 })

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop after cancel")
	}
}

func TestStartRefresher_KeepsGoingAfterFailure(t *testing.T) {
	var calls atomic.Int32
	r := New("test", time.Hour, func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", errors.New("transient")
		}
		return "v", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartRefresher(ctx, r, 10*time.Millisecond)

	waitFor(t, func() bool {
		v, ok := r.Peek()
		return ok && v == "v"
	})
	if calls.Load() < 2 {
		t.Errorf("expected retry after failed refresh, got %d calls", calls.Load())
	}
}

func TestStartRefresher_NotifiesSubscribers(t *testing.T) {
	var counter atomic.Int32
	r := New("test", time.Hour, func(ctx context.Context) (int32, error) {
		return counter.Add(1), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen atomic.Int32
	r.Subscribe(func(v int32) { seen.Store(v) })

	StartRefresher(ctx, r, 10*time.Millisecond)
	waitFor(t, func() bool { return seen.Load() >= 2 })
}
