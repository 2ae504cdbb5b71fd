package cache

import (
	"context"
	"time"

	"github.com/bassista/trackctl/internal/logger"
)

// StartRefresher runs a goroutine that force-refreshes the resource on a
// fixed interval, keeping subscribers fed without any reader having to poll.
// Fetch failures are logged and retried on the next tick; the cache keeps its
// last-known-good value throughout. Returns a channel that is closed when the
// refresher has stopped.
func StartRefresher[T any](ctx context.Context, r *Resource[T], interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	logger.WithComponent("refresh").Debugf("%s: starting refresher with interval %v", r.name, interval)
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.WithComponent("refresh").Debugf("%s: refresher stopped", r.name)
				return
			case <-ticker.C:
				if _, err := r.Get(ctx, true); err != nil {
					logger.WithComponent("refresh").Warnf("%s: refresh failed: %v", r.name, err)
				}
			}
		}
	}()
	return done
}
