// Package cache provides the shared resource cache: many independent readers
// of a remotely-sourced value, at most one network fetch in flight, a TTL, and
// subscriber fan-out when a fresh value lands.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bassista/trackctl/internal/logger"
)

// Fetcher loads the resource from its remote source.
type Fetcher[T any] func(ctx context.Context) (T, error)

// call is one in-flight fetch. Joiners wait on done and read val/err after.
type call[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Resource caches one remotely-sourced value. It is safe for concurrent use.
// The cached value is only ever replaced by the fetch that owns the in-flight
// slot; a fetch failure leaves the last-known-good value in place.
type Resource[T any] struct {
	name  string
	ttl   time.Duration
	fetch Fetcher[T]
	now   func() time.Time

	mu        sync.Mutex
	value     T
	hasValue  bool
	fetchedAt time.Time
	inflight  *call[T]
	nextSubID int
	subs      map[int]func(T)
}

// New creates a resource cache. name is used for logging only.
func New[T any](name string, ttl time.Duration, fetch Fetcher[T]) *Resource[T] {
	return &Resource[T]{
		name:  name,
		ttl:   ttl,
		fetch: fetch,
		now:   time.Now,
		subs:  make(map[int]func(T)),
	}
}

// Get returns the resource value. An unexpired cached value is returned
// without I/O unless force is set. If a fetch is already in flight the caller
// joins it, force included: the caller still receives a fresh result without
// a duplicate request. Otherwise the caller becomes the fetch owner.
func (r *Resource[T]) Get(ctx context.Context, force bool) (T, error) {
	r.mu.Lock()

	if !force && r.hasValue && r.now().Sub(r.fetchedAt) < r.ttl {
		v := r.value
		r.mu.Unlock()
		return v, nil
	}

	if c := r.inflight; c != nil {
		r.mu.Unlock()
		return r.join(ctx, c)
	}

	c := &call[T]{done: make(chan struct{})}
	r.inflight = c
	r.mu.Unlock()

	logger.WithComponent("cache").Tracef("%s: fetching", r.name)
	val, err := r.fetch(ctx)

	r.mu.Lock()
	r.inflight = nil
	var notify []func(T)
	if err == nil {
		r.value = val
		r.hasValue = true
		r.fetchedAt = r.now()
		notify = make([]func(T), 0, len(r.subs))
		for _, fn := range r.subs {
			notify = append(notify, fn)
		}
	}
	r.mu.Unlock()

	c.val, c.err = val, err
	close(c.done)

	if err != nil {
		logger.WithComponent("cache").Debugf("%s: fetch failed: %v", r.name, err)
		var zero T
		return zero, err
	}

	for _, fn := range notify {
		fn(val)
	}
	return val, nil
}

// join waits for an in-flight fetch owned by another caller. The fetch itself
// is not cancellable; a caller whose context ends simply stops waiting.
func (r *Resource[T]) join(ctx context.Context, c *call[T]) (T, error) {
	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Subscribe registers fn to run whenever a fresh value lands. If a value is
// already cached, fn runs immediately with it. The returned function removes
// the registration and is safe to call more than once.
func (r *Resource[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextSubID
	r.nextSubID++
	r.subs[id] = fn
	hasValue, v := r.hasValue, r.value
	r.mu.Unlock()

	if hasValue {
		fn(v)
	}

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// Peek returns the cached value without I/O, and whether one exists.
func (r *Resource[T]) Peek() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.hasValue
}

// Invalidate forgets the cached value so the next Get fetches. In-flight
// fetches are unaffected. Used when the active config group switches and the
// cached data belongs to the old group.
func (r *Resource[T]) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	r.value = zero
	r.hasValue = false
	r.fetchedAt = time.Time{}
}

// FindBy scans a cached collection for the first element matching pred,
// without I/O. It reports false when nothing is cached or nothing matches.
func FindBy[T any](r *Resource[[]T], pred func(T) bool) (T, bool) {
	items, ok := r.Peek()
	if ok {
		for _, item := range items {
			if pred(item) {
				return item, true
			}
		}
	}
	var zero T
	return zero, false
}
