// Package scope resolves which config group backend API calls target when the
// appliance runs in multi-tenant server mode, and rewrites request paths so
// every call is scope-correct.
package scope

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/containerd/errdefs"

	"github.com/bassista/trackctl/internal/api"
	"github.com/bassista/trackctl/internal/logger"
)

// ModeFetcher is the slice of the backend client the resolver needs.
type ModeFetcher interface {
	ServerMode(ctx context.Context) (api.ServerMode, error)
}

// NavState is the navigation-state analog: it remembers the group indicator
// across invocations (a state file in this client, the URL in a browser).
type NavState interface {
	Group() (string, error)
	SetGroup(group string) error
}

// Scope is the resolved multi-tenant state.
type Scope struct {
	Enabled bool
	Groups  []string
	Current string
}

// Resolver is the single source of truth for the active config group. It is
// created once at application start; Reset exists for test isolation only.
type Resolver struct {
	backend ModeFetcher
	nav     NavState

	mu        sync.Mutex
	resolved  bool
	enabled   bool
	groups    []string
	current   string
	nextObsID int
	observers map[int]func(string)
}

// NewResolver creates an unresolved resolver. Call Initialize before use.
func NewResolver(backend ModeFetcher, nav NavState) *Resolver {
	return &Resolver{
		backend:   backend,
		nav:       nav,
		observers: make(map[int]func(string)),
	}
}

// Initialize fetches the server capability and resolves the current group
// from navigation state. It is idempotent: repeated calls return the already
// resolved scope without another fetch. When server mode is enabled and the
// navigation state holds no valid group, the first available group is
// selected and written back to navigation state.
func (r *Resolver) Initialize(ctx context.Context) (Scope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved {
		return r.scopeLocked(), nil
	}

	mode, err := r.backend.ServerMode(ctx)
	if err != nil {
		return Scope{}, fmt.Errorf("fetch server mode: %w", err)
	}

	r.enabled = mode.Enabled
	r.groups = mode.ConfigGroups

	if mode.Enabled {
		stored, err := r.nav.Group()
		if err != nil {
			logger.WithComponent("scope").Warnf("reading navigation state: %v", err)
		}
		if stored != "" && r.containsLocked(stored) {
			r.current = stored
		} else {
			if len(mode.ConfigGroups) == 0 {
				return Scope{}, fmt.Errorf("server mode enabled but no config groups available")
			}
			r.current = mode.ConfigGroups[0]
			if err := r.nav.SetGroup(r.current); err != nil {
				logger.WithComponent("scope").Warnf("persisting default group: %v", err)
			}
			logger.WithComponent("scope").Infof("no valid group selected, defaulting to %q", r.current)
		}
	}

	r.resolved = true
	return r.scopeLocked(), nil
}

// BuildScopedURL appends the current config group as a query parameter when
// server mode is enabled, and returns the path unchanged otherwise.
func (r *Resolver) BuildScopedURL(path string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.enabled || r.current == "" {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "config_group=" + url.QueryEscape(r.current)
}

// SetCurrentGroup switches the active group after validating membership.
// An unknown group is rejected without mutating any state. On success the
// navigation state is updated and observers are notified so they reload
// their data.
func (r *Resolver) SetCurrentGroup(group string) error {
	r.mu.Lock()

	if !r.enabled {
		r.mu.Unlock()
		return fmt.Errorf("server mode is not enabled: %w", errdefs.ErrFailedPrecondition)
	}
	if !r.containsLocked(group) {
		r.mu.Unlock()
		return fmt.Errorf("unknown config group %q: %w", group, errdefs.ErrNotFound)
	}

	r.current = group
	notify := make([]func(string), 0, len(r.observers))
	for _, fn := range r.observers {
		notify = append(notify, fn)
	}
	nav := r.nav
	r.mu.Unlock()

	if err := nav.SetGroup(group); err != nil {
		logger.WithComponent("scope").Warnf("persisting group selection: %v", err)
	}
	for _, fn := range notify {
		fn(group)
	}
	return nil
}

// SyncFromNav re-reads the navigation state, adopting its group when it is
// valid and differs from the current one. This covers the indicator changing
// out from under the resolver (the back/forward analog).
func (r *Resolver) SyncFromNav() error {
	r.mu.Lock()
	if !r.enabled {
		r.mu.Unlock()
		return nil
	}
	stored, err := r.nav.Group()
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("read navigation state: %w", err)
	}
	if stored == "" || stored == r.current || !r.containsLocked(stored) {
		r.mu.Unlock()
		return nil
	}
	r.current = stored
	notify := make([]func(string), 0, len(r.observers))
	for _, fn := range r.observers {
		notify = append(notify, fn)
	}
	r.mu.Unlock()

	for _, fn := range notify {
		fn(stored)
	}
	return nil
}

// OnGroupChange registers fn to run whenever the active group switches.
// The returned function removes the registration.
func (r *Resolver) OnGroupChange(fn func(group string)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextObsID
	r.nextObsID++
	r.observers[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.observers, id)
		r.mu.Unlock()
	}
}

// Enabled reports whether the backend runs in multi-tenant mode.
func (r *Resolver) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// CurrentGroup returns the active group, or "" outside server mode.
func (r *Resolver) CurrentGroup() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Groups returns the server-declared groups in display order.
func (r *Resolver) Groups() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.groups))
	copy(out, r.groups)
	return out
}

// Reset clears the resolved state so the next Initialize fetches again.
// Test hook; production code never tears a resolver down.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved = false
	r.enabled = false
	r.groups = nil
	r.current = ""
}

func (r *Resolver) containsLocked(group string) bool {
	for _, g := range r.groups {
		if g == group {
			return true
		}
	}
	return false
}

func (r *Resolver) scopeLocked() Scope {
	groups := make([]string, len(r.groups))
	copy(groups, r.groups)
	return Scope{Enabled: r.enabled, Groups: groups, Current: r.current}
}
