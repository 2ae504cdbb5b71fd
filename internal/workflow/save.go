// Package workflow sequences configuration persistence with an optional
// follow-up action (service restart or remote deployment) into one observable
// state machine whose states are safe to bind to UI affordances.
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bassista/trackctl/internal/api"
	"github.com/bassista/trackctl/internal/logger"
)

// State is the workflow's user-visible state.
type State string

const (
	StateIdle       State = "idle"
	StateSaving     State = "saving"
	StateRestarting State = "restarting"
	StateDeploying  State = "deploying"
	StateSaved      State = "saved"
	StateDeployed   State = "deployed"
)

// Step is one fallible stage of the workflow.
type Step func(ctx context.Context) error

// DeployFunc triggers a remote deployment for a config group.
type DeployFunc func(ctx context.Context, groupID string) (api.DeployResult, error)

// Notifier receives the workflow's user-facing outcome messages. Every
// consuming component implements it; there is no fallback probing.
type Notifier interface {
	OnSuccess(msg string)
	OnError(msg string)
}

// GroupIDer yields the active config group for deployment targeting.
type GroupIDer interface {
	CurrentGroup() string
}

// FollowUpError is a partial-workflow failure: the configuration was
// persisted but the follow-up stage failed. Distinguishable from "nothing
// was saved" so callers can message it correctly.
type FollowUpError struct {
	Stage string // "restart" or "deploy"
	Err   error
}

func (e *FollowUpError) Error() string {
	return fmt.Sprintf("configuration saved, but %s failed: %v", e.Stage, e.Err)
}

func (e *FollowUpError) Unwrap() error { return e.Err }

// Orchestrator drives one save workflow at a time. The caller is responsible
// for not invoking a second run while one is in flight (typically by
// disabling the triggering control); the orchestrator does not serialize.
type Orchestrator struct {
	notifier    Notifier
	scoper      GroupIDer
	revertDelay time.Duration

	mu          sync.Mutex
	state       State
	onChange    func(State)
	revertTimer *time.Timer
}

// New creates an idle orchestrator. revertDelay is how long an outcome state
// (saved/deployed) stays visible before reverting to idle.
func New(notifier Notifier, scoper GroupIDer, revertDelay time.Duration) *Orchestrator {
	return &Orchestrator{
		notifier:    notifier,
		scoper:      scoper,
		revertDelay: revertDelay,
		state:       StateIdle,
	}
}

// SetOnChange installs a state observer. Called synchronously on every
// transition, including the delayed revert to idle.
func (o *Orchestrator) SetOnChange(fn func(State)) {
	o.mu.Lock()
	o.onChange = fn
	o.mu.Unlock()
}

// State returns the current workflow state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// RunSave persists the configuration: idle -> saving -> saved -> idle, with
// the final revert after the configured delay. A persist failure reverts to
// idle immediately and is returned to the caller.
func (o *Orchestrator) RunSave(ctx context.Context, persist Step) error {
	o.setState(StateSaving)
	if err := persist(ctx); err != nil {
		o.setState(StateIdle)
		o.notifier.OnError(fmt.Sprintf("failed to save configuration: %v", err))
		return fmt.Errorf("save configuration: %w", err)
	}
	o.notifier.OnSuccess("configuration saved")
	o.settle(StateSaved)
	return nil
}

// RunSaveAndRestart persists, then restarts the affected service. Restart is
// only attempted after a successful persist. Either failure reverts to idle;
// a restart failure is reported as a FollowUpError since the configuration
// itself was durably saved.
func (o *Orchestrator) RunSaveAndRestart(ctx context.Context, persist, restart Step) error {
	o.setState(StateSaving)
	if err := persist(ctx); err != nil {
		o.setState(StateIdle)
		o.notifier.OnError(fmt.Sprintf("failed to save configuration: %v", err))
		return fmt.Errorf("save configuration: %w", err)
	}

	o.setState(StateRestarting)
	if err := restart(ctx); err != nil {
		o.setState(StateIdle)
		followUp := &FollowUpError{Stage: "restart", Err: err}
		o.notifier.OnError(followUp.Error())
		return followUp
	}

	o.notifier.OnSuccess("configuration saved and service restarted")
	o.settle(StateSaved)
	return nil
}

// RunSaveAndDeploy persists, then deploys the active config group to its
// remote stations. A deployment failure is a non-fatal warning, not an
// error: the configuration is durably saved and partial fan-out across
// remote stations is expected, unlike a local restart failure.
func (o *Orchestrator) RunSaveAndDeploy(ctx context.Context, persist Step, deploy DeployFunc) error {
	o.setState(StateSaving)
	if err := persist(ctx); err != nil {
		o.setState(StateIdle)
		o.notifier.OnError(fmt.Sprintf("failed to save configuration: %v", err))
		return fmt.Errorf("save configuration: %w", err)
	}

	groupID := ""
	if o.scoper != nil {
		groupID = o.scoper.CurrentGroup()
	}

	o.setState(StateDeploying)
	result, err := deploy(ctx, groupID)
	if err != nil {
		logger.WithComponent("workflow").Warnf("deploy after save failed: %v", err)
		o.notifier.OnError(fmt.Sprintf("configuration saved, but deployment failed: %v", err))
		o.settle(StateSaved)
		return nil
	}

	msg := "configuration saved and deployed"
	if result.DeployedCount > 0 {
		msg = fmt.Sprintf("configuration saved and deployed to %d stations", result.DeployedCount)
	}
	if result.Message != "" {
		msg = result.Message
	}
	o.notifier.OnSuccess(msg)
	o.settle(StateDeployed)
	return nil
}

// setState transitions immediately, cancelling any pending revert.
func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	if o.revertTimer != nil {
		o.revertTimer.Stop()
		o.revertTimer = nil
	}
	o.state = s
	fn := o.onChange
	o.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}

// settle enters an outcome state and schedules the revert to idle.
func (o *Orchestrator) settle(outcome State) {
	o.setState(outcome)

	o.mu.Lock()
	o.revertTimer = time.AfterFunc(o.revertDelay, func() {
		o.mu.Lock()
		// A newer invocation owns the state now; leave it alone.
		if o.state != outcome {
			o.mu.Unlock()
			return
		}
		o.state = StateIdle
		o.revertTimer = nil
		fn := o.onChange
		o.mu.Unlock()

		if fn != nil {
			fn(StateIdle)
		}
	})
	o.mu.Unlock()
}
