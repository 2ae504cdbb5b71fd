package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bassista/trackctl/internal/api"
)

// recordingNotifier captures outcome messages.
type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) OnSuccess(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) OnError(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

// staticScoper pins the active group.
type staticScoper string

func (s staticScoper) CurrentGroup() string { return string(s) }

// stateRecorder collects every transition.
type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) snapshot() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.states))
	copy(out, r.states)
	return out
}

func ok(ctx context.Context) error { return nil }

func failing(err error) Step {
	return func(ctx context.Context) error { return err }
}

func newTestOrchestrator(scoper GroupIDer) (*Orchestrator, *recordingNotifier, *stateRecorder) {
	notifier := &recordingNotifier{}
	o := New(notifier, scoper, 100*time.Millisecond)
	rec := &stateRecorder{}
	o.SetOnChange(rec.record)
	return o, notifier, rec
}

func waitForIdle(t *testing.T, o *Orchestrator) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if o.State() == StateIdle {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("orchestrator did not revert to idle, state=%s", o.State())
}

func assertTransitions(t *testing.T, rec *stateRecorder, expected ...State) {
	t.Helper()
	got := rec.snapshot()
	if len(got) != len(expected) {
		t.Fatalf("expected transitions %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected transitions %v, got %v", expected, got)
		}
	}
}

func TestRunSave_Success(t *testing.T) {
	o, notifier, rec := newTestOrchestrator(nil)

	if err := o.RunSave(context.Background(), ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.State() != StateSaved {
		t.Errorf("expected saved outcome, got %s", o.State())
	}

	waitForIdle(t, o)
	assertTransitions(t, rec, StateSaving, StateSaved, StateIdle)

	if len(notifier.successes) != 1 {
		t.Errorf("expected one success notification, got %v", notifier.successes)
	}
}

func TestRunSave_PersistFailure(t *testing.T) {
	o, notifier, rec := newTestOrchestrator(nil)
	boom := errors.New("disk full")

	err := o.RunSave(context.Background(), failing(boom))
	if !errors.Is(err, boom) {
		t.Fatalf("expected persist error surfaced, got %v", err)
	}
	if o.State() != StateIdle {
		t.Errorf("expected immediate revert to idle, got %s", o.State())
	}
	assertTransitions(t, rec, StateSaving, StateIdle)
	if len(notifier.errors) != 1 {
		t.Errorf("expected one error notification, got %v", notifier.errors)
	}
}

func TestRunSaveAndRestart_Success(t *testing.T) {
	o, _, rec := newTestOrchestrator(nil)

	var restarted bool
	restart := func(ctx context.Context) error {
		restarted = true
		return nil
	}

	if err := o.RunSaveAndRestart(context.Background(), ok, restart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !restarted {
		t.Error("expected restart to run")
	}

	waitForIdle(t, o)
	assertTransitions(t, rec, StateSaving, StateRestarting, StateSaved, StateIdle)
}

func TestRunSaveAndRestart_PersistFailureSkipsRestart(t *testing.T) {
	o, _, _ := newTestOrchestrator(nil)

	var restarted bool
	restart := func(ctx context.Context) error {
		restarted = true
		return nil
	}

	err := o.RunSaveAndRestart(context.Background(), failing(errors.New("nope")), restart)
	if err == nil {
		t.Fatal("expected error")
	}
	if restarted {
		t.Error("restart must not run when persist fails")
	}
	var followUp *FollowUpError
	if errors.As(err, &followUp) {
		t.Error("persist failure must not classify as a follow-up failure")
	}
}

func TestRunSaveAndRestart_RestartFailureIsPartial(t *testing.T) {
	o, notifier, _ := newTestOrchestrator(nil)

	var persisted bool
	persist := func(ctx context.Context) error {
		persisted = true
		return nil
	}

	err := o.RunSaveAndRestart(context.Background(), persist, failing(errors.New("unit stuck")))
	if err == nil {
		t.Fatal("expected error")
	}

	// Distinguishable partial success: saved, but not restarted.
	var followUp *FollowUpError
	if !errors.As(err, &followUp) {
		t.Fatalf("expected FollowUpError, got %T: %v", err, err)
	}
	if followUp.Stage != "restart" {
		t.Errorf("expected restart stage, got %q", followUp.Stage)
	}
	if !persisted {
		t.Error("expected configuration persisted before restart attempt")
	}
	if o.State() != StateIdle {
		t.Errorf("expected revert to idle, got %s", o.State())
	}
	if len(notifier.errors) != 1 {
		t.Errorf("expected one error notification, got %v", notifier.errors)
	}
}

func TestRunSaveAndDeploy_Success(t *testing.T) {
	o, notifier, rec := newTestOrchestrator(staticScoper("alpha"))

	var deployedGroup string
	deploy := func(ctx context.Context, groupID string) (api.DeployResult, error) {
		deployedGroup = groupID
		return api.DeployResult{Success: true, DeployedCount: 3}, nil
	}

	if err := o.RunSaveAndDeploy(context.Background(), ok, deploy); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deployedGroup != "alpha" {
		t.Errorf("expected deploy targeted at active group alpha, got %q", deployedGroup)
	}

	waitForIdle(t, o)
	assertTransitions(t, rec, StateSaving, StateDeploying, StateDeployed, StateIdle)

	if len(notifier.successes) != 1 {
		t.Fatalf("expected one success notification, got %v", notifier.successes)
	}
}

func TestRunSaveAndDeploy_DeployFailureIsNonFatal(t *testing.T) {
	o, notifier, _ := newTestOrchestrator(staticScoper("alpha"))

	deploy := func(ctx context.Context, groupID string) (api.DeployResult, error) {
		return api.DeployResult{}, errors.New("stations unreachable")
	}

	// Deployment failure is a warning, not an error: the save succeeded.
	if err := o.RunSaveAndDeploy(context.Background(), ok, deploy); err != nil {
		t.Fatalf("expected deploy failure to be non-fatal, got %v", err)
	}
	if o.State() != StateSaved {
		t.Errorf("expected neutral saved outcome, got %s", o.State())
	}
	if len(notifier.errors) != 1 {
		t.Errorf("expected one warning notification, got %v", notifier.errors)
	}

	waitForIdle(t, o)
}

func TestRunSaveAndDeploy_PersistFailureSkipsDeploy(t *testing.T) {
	o, _, _ := newTestOrchestrator(staticScoper("alpha"))

	var deployed bool
	deploy := func(ctx context.Context, groupID string) (api.DeployResult, error) {
		deployed = true
		return api.DeployResult{}, nil
	}

	if err := o.RunSaveAndDeploy(context.Background(), failing(errors.New("nope")), deploy); err == nil {
		t.Fatal("expected error")
	}
	if deployed {
		t.Error("deploy must not run when persist fails")
	}
}

func TestNewInvocationOverridesPendingRevert(t *testing.T) {
	o, _, _ := newTestOrchestrator(nil)

	if err := o.RunSave(context.Background(), ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Re-invoke while the outcome is still showing; the old revert timer
	// must not knock the new run back to idle mid-flight.
	if err := o.RunSave(context.Background(), ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.State() != StateSaved {
		t.Errorf("expected saved outcome, got %s", o.State())
	}
	waitForIdle(t, o)
}
