package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/audit"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/config"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/kube"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/rds"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/snapshot"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/store"
	"github.com/denis-jdsouza/customer-infrastructure-manager/pkg/logging"
)

// Action is one of the three supported operations.
type Action string

const (
	ActionUp          Action = "up"
	ActionDown        Action = "down"
	ActionGetEnvState Action = "get_env_state"
)

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionUp, ActionDown, ActionGetEnvState:
		return Action(s), nil
	default:
		return "", fmt.Errorf("unsupported action %q (must be %q, %q or %q)", s, ActionUp, ActionDown, ActionGetEnvState)
	}
}

// ActionResult is the structured outcome returned to the caller. It is not
// persisted standalone; CI branches on the process exit code instead.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// DeploymentDriver is the deployment surface the orchestrator needs.
type DeploymentDriver interface {
	Describe(ctx context.Context, name, namespace string) (kube.WorkloadStatus, error)
	Scale(ctx context.Context, name, namespace string, replicas int32) error
}

// DatabaseDriver is the database surface the orchestrator needs.
type DatabaseDriver interface {
	Describe(ctx context.Context, identifier string) (rds.InstanceStatus, error)
	Start(ctx context.Context, identifier string) error
	Stop(ctx context.Context, identifier string) error
}

// StateStore is the read surface the orchestrator needs; all writes go
// through the AuditRecorder.
type StateStore interface {
	GetJSON(ctx context.Context, key string, out interface{}) error
}

// Snapshotter captures the current environment state.
type Snapshotter interface {
	Snapshot(ctx context.Context, buildID string) (*snapshot.EnvironmentSnapshot, error)
}

// AuditRecorder persists the invocation's audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, rec audit.ActionRecord, pre, post *snapshot.EnvironmentSnapshot) audit.Report
}

// Orchestrator coordinates the drivers, the snapshotter, the state store
// and the audit recorder for exactly one environment per invocation. It
// holds no shared mutable state; the object store is the only coordination
// point between runs.
type Orchestrator struct {
	cfg   config.Config
	paths store.Paths

	snapshotter Snapshotter
	deployments DeploymentDriver
	database    DatabaseDriver
	store       StateStore
	recorder    AuditRecorder
	poller      *StatePoller

	// settle-wait function, injectable so tests run with zero waits
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New assembles an Orchestrator from its collaborators. The configuration
// is immutable for the lifetime of the orchestrator.
func New(cfg config.Config, snapshotter Snapshotter, deployments DeploymentDriver, database DatabaseDriver, stateStore StateStore, recorder AuditRecorder) *Orchestrator {
	return &Orchestrator{
		cfg: cfg,
		paths: store.Paths{
			Cluster:     cfg.Identity.Cluster,
			Customer:    cfg.Identity.Customer,
			Environment: cfg.Identity.Environment,
		},
		snapshotter: snapshotter,
		deployments: deployments,
		database:    database,
		store:       stateStore,
		recorder:    recorder,
		poller:      NewStatePoller(cfg.Timing.PollInterval, cfg.Timing.PollTimeout),
		sleep:       ctxSleep,
		now:         func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// EnvState captures and returns the current environment snapshot. It never
// writes to the state store and performs no side effects beyond reading.
func (o *Orchestrator) EnvState(ctx context.Context) (*snapshot.EnvironmentSnapshot, error) {
	return o.snapshotter.Snapshot(ctx, o.cfg.Identity.BuildID)
}

// Run executes the requested action and returns its structured result. The
// returned error, when non-nil, carries the typed failure for exit-code
// mapping; the ActionResult mirrors it for human consumption.
func (o *Orchestrator) Run(ctx context.Context, action Action) (ActionResult, error) {
	logging.Info("Orchestrator", "Running action %q for %s/%s (build %s)",
		action, o.cfg.Identity.Customer, o.cfg.Identity.Environment, o.cfg.Identity.BuildID)

	switch action {
	case ActionUp, ActionDown:
		return o.execute(ctx, action)
	case ActionGetEnvState:
		if _, err := o.EnvState(ctx); err != nil {
			return failure(action, err), err
		}
		return ActionResult{Success: true, Message: "environment state captured", Action: string(action)}, nil
	default:
		err := fmt.Errorf("unsupported action %q", action)
		return failure(action, err), err
	}
}

// execute runs the up or down sequence: legality guard, pre-state capture,
// side effects, post-state capture, audit trail.
func (o *Orchestrator) execute(ctx context.Context, action Action) (ActionResult, error) {
	if err := o.checkLegality(ctx, action); err != nil {
		return failure(action, err), err
	}

	// up restores replica counts from history, so the previous recorded
	// snapshot must exist before any side effect is attempted.
	var prevRecorded *snapshot.EnvironmentSnapshot
	if action == ActionUp {
		var err error
		prevRecorded, err = o.previousRecordedState(ctx)
		if err != nil {
			return failure(action, err), err
		}
	}

	pre, err := o.snapshotter.Snapshot(ctx, o.cfg.Identity.BuildID)
	if err != nil {
		// Nothing captured yet, so there is nothing to audit.
		return failure(action, err), err
	}

	var execErr error
	if action == ActionUp {
		execErr = o.executeUp(ctx, prevRecorded)
	} else {
		execErr = o.executeDown(ctx, pre)
	}

	// The post-state is captured even after a partial failure so the audit
	// trail reflects what actually happened.
	post, postErr := o.snapshotter.Snapshot(ctx, o.cfg.Identity.BuildID)
	if postErr != nil {
		logging.Error("Orchestrator", postErr, "Failed to capture post-state snapshot")
		post = nil
		if execErr == nil {
			execErr = postErr
		}
	}

	report := o.recorder.Record(ctx, audit.ActionRecord{
		Timestamp:      o.now(),
		BuildID:        o.cfg.Identity.BuildID,
		TriggeringUser: o.cfg.Identity.BuildUser,
		Customer:       o.cfg.Identity.Customer,
		Environment:    o.cfg.Identity.Environment,
		DesiredAction:  string(action),
	}, pre, post)
	if auditErr := report.Err(); auditErr != nil {
		if execErr == nil {
			execErr = auditErr
		} else {
			// The action failure is the primary error; the incomplete audit
			// trail is reported but does not mask it.
			logging.Error("Orchestrator", auditErr, "Audit trail incomplete after failed action")
		}
	}

	if execErr != nil {
		return failure(action, execErr), execErr
	}

	message := "environment is up: database available, workload replicas restored"
	if action == ActionDown {
		message = "environment is down: workloads at zero replicas, database stopped"
	}
	return ActionResult{Success: true, Message: message, Action: string(action)}, nil
}

// checkLegality rejects consecutive repeats of up/down before any driver
// call. The last recorded ActionRecord is the source of truth; without one
// the previous action is inferred from the recorded previous snapshot.
func (o *Orchestrator) checkLegality(ctx context.Context, action Action) error {
	var rec audit.ActionRecord
	err := o.store.GetJSON(ctx, o.paths.LatestActions(), &rec)
	if err == nil {
		if rec.DesiredAction == string(action) {
			return &RepeatedActionError{Action: action}
		}
		logging.Debug("Orchestrator", "Previous recorded action was %q (build %s)", rec.DesiredAction, rec.BuildID)
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return &DriverError{Driver: "state-store", Op: "read latest action record", Err: err}
	}

	var prev snapshot.EnvironmentSnapshot
	err = o.store.GetJSON(ctx, o.paths.CurrentPreState(), &prev)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logging.Info("Orchestrator", "No recorded history for this environment; assuming first run")
			if action == ActionUp {
				return &NoPriorStateError{}
			}
			return nil
		}
		return &DriverError{Driver: "state-store", Op: "read previous snapshot", Err: err}
	}

	if action == ActionUp && prev.CurrentlyUp() {
		return &RepeatedActionError{Action: action}
	}
	if action == ActionDown && prev.CurrentlyDown() {
		return &RepeatedActionError{Action: action}
	}
	return nil
}

// previousRecordedState loads the last-recorded pre-state snapshot from the
// current pointer path.
func (o *Orchestrator) previousRecordedState(ctx context.Context) (*snapshot.EnvironmentSnapshot, error) {
	var prev snapshot.EnvironmentSnapshot
	err := o.store.GetJSON(ctx, o.paths.CurrentPreState(), &prev)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NoPriorStateError{}
		}
		return nil, &DriverError{Driver: "state-store", Op: "read previous snapshot", Err: err}
	}
	return &prev, nil
}

// executeDown scales every managed workload to zero, lets the pods
// terminate, then stops the database and waits for it to reach stopped.
func (o *Orchestrator) executeDown(ctx context.Context, pre *snapshot.EnvironmentSnapshot) error {
	var completed []string
	fail := func(err error) error {
		return &PartialFailureError{Action: ActionDown, Completed: completed, Err: err}
	}

	for _, w := range o.cfg.Workloads {
		state, ok := pre.Workloads[w.Name]
		if !ok || !state.Exists {
			logging.Warn("Orchestrator", "Workload %s/%s does not exist, skipping scale-down", w.Namespace, w.Name)
			continue
		}
		if err := o.deployments.Scale(ctx, w.Name, w.Namespace, 0); err != nil {
			return fail(&DriverError{Driver: "deployment", Op: fmt.Sprintf("scale %s to 0", w.Name), Err: err})
		}
		completed = append(completed, fmt.Sprintf("scaled %s to 0 replicas", w.Name))
	}

	if err := o.settle(ctx, o.cfg.Timing.DownSettleWait, "for pods to terminate"); err != nil {
		return fail(err)
	}
	completed = append(completed, "waited for pods to terminate")

	if err := o.database.Stop(ctx, o.cfg.Database.Identifier); err != nil {
		return fail(&DriverError{Driver: "database", Op: "stop", Err: err})
	}
	completed = append(completed, "issued database stop")

	if err := o.poller.WaitFor(ctx, o.observeDatabase, rds.StateStopped); err != nil {
		return fail(err)
	}
	return nil
}

// executeUp starts the database, waits until it is available and reachable,
// then restores each workload to the replica count recorded for it in the
// previous snapshot and waits for applications to come up.
func (o *Orchestrator) executeUp(ctx context.Context, prevRecorded *snapshot.EnvironmentSnapshot) error {
	var completed []string
	fail := func(err error) error {
		return &PartialFailureError{Action: ActionUp, Completed: completed, Err: err}
	}

	if err := o.database.Start(ctx, o.cfg.Database.Identifier); err != nil {
		return fail(&DriverError{Driver: "database", Op: "start", Err: err})
	}
	completed = append(completed, "issued database start")

	if err := o.poller.WaitFor(ctx, o.observeDatabase, rds.StateAvailable); err != nil {
		return fail(err)
	}
	completed = append(completed, "database reached available")

	if err := o.settle(ctx, o.cfg.Timing.DBSettleWait, "for the database to be reachable"); err != nil {
		return fail(err)
	}
	completed = append(completed, "waited for database connectivity")

	// Each workload is restored to its own recorded count, never a shared
	// default.
	for _, w := range o.cfg.Workloads {
		recorded, ok := prevRecorded.Workloads[w.Name]
		if !ok || !recorded.Exists {
			logging.Warn("Orchestrator", "No recorded state for workload %s, skipping scale-up", w.Name)
			continue
		}
		if err := o.deployments.Scale(ctx, w.Name, w.Namespace, recorded.ReplicaCount); err != nil {
			return fail(&DriverError{Driver: "deployment", Op: fmt.Sprintf("scale %s to %d", w.Name, recorded.ReplicaCount), Err: err})
		}
		completed = append(completed, fmt.Sprintf("scaled %s to %d replicas", w.Name, recorded.ReplicaCount))
	}

	if err := o.settle(ctx, o.cfg.Timing.AppSettleWait, "for application endpoints to be reachable"); err != nil {
		return fail(err)
	}
	return nil
}

// observeDatabase adapts the database driver to the poller's observer.
func (o *Orchestrator) observeDatabase(ctx context.Context) (rds.InstanceState, error) {
	status, err := o.database.Describe(ctx, o.cfg.Database.Identifier)
	if err != nil {
		return rds.StateUnknown, &DriverError{Driver: "database", Op: "describe", Err: err}
	}
	return status.State, nil
}

// settle blocks unconditionally for d. This is a coarse propagation delay,
// not an event-driven wait.
func (o *Orchestrator) settle(ctx context.Context, d time.Duration, why string) error {
	if d <= 0 {
		return nil
	}
	logging.Info("Orchestrator", "Waiting %s %s", d, why)
	return o.sleep(ctx, d)
}

func failure(action Action, err error) ActionResult {
	return ActionResult{Success: false, Message: err.Error(), Action: string(action)}
}
