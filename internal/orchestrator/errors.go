package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/rds"
)

// DriverError reports that a resource-driver or state-store call failed.
// The core reports these; it does not retry them outside the polling loop.
type DriverError struct {
	Driver string // "deployment", "database", "state-store"
	Op     string
	Err    error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("%s driver failed to %s: %v", e.Driver, e.Op, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }

// RepeatedActionError reports that the idempotency guard rejected the
// action because it matches the previously performed one.
type RepeatedActionError struct {
	Action Action
}

func (e *RepeatedActionError) Error() string {
	return fmt.Sprintf("action %q was already performed in the previous run; repeating it consecutively is not allowed", e.Action)
}

// NoPriorStateError reports that "up" was requested with no recorded
// history to restore replica counts from.
type NoPriorStateError struct{}

func (e *NoPriorStateError) Error() string {
	return `no previous state recorded for this environment; "up" cannot be the first action (start with "down" or "get_env_state")`
}

// UnexpectedStateError reports that polling observed a state that is
// neither the target nor a known transient state, so waiting longer cannot
// help.
type UnexpectedStateError struct {
	State  rds.InstanceState
	Target rds.InstanceState
}

func (e *UnexpectedStateError) Error() string {
	return fmt.Sprintf("database is in unexpected state %q while waiting for %q", e.State, e.Target)
}

// PollTimeoutError reports that the database did not reach the target state
// within the polling deadline.
type PollTimeoutError struct {
	Target    rds.InstanceState
	LastState rds.InstanceState
	Elapsed   time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for database state %q (last observed state %q)", e.Elapsed, e.Target, e.LastState)
}

// PartialFailureError reports that a multi-step sequence aborted partway.
// Completed lists the steps that finished before the failure, in order.
type PartialFailureError struct {
	Action    Action
	Completed []string
	Err       error
}

func (e *PartialFailureError) Error() string {
	if len(e.Completed) == 0 {
		return fmt.Sprintf("action %q failed before completing any step: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("action %q aborted after completing: %s; failed with: %v",
		e.Action, strings.Join(e.Completed, "; "), e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }
