// Package orchestrator is the core of the infrastructure manager: it
// decides whether a requested action is legal given the recorded history,
// sequences the multi-system side effects, and guarantees the audit trail
// is written even under partial failure.
//
// # Actions
//
// Exactly one action runs per invocation:
//
//   - up: start the database, wait for it to become available, restore every
//     workload to the replica count recorded in the previous pre-state
//     snapshot, then wait for applications to settle.
//   - down: scale every workload to zero, wait for pods to terminate, stop
//     the database and wait for it to reach stopped.
//   - get_env_state: capture and return the current snapshot; no previous
//     state is read and no side effects are performed.
//
// # Legality
//
// Before any side effect, the orchestrator determines the previous desired
// action. The last recorded ActionRecord is the source of truth; when no
// record is readable the previous action is inferred from the recorded
// previous snapshot (database available with running replicas means
// "currently up", database stopped with everything at zero means "currently
// down"). Repeating up or down consecutively is rejected with
// RepeatedActionError before a single driver call is made. Running up with
// no recorded history at all is rejected with NoPriorStateError, because up
// restores replica counts it can only learn from history.
//
// # Sequencing and waits
//
// Driver calls and store accesses are strictly sequential; each step's
// outcome gates the next. Two kinds of blocking occur: the bounded
// fixed-interval database polling implemented by StatePoller, and
// unconditional settle waits that give infrastructure changes time to
// propagate. Both the settle function and the poller's clock are injectable
// so tests run with zero-duration waits.
//
// # Failure behavior
//
// There is no rollback. A step failure aborts the remaining steps and
// surfaces a PartialFailureError listing the steps that did complete; the
// post-state snapshot and the audit writes are still attempted so the
// stored history reflects whatever actually happened.
package orchestrator
