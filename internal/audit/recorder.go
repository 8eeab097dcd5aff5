// Package audit persists the per-invocation audit trail: pre- and
// post-action snapshots plus an append-only action history, keyed by the
// CI build identifier.
//
// Writes are deliberately not transactional. Each location is attempted
// regardless of earlier failures, and every outcome is reported
// individually, so a broken history write cannot silently swallow the
// latest-action pointer update (or vice versa).
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/snapshot"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/store"
	"github.com/denis-jdsouza/customer-infrastructure-manager/pkg/logging"
)

// ActionRecord is the append-only record of one attempted action. Never
// mutated after write.
type ActionRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	BuildID        string    `json:"build_id"`
	TriggeringUser string    `json:"triggering_user"`
	Customer       string    `json:"customer"`
	Environment    string    `json:"environment"`
	DesiredAction  string    `json:"desired_action"`
}

// StateStore is the write surface the recorder needs.
type StateStore interface {
	PutJSON(ctx context.Context, key string, v interface{}) error
}

// WriteOutcome is the result of one write attempt.
type WriteOutcome struct {
	Path string
	Err  error
}

// Report collects the outcome of every attempted write.
type Report struct {
	Writes []WriteOutcome
}

// Err folds the report into a single error, nil when every write succeeded.
func (r Report) Err() error {
	var errs []error
	for _, w := range r.Writes {
		if w.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", w.Path, w.Err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("audit trail incomplete: %w", errors.Join(errs...))
}

// Recorder writes the audit trail for one invocation.
type Recorder struct {
	store StateStore
	paths store.Paths
}

// NewRecorder creates a Recorder writing through the given store under the
// given environment-scoped path layout.
func NewRecorder(s StateStore, paths store.Paths) *Recorder {
	return &Recorder{store: s, paths: paths}
}

// Record writes, in order: pre-state to the build history and to the
// current pointer, post-state to the build history, and the action record
// to the build history and to the latest-action pointer. A nil snapshot
// (not captured) skips its writes; everything else is attempted even when
// earlier writes fail.
func (r *Recorder) Record(ctx context.Context, rec ActionRecord, pre, post *snapshot.EnvironmentSnapshot) Report {
	var report Report
	put := func(key string, v interface{}) {
		err := r.store.PutJSON(ctx, key, v)
		if err != nil {
			logging.Error("Audit", err, "Failed to record %s", key)
		} else {
			logging.Info("Audit", "Recorded %s", key)
		}
		report.Writes = append(report.Writes, WriteOutcome{Path: key, Err: err})
	}

	if pre != nil {
		put(r.paths.History(rec.BuildID, store.PreStateFile), pre)
		put(r.paths.CurrentPreState(), pre)
	} else {
		logging.Warn("Audit", "No pre-state captured for build %s, skipping pre-state writes", rec.BuildID)
	}

	if post != nil {
		put(r.paths.History(rec.BuildID, store.PostStateFile), post)
	} else {
		logging.Warn("Audit", "No post-state captured for build %s, skipping post-state write", rec.BuildID)
	}

	put(r.paths.History(rec.BuildID, store.ActionsFile), rec)
	put(r.paths.LatestActions(), rec)

	return report
}
