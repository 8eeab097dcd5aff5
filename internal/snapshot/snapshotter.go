package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/config"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/health"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/kube"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/rds"
	"github.com/denis-jdsouza/customer-infrastructure-manager/pkg/logging"
)

// DeploymentDescriber is the deployment-driver surface the Snapshotter needs.
type DeploymentDescriber interface {
	Describe(ctx context.Context, name, namespace string) (kube.WorkloadStatus, error)
}

// DatabaseDescriber is the database-driver surface the Snapshotter needs.
type DatabaseDescriber interface {
	Describe(ctx context.Context, identifier string) (rds.InstanceStatus, error)
}

// HealthProber classifies application endpoint reachability.
type HealthProber interface {
	Check(ctx context.Context, url string) health.Status
}

// Snapshotter assembles EnvironmentSnapshots. It performs no retries; each
// sub-call's own error classification propagates unchanged.
type Snapshotter struct {
	deployments DeploymentDescriber
	database    DatabaseDescriber
	prober      HealthProber

	workloads  []config.WorkloadConfig
	identifier string

	now func() time.Time
}

// New creates a Snapshotter over the given drivers for the configured
// workload list and database instance.
func New(deployments DeploymentDescriber, database DatabaseDescriber, prober HealthProber, workloads []config.WorkloadConfig, dbIdentifier string) *Snapshotter {
	return &Snapshotter{
		deployments: deployments,
		database:    database,
		prober:      prober,
		workloads:   workloads,
		identifier:  dbIdentifier,
		now:         func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// Snapshot captures the environment. The database is singular and required,
// so a database driver failure aborts the snapshot; a failed workload
// lookup degrades that workload to "not found" and reporting continues.
func (s *Snapshotter) Snapshot(ctx context.Context, buildID string) (*EnvironmentSnapshot, error) {
	dbStatus, err := s.database.Describe(ctx, s.identifier)
	if err != nil {
		return nil, fmt.Errorf("snapshot aborted: %w", err)
	}

	snap := &EnvironmentSnapshot{
		Timestamp: s.now(),
		BuildID:   buildID,
		Workloads: make(map[string]WorkloadState, len(s.workloads)),
		Database: DatabaseState{
			Identifier: dbStatus.Identifier,
			Exists:     dbStatus.Exists,
			State:      dbStatus.State,
			Message:    dbStatus.Message,
		},
	}

	for _, w := range s.workloads {
		state := WorkloadState{
			Namespace:    w.Namespace,
			HealthURL:    w.HealthURL,
			HealthStatus: health.StatusUnknown,
		}

		status, err := s.deployments.Describe(ctx, w.Name, w.Namespace)
		if err != nil {
			// Degrade this workload to not-found; the others still report.
			logging.Warn("Snapshotter", "Describe of %s/%s failed, reporting as not found: %v", w.Namespace, w.Name, err)
		} else {
			state.Exists = status.Exists
			state.Available = status.Available
			state.UnavailableReason = status.Reason
			state.ReplicaCount = status.Replicas
		}

		state.HealthStatus = s.prober.Check(ctx, w.HealthURL)
		snap.Workloads[w.Name] = state
	}

	logging.Debug("Snapshotter", "Captured snapshot for build %s: %d workloads, database %q",
		buildID, len(snap.Workloads), snap.Database.State)
	return snap, nil
}
