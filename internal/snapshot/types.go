// Package snapshot defines the point-in-time environment snapshot and the
// Snapshotter that assembles one from the resource drivers.
package snapshot

import (
	"time"

	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/health"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/rds"
)

// WorkloadState captures one managed deployment at an instant. Every field
// is always populated; a missing deployment is Exists=false so consumers
// never branch on field presence.
type WorkloadState struct {
	Namespace         string        `json:"namespace"`
	Exists            bool          `json:"exists"`
	Available         bool          `json:"available"`
	UnavailableReason string        `json:"unavailable_reason"`
	ReplicaCount      int32         `json:"replica_count"`
	HealthStatus      health.Status `json:"health_status"`
	HealthURL         string        `json:"health_url"`
}

// DatabaseState captures the managed database instance at an instant.
type DatabaseState struct {
	Identifier string            `json:"identifier"`
	Exists     bool              `json:"exists"`
	State      rds.InstanceState `json:"state"`
	Message    string            `json:"message"`
}

// EnvironmentSnapshot is the immutable, self-contained description of the
// whole environment at one instant. Snapshots are created fresh on every
// invocation and never mutated after assembly.
type EnvironmentSnapshot struct {
	Timestamp time.Time                `json:"timestamp"`
	BuildID   string                   `json:"build_id"`
	Workloads map[string]WorkloadState `json:"k8s_deployments"`
	Database  DatabaseState            `json:"aws_rds"`
}

// CurrentlyUp reports whether the snapshot describes a running environment:
// database available and at least one workload with replicas.
func (s *EnvironmentSnapshot) CurrentlyUp() bool {
	if s.Database.State != rds.StateAvailable {
		return false
	}
	for _, w := range s.Workloads {
		if w.ReplicaCount > 0 {
			return true
		}
	}
	return false
}

// CurrentlyDown reports whether the snapshot describes a stopped
// environment: database stopped and every workload at zero replicas.
func (s *EnvironmentSnapshot) CurrentlyDown() bool {
	if s.Database.State != rds.StateStopped {
		return false
	}
	for _, w := range s.Workloads {
		if w.ReplicaCount > 0 {
			return false
		}
	}
	return true
}
