// Package logging provides structured logging for the infrastructure manager,
// built on Go's standard slog package.
//
// All log entries carry a subsystem identifier so runs can be filtered by
// component in CI logs:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//	logging.Info("Orchestrator", "starting action %q", action)
//	logging.Error("StateStore", err, "failed to write %s", path)
//
// Subsystems in use: Bootstrap, Config, Orchestrator, Snapshotter, Audit,
// DeploymentDriver, DatabaseDriver, HealthProber, StateStore.
//
// Level filtering happens at the handler, so filtered-out messages cost no
// allocations. The package is safe for concurrent use.
package logging
