package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/audit"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/config"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/health"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/kube"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/orchestrator"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/rds"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/snapshot"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/store"
)

// defaultConfigFile is used when --config is not given, relative to the
// working directory of the CI job.
const defaultConfigFile = "config.yaml"

// buildOrchestrator loads the configuration and wires the real drivers
// behind an orchestrator. Everything is constructed fresh per invocation;
// the S3 state store is the only thing shared between runs.
func buildOrchestrator(ctx context.Context) (*orchestrator.Orchestrator, config.Config, error) {
	path := configPath
	if path == "" {
		path = defaultConfigFile
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, config.Config{}, err
	}

	deployments, err := kube.NewDriver(kubeconfigPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("kubernetes driver: %w", err)
	}

	database, err := rds.NewDriver(ctx, cfg.Database.Region)
	if err != nil {
		return nil, cfg, fmt.Errorf("database driver: %w", err)
	}

	stateStore, err := store.NewClient(ctx, cfg.Store.Bucket, cfg.Store.Region)
	if err != nil {
		return nil, cfg, fmt.Errorf("state store: %w", err)
	}

	prober := health.NewProber(cfg.Timing.ProbeTimeout)
	snapshotter := snapshot.New(deployments, database, prober, cfg.Workloads, cfg.Database.Identifier)
	recorder := audit.NewRecorder(stateStore, store.Paths{
		Cluster:     cfg.Identity.Cluster,
		Customer:    cfg.Identity.Customer,
		Environment: cfg.Identity.Environment,
	})

	return orchestrator.New(cfg, snapshotter, deployments, database, stateStore, recorder), cfg, nil
}

// runAction wires the orchestrator and executes one lifecycle action. The
// returned error keeps its concrete type so Execute can map it to an exit
// code.
func runAction(cmd *cobra.Command, action orchestrator.Action) error {
	ctx := cmd.Context()

	orch, _, err := buildOrchestrator(ctx)
	if err != nil {
		return err
	}

	result, err := orch.Run(ctx, action)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	return nil
}
