package cmd

import (
	"github.com/spf13/cobra"

	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/formatting"
)

var stateOutputFormat string

// newStateCmd creates the Cobra command that reports the current environment
// state without changing anything.
func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Report the current environment state",
		Long: `Capture and print a point-in-time snapshot of the environment: each
managed deployment's existence, replica count, availability and health
endpoint status, plus the RDS instance state.

Read-only: nothing is scaled, started, stopped or written to the state
store.`,
		Args: cobra.NoArgs,
		RunE: runState,
	}

	cmd.Flags().StringVarP(&stateOutputFormat, "output", "o", "table", "Output format (table, json)")
	return cmd
}

func runState(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseFormat(stateOutputFormat)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	orch, _, err := buildOrchestrator(ctx)
	if err != nil {
		return err
	}

	snap, err := orch.EnvState(ctx)
	if err != nil {
		return err
	}

	return formatting.RenderSnapshot(cmd.OutOrStdout(), format, snap)
}
