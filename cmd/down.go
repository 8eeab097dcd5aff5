package cmd

import (
	"github.com/spf13/cobra"

	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/orchestrator"
)

// newDownCmd creates the Cobra command that takes the environment down.
func newDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Take the environment down",
		Long: `Scale every managed deployment to zero replicas, wait for the pods to
terminate, then stop the RDS database instance and wait until it reports
stopped.

The pre-action snapshot records each deployment's replica count so a later
"up" can restore it. Refused when the last recorded action was already
"down" (exit code 2).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, orchestrator.ActionDown)
		},
	}
}
