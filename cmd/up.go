package cmd

import (
	"github.com/spf13/cobra"

	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/orchestrator"
)

// newUpCmd creates the Cobra command that brings the environment up.
func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Bring the environment up",
		Long: `Start the RDS database instance, wait until it is available, then restore
every managed deployment to the replica count recorded when the environment
was last taken down.

Refused when the last recorded action was already "up" (exit code 2), or
when no state has ever been recorded for this environment (exit code 2):
a first-ever action must be "down" so the replica counts get recorded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, orchestrator.ActionUp)
		},
	}
}
