package cmd

import (
	"errors"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/orchestrator"
	"github.com/denis-jdsouza/customer-infrastructure-manager/pkg/logging"
)

// Exit codes for CLI commands. CI pipelines branch on these to tell a
// rejected action apart from an infrastructure failure.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeRejected indicates the action was refused before any side effect
	// (repeated action, or up with no recorded history).
	ExitCodeRejected = 2
	// ExitCodePartial indicates the action started but did not complete; the
	// environment may be in an intermediate state.
	ExitCodePartial = 3
)

var (
	configPath     string
	kubeconfigPath string
	logLevel       string
)

// runID correlates every log line of one invocation.
var runID = uuid.New().String()

// rootCmd represents the base command for the cim application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cim",
	Short: "Bring a customer cloud environment up or down",
	Long: `cim manages the lifecycle of one customer environment: its Kubernetes
deployments, its RDS database instance, and the S3-backed state history
that makes every action auditable and reversible.

Designed to run from CI: every invocation is stamped with the build number
and triggering user, and consecutive repeats of the same action are refused.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.InitForCLI(logging.ParseLevel(logLevel), cmd.ErrOrStderr())
		logging.Debug("CLI", "Run %s started (command %q)", runID, cmd.Name())
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It initializes and executes the root command, which in turn handles subcommands and flags.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "cim version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var repeated *orchestrator.RepeatedActionError
	if errors.As(err, &repeated) {
		return ExitCodeRejected
	}

	var noPrior *orchestrator.NoPriorStateError
	if errors.As(err, &noPrior) {
		return ExitCodeRejected
	}

	var partial *orchestrator.PartialFailureError
	if errors.As(err, &partial) {
		return ExitCodePartial
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default config.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&kubeconfigPath, "kubeconfig", "", "kubeconfig path (default: in-cluster config, then ~/.kube/config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newUpCmd())
	rootCmd.AddCommand(newDownCmd())
	rootCmd.AddCommand(newStateCmd())
	rootCmd.AddCommand(newVersionCmd())
}
