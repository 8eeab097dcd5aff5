package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"

	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/orchestrator"
)

func TestSetVersion(t *testing.T) {
	testVersion := "1.2.3-test"
	SetVersion(testVersion)

	if rootCmd.Version != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, rootCmd.Version)
	}
	if GetVersion() != testVersion {
		t.Errorf("Expected GetVersion to return %s, got %s", testVersion, GetVersion())
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "cim" {
		t.Errorf("Expected Use to be 'cim', got %s", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if rootCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}

	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}

	// Same template as in Execute()
	testCmd.SetVersionTemplate(`{{printf "cim version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)

	testCmd.SetArgs([]string{"--version"})
	err := testCmd.Execute()
	if err != nil {
		t.Fatalf("Error executing version command: %v", err)
	}

	output := buf.String()
	expected := "cim version 1.0.0\n"
	if output != expected {
		t.Errorf("Expected version output %q, got %q", expected, output)
	}
}

func TestSubcommands(t *testing.T) {
	commands := rootCmd.Commands()

	expectedCommands := []string{"up", "down", "state", "version"}
	foundCommands := make(map[string]bool)

	for _, cmd := range commands {
		foundCommands[cmd.Name()] = true
	}

	for _, expected := range expectedCommands {
		if !foundCommands[expected] {
			t.Errorf("Expected subcommand %q to be registered", expected)
		}
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "repeated action is a rejection",
			err:  &orchestrator.RepeatedActionError{Action: orchestrator.ActionUp},
			want: ExitCodeRejected,
		},
		{
			name: "no prior state is a rejection",
			err:  &orchestrator.NoPriorStateError{},
			want: ExitCodeRejected,
		},
		{
			name: "partial failure",
			err: &orchestrator.PartialFailureError{
				Action: orchestrator.ActionDown,
				Err:    errors.New("stop failed"),
			},
			want: ExitCodePartial,
		},
		{
			name: "wrapped partial failure keeps its exit code",
			err: &orchestrator.PartialFailureError{
				Action: orchestrator.ActionUp,
				Err:    &orchestrator.DriverError{Driver: "database", Op: "start", Err: errors.New("rate exceeded")},
			},
			want: ExitCodePartial,
		},
		{
			name: "plain error",
			err:  errors.New("something broke"),
			want: ExitCodeError,
		},
		{
			name: "driver error",
			err:  &orchestrator.DriverError{Driver: "deployment", Op: "scale", Err: errors.New("forbidden")},
			want: ExitCodeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := getExitCode(tt.err)
			if got != tt.want {
				t.Errorf("getExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "kubeconfig", "log-level"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected persistent flag %q to be registered", name)
		}
	}

	levelFlag := rootCmd.PersistentFlags().Lookup("log-level")
	if levelFlag != nil && levelFlag.DefValue != "info" {
		t.Errorf("Expected log-level default 'info', got %s", levelFlag.DefValue)
	}
}
