// Package formatting renders environment snapshots for the CLI, either as
// human-readable tables or as machine-readable JSON.
package formatting

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/health"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/rds"
	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/snapshot"
)

// Format selects the output representation.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (must be %q or %q)", s, FormatTable, FormatJSON)
	}
}

// RenderSnapshot writes the snapshot to w in the requested format. The JSON
// form is byte-compatible with the snapshots persisted to the state store.
func RenderSnapshot(w io.Writer, format Format, snap *snapshot.EnvironmentSnapshot) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case FormatTable:
		renderWorkloadsTable(w, snap)
		renderDatabaseTable(w, snap)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderWorkloadsTable(w io.Writer, snap *snapshot.EnvironmentSnapshot) {
	t := newTable(w)
	t.AppendHeader(table.Row{"DEPLOYMENT", "NAMESPACE", "EXISTS", "REPLICAS", "AVAILABLE", "HEALTH"})

	names := make([]string, 0, len(snap.Workloads))
	for name := range snap.Workloads {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		state := snap.Workloads[name]
		t.AppendRow(table.Row{
			name,
			state.Namespace,
			boolCell(state.Exists),
			state.ReplicaCount,
			availableCell(state),
			healthCell(state.HealthStatus),
		})
	}
	t.Render()
}

func renderDatabaseTable(w io.Writer, snap *snapshot.EnvironmentSnapshot) {
	t := newTable(w)
	t.AppendHeader(table.Row{"DATABASE", "EXISTS", "STATE", "MESSAGE"})
	t.AppendRow(table.Row{
		snap.Database.Identifier,
		boolCell(snap.Database.Exists),
		databaseStateCell(snap.Database.State),
		snap.Database.Message,
	})
	t.Render()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func boolCell(b bool) string {
	if b {
		return "yes"
	}
	return text.FgRed.Sprint("no")
}

func availableCell(state snapshot.WorkloadState) string {
	if state.Available {
		return text.FgGreen.Sprint("yes")
	}
	if state.UnavailableReason != "" {
		return text.FgRed.Sprintf("no (%s)", state.UnavailableReason)
	}
	return text.FgRed.Sprint("no")
}

func healthCell(status health.Status) string {
	switch status {
	case health.StatusUp:
		return text.FgGreen.Sprint(status)
	case health.StatusDown:
		return text.FgRed.Sprint(status)
	default:
		return text.FgYellow.Sprint(status)
	}
}

func databaseStateCell(state rds.InstanceState) string {
	switch state {
	case rds.StateAvailable:
		return text.FgGreen.Sprint(state)
	case rds.StateStopped:
		return text.FgRed.Sprint(state)
	case rds.StateStarting, rds.StateStopping:
		return text.FgYellow.Sprint(state)
	default:
		return text.FgHiYellow.Sprint(state)
	}
}
