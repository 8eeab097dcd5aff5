package rds

// InstanceState is the normalized database instance state.
type InstanceState string

const (
	StateAvailable InstanceState = "available"
	StateStopped   InstanceState = "stopped"
	StateStarting  InstanceState = "starting"
	StateStopping  InstanceState = "stopping"
	StateUnknown   InstanceState = "unknown"
)

// Terminal reports whether no further transition happens without a new
// driver action.
func (s InstanceState) Terminal() bool {
	return s == StateAvailable || s == StateStopped
}

// Transient reports whether the state is an intermediate one expected to
// resolve on its own.
func (s InstanceState) Transient() bool {
	return s == StateStarting || s == StateStopping
}

// ParseInstanceState maps a raw RDS status string onto the fixed enum.
// Anything outside the four recognized statuses is StateUnknown.
func ParseInstanceState(raw string) InstanceState {
	switch raw {
	case "available":
		return StateAvailable
	case "stopped":
		return StateStopped
	case "starting":
		return StateStarting
	case "stopping":
		return StateStopping
	default:
		return StateUnknown
	}
}
