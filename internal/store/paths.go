package store

import "fmt"

// File names of the three state documents.
const (
	PreStateFile  = "pre-state.json"
	PostStateFile = "post-state.json"
	ActionsFile   = "actions.json"
)

// Paths builds the environment-scoped key layout described in the package
// documentation. History keys are never rewritten; the two pointer keys are
// the only overwritten locations.
type Paths struct {
	Cluster     string
	Customer    string
	Environment string
}

func (p Paths) prefix() string {
	return fmt.Sprintf("%s/%s/%s", p.Cluster, p.Customer, p.Environment)
}

// History returns the immutable per-build key for the given file.
func (p Paths) History(buildID, file string) string {
	return fmt.Sprintf("%s/history/%s/%s", p.prefix(), buildID, file)
}

// CurrentPreState returns the overwritten pointer to the most recently
// recorded pre-state snapshot.
func (p Paths) CurrentPreState() string {
	return fmt.Sprintf("%s/%s", p.prefix(), PreStateFile)
}

// LatestActions returns the overwritten pointer to the most recently
// recorded action.
func (p Paths) LatestActions() string {
	return fmt.Sprintf("%s/%s", p.prefix(), ActionsFile)
}
