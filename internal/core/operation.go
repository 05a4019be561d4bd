package core

// StepKind is used to identify what kind of step a migration plan holds.
type StepKind string

const (
	StepSQL        StepKind = "SQL"
	StepNote       StepKind = "NOTE"
	StepUnresolved StepKind = "UNRESOLVED"
)

// Step struct contains all information about a single step of a migration
// plan: either a rendered statement, an informational note, or a change that
// could not be rendered for the target dialect.
type Step struct {
	Kind StepKind `json:"kind"`

	// Operation is the name of the change request the step came from, e.g. "add_column".
	Operation string `json:"operation,omitempty"`
	SQL       string `json:"sql,omitempty"`

	// RequiresLock marks ALTER statements that may lock or rebuild a table.
	RequiresLock bool `json:"requiresLock,omitempty"`

	UnresolvedReason string `json:"unresolvedReason,omitempty"`
}
