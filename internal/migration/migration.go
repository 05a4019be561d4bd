// Package migration holds the ordered plan produced by rendering change
// requests for one dialect. It is designed to be used with the
// schemaddl/internal/core package.
package migration

import (
	"strings"

	"schemaddl/internal/core"
)

// Migration struct contains all steps that need to be performed to apply a
// batch of schema changes, in the order they were requested.
type Migration struct {
	Dialect core.Dialect `json:"dialect"`
	Steps   []core.Step  `json:"steps"`
}

// New returns an empty migration for dialect.
func New(dialect core.Dialect) *Migration {
	return &Migration{Dialect: dialect}
}

// Plan returns the list of steps that needs to be performed.
func (m *Migration) Plan() []core.Step {
	return m.Steps
}

// SQLStatements returns the list of SQL statements that needs to be executed,
// to apply the migration.
func (m *Migration) SQLStatements() []string {
	return m.filterByKind(core.StepSQL, func(s core.Step) string { return s.SQL })
}

// Notes returns informational notes for the user.
func (m *Migration) Notes() []string {
	return m.filterByKind(core.StepNote, func(s core.Step) string { return s.SQL })
}

// UnresolvedNotes returns the reasons of every change that could not be
// rendered for the migration's dialect.
func (m *Migration) UnresolvedNotes() []string {
	return m.filterByKind(core.StepUnresolved, func(s core.Step) string { return s.UnresolvedReason })
}

// HasUnresolved reports whether any change could not be rendered.
func (m *Migration) HasUnresolved() bool {
	for i := range m.Steps {
		if m.Steps[i].Kind == core.StepUnresolved {
			return true
		}
	}
	return false
}

// LockingStatements returns the statements that alter an existing table.
func (m *Migration) LockingStatements() []string {
	out := make([]string, 0)
	for i := range m.Steps {
		if m.Steps[i].Kind == core.StepSQL && m.Steps[i].RequiresLock {
			out = append(out, m.Steps[i].SQL)
		}
	}
	return out
}

func (m *Migration) AddStatement(op core.Operation, stmt string) {
	if stmt = strings.TrimSpace(stmt); stmt == "" {
		return
	}
	m.Steps = append(m.Steps, core.Step{
		Kind:         core.StepSQL,
		Operation:    op.String(),
		SQL:          stmt,
		RequiresLock: requiresLock(stmt),
	})
}

func (m *Migration) AddNote(msg string) {
	if msg = strings.TrimSpace(msg); msg == "" {
		return
	}
	m.Steps = append(m.Steps, core.Step{Kind: core.StepNote, SQL: msg})
}

func (m *Migration) AddUnresolved(op core.Operation, reason string) {
	if reason = strings.TrimSpace(reason); reason == "" {
		return
	}
	m.Steps = append(m.Steps, core.Step{Kind: core.StepUnresolved, Operation: op.String(), UnresolvedReason: reason})
}

// Append adds every step of other after the steps of m.
func (m *Migration) Append(other *Migration) {
	if other == nil {
		return
	}
	m.Steps = append(m.Steps, other.Steps...)
}

// Dedupe trims every step and drops empty ones together with repeated notes.
// Statements and unresolved steps are never dropped, even when repeated: each
// unresolved step stands for one failed change.
func (m *Migration) Dedupe() {
	n := len(m.Steps)
	if n == 0 {
		return
	}
	seenNote := make(map[string]struct{}, n)
	out := make([]core.Step, 0, n)
	for i := range m.Steps {
		s := m.Steps[i]
		normalizeStep(&s)
		if shouldIncludeStep(&s, seenNote) {
			out = append(out, s)
		}
	}
	m.Steps = out
}

func normalizeStep(s *core.Step) {
	s.SQL = strings.TrimSpace(s.SQL)
	s.UnresolvedReason = strings.TrimSpace(s.UnresolvedReason)
}

func shouldIncludeStep(s *core.Step, seenNote map[string]struct{}) bool {
	switch s.Kind {
	case core.StepSQL:
		return s.SQL != ""
	case core.StepNote:
		return firstOccurrence(s.SQL, seenNote)
	case core.StepUnresolved:
		return s.UnresolvedReason != ""
	default:
		return true
	}
}

func firstOccurrence(val string, seen map[string]struct{}) bool {
	if val == "" {
		return false
	}
	if _, ok := seen[val]; ok {
		return false
	}
	seen[val] = struct{}{}
	return true
}

func (m *Migration) filterByKind(kind core.StepKind, fieldFn func(core.Step) string) []string {
	out := make([]string, 0, len(m.Steps)/4+1)
	for i := range m.Steps {
		s := &m.Steps[i]
		if s.Kind != kind {
			continue
		}
		val := strings.TrimSpace(fieldFn(*s))
		if val == "" {
			continue
		}
		out = append(out, val)
	}
	return out
}

func requiresLock(stmt string) bool {
	upper := strings.ToUpper(stmt)
	return strings.HasPrefix(upper, "ALTER TABLE") && !strings.Contains(upper, " RENAME TO ")
}
