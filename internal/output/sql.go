package output

import (
	"fmt"
	"strings"

	"schemaddl/internal/core"
	"schemaddl/internal/diff"
	"schemaddl/internal/migration"
)

type sqlFormatter struct{}

// FormatMigration formats a migration as an SQL script. Unresolved changes
// and notes are written as comments ahead of the statements.
func (sqlFormatter) FormatMigration(m *migration.Migration) (string, error) {
	if m == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("-- schemaddl migration")
	if m.Dialect != "" {
		sb.WriteString(" (" + string(m.Dialect) + ")")
	}
	sb.WriteString("\n-- Review before running in production.\n")

	writeCommentSection(&sb, "UNRESOLVED (not expressible in this dialect)", m.UnresolvedNotes())
	writeCommentSection(&sb, "NOTES", m.Notes())

	steps := sqlSteps(m)
	if len(steps) == 0 {
		sb.WriteString("\n-- No SQL statements generated.\n")
		return sb.String(), nil
	}

	sb.WriteString("\n-- SQL\n")
	for _, s := range steps {
		if s.RequiresLock {
			sb.WriteString("-- [" + s.Operation + "] (may acquire locks)\n")
		}
		sb.WriteString(s.SQL)
		if !strings.HasSuffix(s.SQL, ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// FormatAlignment lists both aligned relation lists as comments, one
// relation per line, so positions can be compared side by side.
func (sqlFormatter) FormatAlignment(a diff.Alignment) (string, error) {
	var sb strings.Builder
	sb.WriteString("-- schemaddl m2m alignment\n")
	sb.WriteString("-- rule: " + a.Rule.String() + "\n")
	writeRelations(&sb, "OLD", a.Old)
	writeRelations(&sb, "NEW", a.New)
	return sb.String(), nil
}

func writeRelations(sb *strings.Builder, title string, rels []*core.M2MRelation) {
	sb.WriteString("\n-- " + title + "\n")
	if len(rels) == 0 {
		sb.WriteString("-- (none)\n")
		return
	}
	for i, r := range rels {
		if r == nil {
			continue
		}
		fmt.Fprintf(sb, "-- %d. %s", i+1, r.Through)
		if r.Name != "" {
			sb.WriteString(" (" + r.Name + ")")
		}
		sb.WriteString("\n")
	}
}

func sqlSteps(m *migration.Migration) []core.Step {
	var steps []core.Step
	for _, s := range m.Plan() {
		if s.Kind == core.StepSQL && strings.TrimSpace(s.SQL) != "" {
			steps = append(steps, s)
		}
	}
	return steps
}

func writeCommentSection(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n-- " + title + "\n")
	for _, item := range items {
		for _, line := range splitCommentLines(item) {
			if line == "" {
				continue
			}
			sb.WriteString("-- - " + line + "\n")
		}
	}
}

func splitCommentLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}
