package output

import (
	"encoding/json"

	"schemaddl/internal/core"
	"schemaddl/internal/diff"
	"schemaddl/internal/migration"
)

type jsonFormatter struct{}

type migrationSummary struct {
	Unresolved    int `json:"unresolved"`
	Notes         int `json:"notes"`
	SQLStatements int `json:"sqlStatements"`
}

type migrationPayload struct {
	Format     string           `json:"format"`
	Dialect    string           `json:"dialect,omitempty"`
	Summary    migrationSummary `json:"summary"`
	Unresolved []string         `json:"unresolved,omitempty"`
	Notes      []string         `json:"notes,omitempty"`
	SQL        []string         `json:"sql,omitempty"`
	Steps      []core.Step      `json:"steps,omitempty"`
}

type alignmentPayload struct {
	Format string              `json:"format"`
	Rule   string              `json:"rule"`
	Old    []*core.M2MRelation `json:"old"`
	New    []*core.M2MRelation `json:"new"`
}

type Payload interface {
	migrationPayload | alignmentPayload
}

func (jsonFormatter) FormatMigration(m *migration.Migration) (string, error) {
	payload := migrationPayload{Format: string(FormatJSON)}
	if m != nil {
		unresolved := m.UnresolvedNotes()
		notes := m.Notes()
		sql := normalizeStatements(m.SQLStatements())

		payload.Dialect = string(m.Dialect)
		payload.Unresolved = unresolved
		payload.Notes = notes
		payload.SQL = sql
		payload.Steps = m.Plan()
		payload.Summary = migrationSummary{
			Unresolved:    len(unresolved),
			Notes:         len(notes),
			SQLStatements: len(sql),
		}
	}
	return marshalJSON(payload)
}

func (jsonFormatter) FormatAlignment(a diff.Alignment) (string, error) {
	payload := alignmentPayload{
		Format: string(FormatJSON),
		Rule:   a.Rule.String(),
		Old:    a.Old,
		New:    a.New,
	}
	if payload.Old == nil {
		payload.Old = []*core.M2MRelation{}
	}
	if payload.New == nil {
		payload.New = []*core.M2MRelation{}
	}
	return marshalJSON(payload)
}

func marshalJSON[T Payload](payload T) (string, error) {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
