package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaddl/internal/core"
	"schemaddl/internal/diff"
	"schemaddl/internal/migration"
)

func TestJSONFormatterFormatMigration(t *testing.T) {
	m := migration.New(core.DialectPostgreSQL)
	m.AddStatement(core.OpDropTable, `DROP TABLE IF EXISTS "a"`)
	m.AddUnresolved(core.OpChangeColumn, "change_column is unsupported in postgresql")

	out, err := jsonFormatter{}.FormatMigration(m)
	require.NoError(t, err)

	var payload migrationPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "json", payload.Format)
	assert.Equal(t, "postgresql", payload.Dialect)
	assert.Equal(t, migrationSummary{Unresolved: 1, SQLStatements: 1}, payload.Summary)
	assert.Equal(t, []string{`DROP TABLE IF EXISTS "a";`}, payload.SQL)
	assert.Equal(t, []string{"change_column is unsupported in postgresql"}, payload.Unresolved)
	require.Len(t, payload.Steps, 2)
	assert.Equal(t, core.StepUnresolved, payload.Steps[1].Kind)
	assert.Equal(t, "change_column", payload.Steps[1].Operation)
}

func TestJSONFormatterFormatMigrationNil(t *testing.T) {
	out, err := jsonFormatter{}.FormatMigration(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"format":"json","summary":{"unresolved":0,"notes":0,"sqlStatements":0}}`, out)
}

func TestJSONFormatterFormatAlignment(t *testing.T) {
	out, err := jsonFormatter{}.FormatAlignment(diff.Alignment{
		New:  []*core.M2MRelation{{Through: "t", Name: "n"}},
		Rule: diff.RuleNoMatch,
	})
	require.NoError(t, err)

	var payload struct {
		Format string `json:"format"`
		Rule   string `json:"rule"`
		Old    []any  `json:"old"`
		New    []struct {
			Through string `json:"through"`
			Name    string `json:"name"`
		} `json:"new"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "no_match", payload.Rule)
	assert.NotNil(t, payload.Old)
	assert.Empty(t, payload.Old)
	require.Len(t, payload.New, 1)
	assert.Equal(t, "t", payload.New[0].Through)
}
