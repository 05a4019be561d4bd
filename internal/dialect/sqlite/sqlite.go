// Package sqlite provides the SQLite dialect. SQLite cannot alter a column in
// place, so every operation that rewrites a column definition is rejected.
package sqlite

import (
	"strings"

	"schemaddl/internal/core"
	"schemaddl/internal/dialect"
)

func init() {
	dialect.Register(core.DialectSQLite, NewSpec)
}

// Unsupported lists the operations SQLite cannot express.
var Unsupported = dialect.NewOperationSet(
	core.OpModifyColumn,
	core.OpAlterColumnDefault,
	core.OpAlterColumnNullability,
	core.OpSetColumnComment,
)

// NewSpec returns the SQLite dialect record.
func NewSpec(dialect.Options) dialect.Spec {
	t := dialect.BaseTemplates()
	t[core.OpAddIndex] = "CREATE {unique}INDEX {name} ON {table} ({columns})"
	t[core.OpDropIndex] = "DROP INDEX IF EXISTS {name}"
	t[core.OpDropIndexByName] = "DROP INDEX IF EXISTS {name}"

	return dialect.Spec{
		Name:             core.DialectSQLite,
		Templates:        t,
		Unsupported:      Unsupported,
		QuoteIdentifier:  dialect.QuoteANSI,
		QuoteString:      dialect.QuoteANSIString,
		BoolLiteral:      boolLiteral,
		CurrentTimestamp: "CURRENT_TIMESTAMP",
		AutoIncrement:    "AUTOINCREMENT",
		TableComment: func(_, comment string) string {
			return " " + blockComment(comment)
		},
		ColumnComment: func(_, _, comment string) string {
			return blockComment(comment)
		},
	}
}

func blockComment(comment string) string {
	return "/* " + strings.ReplaceAll(comment, "*/", `*\/`) + " */"
}

func boolLiteral(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
