// Package postgres provides the PostgreSQL dialect. PostgreSQL has dedicated
// ALTER COLUMN forms for type, nullability and comments, and standalone index
// statements.
package postgres

import (
	"strings"

	"github.com/lib/pq"

	"schemaddl/internal/core"
	"schemaddl/internal/dialect"
)

func init() {
	dialect.Register(core.DialectPostgreSQL, NewSpec)
}

// NewSpec returns the PostgreSQL dialect record. There is no combined
// rename-and-retype statement, so change_column is unsupported. modify_column
// only changes the type; nullability, default and comment have their own
// operations. Junction tables get no comment since there is no table comment
// template.
func NewSpec(dialect.Options) dialect.Spec {
	t := dialect.BaseTemplates()
	t[core.OpModifyColumn] = "ALTER TABLE {table} ALTER COLUMN {column} TYPE {type} USING {column}::{type}"
	t[core.OpAlterColumnNullability] = "ALTER TABLE {table} ALTER COLUMN {column} {nullability}"
	t[core.OpSetColumnComment] = "COMMENT ON COLUMN {table}.{column} IS {comment}"
	t[core.OpAddIndex] = "CREATE {unique}INDEX IF NOT EXISTS {name} ON {table} ({columns})"
	t[core.OpDropIndex] = "DROP INDEX IF EXISTS {name}"
	t[core.OpDropIndexByName] = "DROP INDEX IF EXISTS {name}"
	t[core.OpDropForeignKey] = "ALTER TABLE {table} DROP CONSTRAINT IF EXISTS {fk}"
	delete(t, core.OpChangeColumn)

	return dialect.Spec{
		Name:             core.DialectPostgreSQL,
		Templates:        t,
		Unsupported:      dialect.NewOperationSet(core.OpChangeColumn),
		QuoteIdentifier:  QuoteIdentifier,
		QuoteString:      QuoteString,
		CurrentTimestamp: "CURRENT_TIMESTAMP",
	}
}

// QuoteIdentifier quotes name with double quotes.
func QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(strings.TrimSpace(name))
}

// QuoteString quotes a literal, switching to the E'' form for backslashes.
func QuoteString(value string) string {
	return strings.TrimSpace(pq.QuoteLiteral(value))
}
