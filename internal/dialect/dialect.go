// Package dialect turns structural change requests into DDL text. Every SQL
// dialect is a data record (Spec): a template per operation plus the set of
// operations it cannot express. A single Generator renders any Spec, so the
// capability check lives in one place instead of being repeated per dialect.
package dialect

import (
	"fmt"
	"slices"
	"strings"

	"schemaddl/internal/core"
	"schemaddl/internal/naming"
)

// OperationSet is a bitset of operations.
type OperationSet uint32

// NewOperationSet returns a set holding ops.
func NewOperationSet(ops ...core.Operation) OperationSet {
	var s OperationSet
	for _, op := range ops {
		s |= 1 << op
	}
	return s
}

// Has reports whether op is in the set.
func (s OperationSet) Has(op core.Operation) bool {
	return s&(1<<op) != 0
}

// Operations lists the members of the set in declaration order.
func (s OperationSet) Operations() []core.Operation {
	var out []core.Operation
	for _, op := range core.Operations() {
		if s.Has(op) {
			out = append(out, op)
		}
	}
	return out
}

// Templates maps an operation to its statement template. Placeholders are
// written as {name}; identifiers arrive already quoted for the dialect.
type Templates map[core.Operation]string

// Clone returns an independent copy, so variants can override entries of
// BaseTemplates safely.
func (t Templates) Clone() Templates {
	out := make(Templates, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// BaseTemplates returns the generic template set most dialects start from.
// Nullability and comment changes have no template here, so they fall back
// to a MODIFY COLUMN statement.
func BaseTemplates() Templates {
	return Templates{
		core.OpDropTable:          "DROP TABLE IF EXISTS {table}",
		core.OpAddColumn:          "ALTER TABLE {table} ADD {column_def}",
		core.OpDropColumn:         "ALTER TABLE {table} DROP COLUMN {column}",
		core.OpModifyColumn:       "ALTER TABLE {table} MODIFY COLUMN {column_def}",
		core.OpRenameColumn:       "ALTER TABLE {table} RENAME COLUMN {old} TO {new}",
		core.OpChangeColumn:       "ALTER TABLE {table} CHANGE {old} {new} {new_type}",
		core.OpAlterColumnDefault: "ALTER TABLE {table} ALTER COLUMN {column} {default}",
		core.OpAddIndex:           "ALTER TABLE {table} ADD {unique}INDEX {name} ({columns})",
		core.OpDropIndex:          "ALTER TABLE {table} DROP INDEX {name}",
		core.OpDropIndexByName:    "ALTER TABLE {table} DROP INDEX {name}",
		core.OpAddForeignKey:      "ALTER TABLE {table} ADD CONSTRAINT {fk} FOREIGN KEY ({column}) REFERENCES {ref_table} ({ref_column}) ON DELETE {policy}",
		core.OpDropForeignKey:     "ALTER TABLE {table} DROP FOREIGN KEY {fk}",
		core.OpCreateM2MTable:     m2mTemplate,
		core.OpDropM2MTable:       "DROP TABLE IF EXISTS {table}",
		core.OpRenameTable:        "ALTER TABLE {old} RENAME TO {new}",
	}
}

const m2mTemplate = "CREATE TABLE {through} (\n" +
	"    {backward_key} {backward_type} NOT NULL REFERENCES {backward_table} ({backward_field}) ON DELETE CASCADE,\n" +
	"    {forward_key} {forward_type} NOT NULL REFERENCES {forward_table} ({forward_field}) ON DELETE {policy}\n" +
	"){extra}{comment}"

// Spec describes one SQL dialect.
type Spec struct {
	Name      core.Dialect
	Templates Templates

	// Unsupported lists operations the dialect cannot express.
	Unsupported OperationSet

	QuoteIdentifier func(name string) string
	QuoteString     func(value string) string
	BoolLiteral     func(v bool) string

	// CurrentTimestamp is the default expression of auto-insert timestamps.
	CurrentTimestamp string
	// OnUpdateTimestamp is appended as ON UPDATE for auto-update timestamps.
	// Empty when the dialect has no such clause.
	OnUpdateTimestamp string
	// AutoIncrement is the keyword following PRIMARY KEY for generated keys.
	AutoIncrement string

	// TableExtra returns the table options appended after CREATE TABLE (...).
	TableExtra func(table string) string
	// TableComment and ColumnComment return inline comment fragments. A nil
	// func or an empty result means the dialect has no inline comment syntax.
	TableComment  func(table, comment string) string
	ColumnComment func(table, column, comment string) string
}

// Supports reports whether the dialect can express op.
func (s *Spec) Supports(op core.Operation) bool {
	return !s.Unsupported.Has(op)
}

func (s Spec) withDefaults() Spec {
	if s.Templates == nil {
		s.Templates = BaseTemplates()
	}
	if s.QuoteIdentifier == nil {
		s.QuoteIdentifier = QuoteANSI
	}
	if s.QuoteString == nil {
		s.QuoteString = QuoteANSIString
	}
	if s.BoolLiteral == nil {
		s.BoolLiteral = func(v bool) string {
			if v {
				return "TRUE"
			}
			return "FALSE"
		}
	}
	return s
}

// QuoteANSI quotes an identifier with double quotes, doubling embedded quotes.
func QuoteANSI(name string) string {
	name = strings.TrimSpace(name)
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteANSIString quotes a string literal with single quotes, doubling
// embedded quotes.
func QuoteANSIString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// Options are passed to dialect constructors.
type Options struct {
	// Charset is used by dialects that append a character set to new tables.
	Charset string
	// Names generates index and foreign-key names. Nil uses naming.Hashed.
	Names naming.Service
}

// Constructor builds the Spec of a dialect.
type Constructor func(opts Options) Spec

var registry = map[core.Dialect]Constructor{}

// Register creates a new registry entry for the specified dialect.
func Register(d core.Dialect, ctor Constructor) {
	registry[d] = ctor
}

// Lookup returns the Spec for the specified dialect from the registry.
func Lookup(d core.Dialect, opts Options) (Spec, error) {
	ctor, ok := registry[core.Dialect(strings.ToLower(strings.TrimSpace(string(d))))]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownDialect, d)
	}
	return ctor(opts), nil
}

// New returns a Generator for the specified dialect.
func New(d core.Dialect, opts Options) (*Generator, error) {
	spec, err := Lookup(d, opts)
	if err != nil {
		return nil, err
	}
	return NewGenerator(spec, opts.Names), nil
}

// Registered returns the registered dialects in sorted order.
func Registered() []core.Dialect {
	out := make([]core.Dialect, 0, len(registry))
	for d := range registry {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}
