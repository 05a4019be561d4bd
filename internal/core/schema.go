// Package core contains the descriptor types shared by every schemaddl package.
// Descriptors are plain, immutable records describing tables, columns, indexes,
// foreign keys and many-to-many relations, independent of any live database.
// They are produced once at the boundary (see internal/parser/toml) and only
// read afterwards.
package core

import (
	"regexp"
	"strings"
)

// Dialect identifies a supported SQL dialect.
type Dialect string

const (
	DialectMySQL      Dialect = "mysql"
	DialectPostgreSQL Dialect = "postgresql"
	DialectSQLite     Dialect = "sqlite"
)

// SupportedDialects returns a slice of all supported dialect values.
func SupportedDialects() []Dialect {
	return []Dialect{
		DialectMySQL,
		DialectPostgreSQL,
		DialectSQLite,
	}
}

// IsValidDialect reports whether d is a recognized dialect string.
func IsValidDialect(d string) bool {
	for _, supported := range SupportedDialects() {
		if strings.EqualFold(string(supported), d) {
			return true
		}
	}
	return false
}

// TypeMap maps a dialect name to the SQL type used for that dialect.
// The empty key holds the portable fallback type.
type TypeMap map[string]string

// For returns the SQL type for dialect d, falling back to the portable type.
func (m TypeMap) For(d Dialect) string {
	if t := strings.TrimSpace(m[string(d)]); t != "" {
		return t
	}
	return strings.TrimSpace(m[""])
}

// IsEmpty reports whether the map carries no usable type at all.
func (m TypeMap) IsEmpty() bool {
	for _, t := range m {
		if strings.TrimSpace(t) != "" {
			return false
		}
	}
	return true
}

// FieldKind tags the logical kind of a column. Some kinds cannot carry a
// portable literal default.
type FieldKind string

const (
	KindChar     FieldKind = "char"
	KindText     FieldKind = "text"
	KindInt      FieldKind = "int"
	KindBigInt   FieldKind = "bigint"
	KindSmallInt FieldKind = "smallint"
	KindFloat    FieldKind = "float"
	KindDecimal  FieldKind = "decimal"
	KindBool     FieldKind = "bool"
	KindDatetime FieldKind = "datetime"
	KindDate     FieldKind = "date"
	KindTime     FieldKind = "time"
	KindJSON     FieldKind = "json"
	KindUUID     FieldKind = "uuid"
	KindBinary   FieldKind = "binary"
	KindEnum     FieldKind = "enum"
	KindFK       FieldKind = "fk"
)

// SuppressesLiteralDefault reports whether columns of this kind never get a
// literal DEFAULT clause in the schema.
func (k FieldKind) SuppressesLiteralDefault() bool {
	switch k {
	case KindText, KindJSON, KindUUID, KindBinary:
		return true
	default:
		return false
	}
}

// EnumMember is a default value taken from an enumeration. Value holds the
// underlying value stored in the database.
type EnumMember struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// DefaultFunc marks a default computed by the writing application (a callable)
// rather than a literal.
type DefaultFunc struct {
	Name string `json:"name"`
}

var reDefaultFunction = regexp.MustCompile(`^<function.+>$`)

// IsDefaultFunction reports whether v is a function-valued default: either a
// DefaultFunc marker or the textual "<function ...>" form.
func IsDefaultFunction(v any) bool {
	switch d := v.(type) {
	case DefaultFunc, *DefaultFunc:
		return true
	case string:
		return reDefaultFunction.MatchString(d)
	default:
		return false
	}
}

// Column describes one column of a table.
type Column struct {
	Name          string    `json:"name"`
	DBColumn      string    `json:"dbColumn"`
	Types         TypeMap   `json:"types"`
	Nullable      bool      `json:"nullable"`
	Unique        bool      `json:"unique,omitempty"`
	Default       any       `json:"default,omitempty"`
	AutoNowAdd    bool      `json:"autoNowAdd,omitempty"`
	AutoNow       bool      `json:"autoNow,omitempty"`
	Description   string    `json:"description,omitempty"`
	Kind          FieldKind `json:"kind,omitempty"`
	AutoIncrement bool      `json:"autoIncrement,omitempty"`
}

// StorageName returns the column name used in the database.
func (c *Column) StorageName() string {
	if n := strings.TrimSpace(c.DBColumn); n != "" {
		return n
	}
	return strings.TrimSpace(c.Name)
}

// TableRef identifies a table together with its primary key.
type TableRef struct {
	Name     string  `json:"name"`
	DBTable  string  `json:"dbTable"`
	PKColumn string  `json:"pkColumn"`
	PKTypes  TypeMap `json:"pkTypes"`
}

// StorageName returns the table name used in the database.
func (t TableRef) StorageName() string {
	if n := strings.TrimSpace(t.DBTable); n != "" {
		return n
	}
	return strings.TrimSpace(t.Name)
}

// Table is the full description handed to CREATE TABLE generation.
type Table struct {
	Ref         TableRef      `json:"ref"`
	Columns     []*Column     `json:"columns"`
	ForeignKeys []*ForeignKey `json:"foreignKeys,omitempty"`
	Comment     string        `json:"comment,omitempty"`
}

// FindColumn returns the column with the given logical or storage name.
func (t *Table) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if c == nil {
			continue
		}
		if strings.EqualFold(c.Name, name) || strings.EqualFold(c.StorageName(), name) {
			return c
		}
	}
	return nil
}

// Index describes an index over an ordered list of storage column names.
type Index struct {
	Table  TableRef `json:"table"`
	Fields []string `json:"fields"`
	Unique bool     `json:"unique,omitempty"`
}

// ReferentialAction is an ENUM with all possible ON DELETE policies.
type ReferentialAction string

const (
	RefActionNone       ReferentialAction = ""
	RefActionCascade    ReferentialAction = "CASCADE"
	RefActionRestrict   ReferentialAction = "RESTRICT"
	RefActionSetNull    ReferentialAction = "SET NULL"
	RefActionSetDefault ReferentialAction = "SET DEFAULT"
	RefActionNoAction   ReferentialAction = "NO ACTION"
)

// NormalizeReferentialAction upper-cases a policy and maps the empty value
// to CASCADE, the policy used when none is configured.
func NormalizeReferentialAction(a ReferentialAction) ReferentialAction {
	s := strings.Join(strings.Fields(strings.ToUpper(string(a))), " ")
	if s == "" {
		return RefActionCascade
	}
	return ReferentialAction(s)
}

// ForeignKey describes a single-column foreign key.
type ForeignKey struct {
	Table     TableRef          `json:"table"`
	Column    string            `json:"column"`
	RefTable  TableRef          `json:"refTable"`
	RefColumn string            `json:"refColumn,omitempty"`
	OnDelete  ReferentialAction `json:"onDelete,omitempty"`
}

// ReferencedColumn returns RefColumn or, when empty, the referenced table's
// primary-key column.
func (fk *ForeignKey) ReferencedColumn() string {
	if c := strings.TrimSpace(fk.RefColumn); c != "" {
		return c
	}
	return strings.TrimSpace(fk.RefTable.PKColumn)
}

// M2MRelation describes a many-to-many relation materialized through a
// junction table. Through is the natural key of the relation.
type M2MRelation struct {
	Through       string            `json:"through"`
	Name          string            `json:"name"`
	ForwardKey    string            `json:"forwardKey"`
	BackwardKey   string            `json:"backwardKey"`
	ForwardTypes  TypeMap           `json:"forwardTypes,omitempty"`
	BackwardTypes TypeMap           `json:"backwardTypes,omitempty"`
	ForwardTable  TableRef          `json:"forwardTable"`
	BackwardTable TableRef          `json:"backwardTable"`
	OnDelete      ReferentialAction `json:"onDelete,omitempty"`
	Description   string            `json:"description,omitempty"`
}

// ForwardType returns the SQL type of the forward key column for dialect d.
func (r *M2MRelation) ForwardType(d Dialect) string {
	if t := r.ForwardTypes.For(d); t != "" {
		return t
	}
	return r.ForwardTable.PKTypes.For(d)
}

// BackwardType returns the SQL type of the backward key column for dialect d.
func (r *M2MRelation) BackwardType(d Dialect) string {
	if t := r.BackwardTypes.For(d); t != "" {
		return t
	}
	return r.BackwardTable.PKTypes.For(d)
}
