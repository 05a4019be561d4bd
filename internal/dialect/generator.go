package dialect

import (
	"fmt"
	"strings"

	"schemaddl/internal/core"
	"schemaddl/internal/naming"
)

// Generator renders change requests for one dialect Spec. It is stateless
// after construction and safe for concurrent use.
type Generator struct {
	spec   Spec
	names  naming.Service
	schema SchemaGenerator
}

// NewGenerator returns a Generator for spec. A nil names uses naming.Hashed
// with its default length bound.
func NewGenerator(spec Spec, names naming.Service) *Generator {
	if names == nil {
		names = naming.NewHashed(0)
	}
	g := &Generator{spec: spec.withDefaults(), names: names}
	g.schema = &tableGenerator{g: g}
	return g
}

// WithSchemaGenerator returns a copy of g that delegates CREATE TABLE to s.
func (g *Generator) WithSchemaGenerator(s SchemaGenerator) *Generator {
	out := *g
	if s == nil {
		s = &tableGenerator{g: &out}
	}
	out.schema = s
	return &out
}

// Dialect returns the dialect name.
func (g *Generator) Dialect() core.Dialect {
	return g.spec.Name
}

// Spec returns the dialect record the generator renders.
func (g *Generator) Spec() Spec {
	return g.spec
}

// Supports reports whether the dialect can express op.
func (g *Generator) Supports(op core.Operation) bool {
	return g.spec.Supports(op)
}

// Generate renders a single change request into one DDL statement without a
// trailing terminator.
func (g *Generator) Generate(req core.ChangeRequest) (string, error) {
	switch r := req.(type) {
	case core.CreateTable:
		return g.CreateTable(r.Table)
	case core.DropTable:
		return g.DropTable(r.Table)
	case core.AddColumn:
		return g.AddColumn(r.Table, r.Column, r.PrimaryKey)
	case core.DropColumn:
		return g.DropColumn(r.Table, r.Column)
	case core.ModifyColumn:
		return g.ModifyColumn(r.Table, r.Column, r.PrimaryKey)
	case core.RenameColumn:
		return g.RenameColumn(r.Table, r.Old, r.New)
	case core.ChangeColumn:
		return g.ChangeColumn(r.Table, r.Old, r.New, r.NewType)
	case core.AddIndex:
		return g.AddIndex(r.Index)
	case core.DropIndex:
		return g.DropIndex(r.Index)
	case core.DropIndexByName:
		return g.DropIndexByName(r.Table, r.Name)
	case core.AddForeignKey:
		return g.AddForeignKey(r.ForeignKey)
	case core.DropForeignKey:
		return g.DropForeignKey(r.ForeignKey)
	case core.CreateM2MTable:
		return g.CreateM2MTable(r.Relation)
	case core.DropM2MTable:
		return g.DropM2MTable(r.Table)
	case core.AlterColumnDefault:
		return g.AlterColumnDefault(r.Table, r.Column)
	case core.AlterColumnNullability:
		return g.AlterColumnNullability(r.Table, r.Column)
	case core.SetColumnComment:
		return g.SetColumnComment(r.Table, r.Column)
	case core.RenameTable:
		return g.RenameTable(r.Old, r.New)
	case nil:
		return "", fmt.Errorf("%w: nil request", ErrInvalidRequest)
	default:
		return "", fmt.Errorf("%w: %T", ErrInvalidRequest, req)
	}
}

// check is the single capability gate every operation passes through.
func (g *Generator) check(op core.Operation) error {
	if g.spec.Unsupported.Has(op) {
		return &UnsupportedOperationError{Operation: op, Dialect: g.spec.Name}
	}
	return nil
}

// statement renders the template of op. A dialect without a template for op
// cannot express it.
func (g *Generator) statement(op core.Operation, args ...string) (string, error) {
	if err := g.check(op); err != nil {
		return "", err
	}
	tmpl, ok := g.spec.Templates[op]
	if !ok || strings.TrimSpace(tmpl) == "" {
		return "", &UnsupportedOperationError{Operation: op, Dialect: g.spec.Name}
	}
	return render(tmpl, args...), nil
}

func (g *Generator) quote(name string) string {
	return g.spec.QuoteIdentifier(name)
}

// CreateTable delegates to the schema generator.
func (g *Generator) CreateTable(t *core.Table) (string, error) {
	if err := g.check(core.OpCreateTable); err != nil {
		return "", err
	}
	if t == nil {
		return "", fmt.Errorf("%w: create_table without table", ErrInvalidRequest)
	}
	sql, err := g.schema.CreateTable(t)
	if err != nil {
		return "", fmt.Errorf("create table %s: %w", t.Ref.StorageName(), err)
	}
	return strings.TrimRight(strings.TrimSpace(sql), ";"), nil
}

func (g *Generator) DropTable(table string) (string, error) {
	return g.statement(core.OpDropTable, "table", g.quote(table))
}

func (g *Generator) AddColumn(table core.TableRef, c *core.Column, primaryKey bool) (string, error) {
	if c == nil {
		return "", fmt.Errorf("%w: add_column without column", ErrInvalidRequest)
	}
	return g.columnStatement(core.OpAddColumn, table, c, primaryKey, false)
}

func (g *Generator) DropColumn(table core.TableRef, column string) (string, error) {
	return g.statement(core.OpDropColumn,
		"table", g.quote(table.StorageName()),
		"column", g.quote(column),
	)
}

// ModifyColumn re-issues the full column definition. UNIQUE is left out since
// the unique index already exists. The column needs a type for the dialect.
func (g *Generator) ModifyColumn(table core.TableRef, c *core.Column, primaryKey bool) (string, error) {
	if err := g.check(core.OpModifyColumn); err != nil {
		return "", err
	}
	if c == nil {
		return "", fmt.Errorf("%w: modify_column without column", ErrInvalidRequest)
	}
	if c.Types.For(g.spec.Name) == "" {
		return "", fmt.Errorf("%w: modify_column of %q has no %s type", ErrInvalidRequest, c.Name, g.spec.Name)
	}
	return g.columnStatement(core.OpModifyColumn, table, c, primaryKey, true)
}

func (g *Generator) columnStatement(op core.Operation, table core.TableRef, c *core.Column, primaryKey, modify bool) (string, error) {
	tableName := table.StorageName()
	return g.statement(op,
		"table", g.quote(tableName),
		"column_def", g.columnDefinition(tableName, c, primaryKey, modify),
		"column", g.quote(c.StorageName()),
		"type", c.Types.For(g.spec.Name),
	)
}

func (g *Generator) RenameColumn(table core.TableRef, oldName, newName string) (string, error) {
	return g.statement(core.OpRenameColumn,
		"table", g.quote(table.StorageName()),
		"old", g.quote(oldName),
		"new", g.quote(newName),
	)
}

// ChangeColumn renames and retypes in one statement. Names are passed through
// as given.
func (g *Generator) ChangeColumn(table core.TableRef, oldName, newName, newType string) (string, error) {
	return g.statement(core.OpChangeColumn,
		"table", g.quote(table.StorageName()),
		"old", oldName,
		"new", newName,
		"new_type", newType,
	)
}

func (g *Generator) indexName(idx core.Index) string {
	return g.names.IndexName(naming.IndexPrefix(idx.Unique), idx.Table.StorageName(), idx.Fields)
}

func (g *Generator) AddIndex(idx core.Index) (string, error) {
	if len(idx.Fields) == 0 {
		return "", fmt.Errorf("%w: add_index without fields", ErrInvalidRequest)
	}
	cols := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		cols = append(cols, g.quote(f))
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return g.statement(core.OpAddIndex,
		"table", g.quote(idx.Table.StorageName()),
		"name", g.quote(g.indexName(idx)),
		"unique", unique,
		"columns", strings.Join(cols, ", "),
	)
}

func (g *Generator) DropIndex(idx core.Index) (string, error) {
	return g.statement(core.OpDropIndex,
		"table", g.quote(idx.Table.StorageName()),
		"name", g.quote(g.indexName(idx)),
	)
}

func (g *Generator) DropIndexByName(table core.TableRef, name string) (string, error) {
	return g.statement(core.OpDropIndexByName,
		"table", g.quote(table.StorageName()),
		"name", g.quote(name),
	)
}

func (g *Generator) foreignKeyName(fk core.ForeignKey) string {
	return g.names.ForeignKeyName(fk.Table.StorageName(), fk.Column, fk.RefTable.StorageName(), fk.ReferencedColumn())
}

func (g *Generator) AddForeignKey(fk core.ForeignKey) (string, error) {
	return g.statement(core.OpAddForeignKey,
		"table", g.quote(fk.Table.StorageName()),
		"fk", g.quote(g.foreignKeyName(fk)),
		"column", g.quote(fk.Column),
		"ref_table", g.quote(fk.RefTable.StorageName()),
		"ref_column", g.quote(fk.ReferencedColumn()),
		"policy", string(core.NormalizeReferentialAction(fk.OnDelete)),
	)
}

func (g *Generator) DropForeignKey(fk core.ForeignKey) (string, error) {
	return g.statement(core.OpDropForeignKey,
		"table", g.quote(fk.Table.StorageName()),
		"fk", g.quote(g.foreignKeyName(fk)),
	)
}

// CreateM2MTable renders the junction table of rel. The backward side always
// cascades; the forward side uses the relation's policy.
func (g *Generator) CreateM2MTable(rel *core.M2MRelation) (string, error) {
	if rel == nil {
		return "", fmt.Errorf("%w: create_m2m_table without relation", ErrInvalidRequest)
	}
	if err := g.check(core.OpCreateM2MTable); err != nil {
		return "", err
	}
	through := strings.TrimSpace(rel.Through)
	if through == "" {
		return "", fmt.Errorf("%w: m2m relation %q has no through table", ErrInvalidRequest, rel.Name)
	}

	extra := ""
	if g.spec.TableExtra != nil {
		extra = g.spec.TableExtra(through)
	}
	comment := ""
	if desc := strings.TrimSpace(rel.Description); desc != "" && g.spec.TableComment != nil {
		comment = g.spec.TableComment(through, desc)
	}

	return g.statement(core.OpCreateM2MTable,
		"through", g.quote(through),
		"backward_key", g.quote(rel.BackwardKey),
		"backward_type", rel.BackwardType(g.spec.Name),
		"backward_table", g.quote(rel.BackwardTable.StorageName()),
		"backward_field", g.quote(rel.BackwardTable.PKColumn),
		"forward_key", g.quote(rel.ForwardKey),
		"forward_type", rel.ForwardType(g.spec.Name),
		"forward_table", g.quote(rel.ForwardTable.StorageName()),
		"forward_field", g.quote(rel.ForwardTable.PKColumn),
		"policy", string(core.NormalizeReferentialAction(rel.OnDelete)),
		"extra", extra,
		"comment", comment,
	)
}

func (g *Generator) DropM2MTable(table string) (string, error) {
	return g.statement(core.OpDropM2MTable, "table", g.quote(table))
}

// AlterColumnDefault emits SET DEFAULT for a resolved expression and DROP
// DEFAULT otherwise, deferred defaults included.
func (g *Generator) AlterColumnDefault(table core.TableRef, c *core.Column) (string, error) {
	if err := g.check(core.OpAlterColumnDefault); err != nil {
		return "", err
	}
	if c == nil {
		return "", fmt.Errorf("%w: alter_column_default without column", ErrInvalidRequest)
	}
	action := "DROP DEFAULT"
	if d := g.spec.ResolveDefault(c); d.State == DefaultExpression {
		action = "SET DEFAULT " + d.Expr
	}
	return g.statement(core.OpAlterColumnDefault,
		"table", g.quote(table.StorageName()),
		"column", g.quote(c.StorageName()),
		"default", action,
	)
}

// AlterColumnNullability uses the dialect's dedicated template when it has
// one and re-issues ModifyColumn otherwise.
func (g *Generator) AlterColumnNullability(table core.TableRef, c *core.Column) (string, error) {
	if err := g.check(core.OpAlterColumnNullability); err != nil {
		return "", err
	}
	if c == nil {
		return "", fmt.Errorf("%w: alter_column_nullability without column", ErrInvalidRequest)
	}
	if _, ok := g.spec.Templates[core.OpAlterColumnNullability]; !ok {
		return g.ModifyColumn(table, c, false)
	}
	nullability := "SET NOT NULL"
	if c.Nullable {
		nullability = "DROP NOT NULL"
	}
	return g.statement(core.OpAlterColumnNullability,
		"table", g.quote(table.StorageName()),
		"column", g.quote(c.StorageName()),
		"nullability", nullability,
	)
}

// SetColumnComment uses the dialect's dedicated template when it has one and
// re-issues ModifyColumn otherwise.
func (g *Generator) SetColumnComment(table core.TableRef, c *core.Column) (string, error) {
	if err := g.check(core.OpSetColumnComment); err != nil {
		return "", err
	}
	if c == nil {
		return "", fmt.Errorf("%w: set_column_comment without column", ErrInvalidRequest)
	}
	if _, ok := g.spec.Templates[core.OpSetColumnComment]; !ok {
		return g.ModifyColumn(table, c, false)
	}
	comment := "NULL"
	if desc := strings.TrimSpace(c.Description); desc != "" {
		comment = g.spec.QuoteString(desc)
	}
	return g.statement(core.OpSetColumnComment,
		"table", g.quote(table.StorageName()),
		"column", g.quote(c.StorageName()),
		"comment", comment,
	)
}

func (g *Generator) RenameTable(oldName, newName string) (string, error) {
	return g.statement(core.OpRenameTable,
		"old", g.quote(oldName),
		"new", g.quote(newName),
	)
}

// columnDefinition builds the fragment shared by ADD, MODIFY and CREATE TABLE.
func (g *Generator) columnDefinition(table string, c *core.Column, primaryKey, modify bool) string {
	var parts []string

	parts = append(parts, g.quote(c.StorageName()))
	if typ := c.Types.For(g.spec.Name); typ != "" {
		parts = append(parts, typ)
	}
	parts = g.addNullability(parts, c)
	if c.Unique && !modify {
		parts = append(parts, "UNIQUE")
	}
	parts = g.addPrimaryKey(parts, c, primaryKey)
	if clause := g.spec.ResolveDefault(c).Clause(); clause != "" {
		parts = append(parts, clause)
	}
	parts = g.addColumnComment(parts, table, c)

	return strings.Join(parts, " ")
}

func (g *Generator) addNullability(parts []string, c *core.Column) []string {
	if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	return parts
}

func (g *Generator) addPrimaryKey(parts []string, c *core.Column, primaryKey bool) []string {
	if !primaryKey {
		return parts
	}
	parts = append(parts, "PRIMARY KEY")
	if c.AutoIncrement && g.spec.AutoIncrement != "" {
		parts = append(parts, g.spec.AutoIncrement)
	}
	return parts
}

func (g *Generator) addColumnComment(parts []string, table string, c *core.Column) []string {
	desc := strings.TrimSpace(c.Description)
	if desc == "" || g.spec.ColumnComment == nil {
		return parts
	}
	if comment := strings.TrimSpace(g.spec.ColumnComment(table, c.StorageName(), desc)); comment != "" {
		parts = append(parts, comment)
	}
	return parts
}
