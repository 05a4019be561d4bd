package dialect

import (
	"fmt"
	"strings"

	"schemaddl/internal/core"
)

// SchemaGenerator renders a complete CREATE TABLE statement for a table
// descriptor.
type SchemaGenerator interface {
	CreateTable(t *core.Table) (string, error)
}

// SchemaGeneratorFunc adapts a function to SchemaGenerator.
type SchemaGeneratorFunc func(t *core.Table) (string, error)

// CreateTable implements SchemaGenerator.
func (f SchemaGeneratorFunc) CreateTable(t *core.Table) (string, error) {
	return f(t)
}

// tableGenerator is the built-in SchemaGenerator. It reuses the column
// definition fragment of ADD COLUMN and declares foreign keys inline, so the
// referenced tables must exist first.
type tableGenerator struct {
	g *Generator
}

func (tg *tableGenerator) CreateTable(t *core.Table) (string, error) {
	g := tg.g
	name := t.Ref.StorageName()
	if name == "" {
		return "", fmt.Errorf("%w: table without name", ErrInvalidRequest)
	}

	pk := strings.TrimSpace(t.Ref.PKColumn)
	var lines []string
	for _, c := range t.Columns {
		if c == nil {
			continue
		}
		isPK := pk != "" && strings.EqualFold(c.StorageName(), pk)
		lines = append(lines, "    "+g.columnDefinition(name, c, isPK, false))
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: table %s has no columns", ErrInvalidRequest, name)
	}

	for _, fk := range t.ForeignKeys {
		if fk == nil {
			continue
		}
		lines = append(lines, "    "+g.foreignKeyConstraint(*fk))
	}

	extra := ""
	if g.spec.TableExtra != nil {
		extra = g.spec.TableExtra(name)
	}
	comment := ""
	if desc := strings.TrimSpace(t.Comment); desc != "" && g.spec.TableComment != nil {
		comment = g.spec.TableComment(name, desc)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)%s%s",
		g.quote(name), strings.Join(lines, ",\n"), extra, comment), nil
}

func (g *Generator) foreignKeyConstraint(fk core.ForeignKey) string {
	return fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
		g.quote(g.foreignKeyName(fk)),
		g.quote(fk.Column),
		g.quote(fk.RefTable.StorageName()),
		g.quote(fk.ReferencedColumn()),
		core.NormalizeReferentialAction(fk.OnDelete),
	)
}
