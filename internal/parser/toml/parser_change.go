package toml

import (
	"errors"
	"fmt"
	"strings"

	"schemaddl/internal/core"
)

// tomlChange maps [[changes]]. Kind names the operation; only the fields
// that operation needs are read.
type tomlChange struct {
	Kind string `toml:"kind"`

	Table      string `toml:"table"`
	PrimaryKey bool   `toml:"primary_key"`
	Comment    string `toml:"comment"`

	Column      *tomlColumn      `toml:"column"`
	Columns     []tomlColumn     `toml:"columns"`
	ForeignKeys []tomlForeignKey `toml:"foreign_keys"`

	// ColumnName names an existing column for drop_column and foreign keys.
	ColumnName string `toml:"column_name"`

	Old     string `toml:"old"`
	New     string `toml:"new"`
	NewType string `toml:"new_type"`

	Fields []string `toml:"fields"`
	Unique bool     `toml:"unique"`
	Name   string   `toml:"name"`

	RefTable  string `toml:"ref_table"`
	RefColumn string `toml:"ref_column"`
	OnDelete  string `toml:"on_delete"`

	Through  string        `toml:"through"`
	Relation *tomlRelation `toml:"relation"`
}

// tomlForeignKey maps [[changes.foreign_keys]] of a create_table change.
type tomlForeignKey struct {
	Column    string `toml:"column"`
	RefTable  string `toml:"ref_table"`
	RefColumn string `toml:"ref_column"`
	OnDelete  string `toml:"on_delete"`
}

func (c *converter) convertChange(tc *tomlChange) (core.ChangeRequest, error) {
	if strings.TrimSpace(tc.Kind) == "" {
		return nil, errors.New("missing kind")
	}
	op, err := core.ParseOperation(tc.Kind)
	if err != nil {
		return nil, err
	}

	switch op {
	case core.OpCreateTable:
		return c.convertCreateTable(tc)
	case core.OpDropTable:
		ref, err := c.tables.lookup(tc.Table)
		if err != nil {
			return nil, err
		}
		return core.DropTable{Table: ref.StorageName()}, nil
	case core.OpAddColumn, core.OpModifyColumn, core.OpAlterColumnDefault,
		core.OpAlterColumnNullability, core.OpSetColumnComment:
		return c.convertColumnChange(op, tc)
	case core.OpDropColumn:
		ref, err := c.tables.lookup(tc.Table)
		if err != nil {
			return nil, err
		}
		col, err := required("column_name", tc.ColumnName)
		if err != nil {
			return nil, err
		}
		return core.DropColumn{Table: ref, Column: col}, nil
	case core.OpRenameColumn, core.OpChangeColumn:
		return c.convertRename(op, tc)
	case core.OpAddIndex, core.OpDropIndex:
		idx, err := c.convertIndex(tc)
		if err != nil {
			return nil, err
		}
		if op == core.OpAddIndex {
			return core.AddIndex{Index: idx}, nil
		}
		return core.DropIndex{Index: idx}, nil
	case core.OpDropIndexByName:
		ref, err := c.tables.lookup(tc.Table)
		if err != nil {
			return nil, err
		}
		name, err := required("name", tc.Name)
		if err != nil {
			return nil, err
		}
		return core.DropIndexByName{Table: ref, Name: name}, nil
	case core.OpAddForeignKey, core.OpDropForeignKey:
		fk, err := c.convertForeignKey(tc.Table, tomlForeignKey{
			Column:    tc.ColumnName,
			RefTable:  tc.RefTable,
			RefColumn: tc.RefColumn,
			OnDelete:  tc.OnDelete,
		})
		if err != nil {
			return nil, err
		}
		if op == core.OpAddForeignKey {
			return core.AddForeignKey{ForeignKey: fk}, nil
		}
		return core.DropForeignKey{ForeignKey: fk}, nil
	case core.OpCreateM2MTable:
		if tc.Relation == nil {
			return nil, errors.New("missing relation")
		}
		rel, err := c.convertRelation(tc.Relation)
		if err != nil {
			return nil, fmt.Errorf("relation: %w", err)
		}
		if rel.ForwardTable.Name == "" || rel.BackwardTable.Name == "" {
			return nil, errors.New("relation: missing forward_table or backward_table")
		}
		return core.CreateM2MTable{Relation: rel}, nil
	case core.OpDropM2MTable:
		through, err := required("through", tc.Through)
		if err != nil {
			return nil, err
		}
		return core.DropM2MTable{Table: through}, nil
	case core.OpRenameTable:
		oldName, err := required("old", tc.Old)
		if err != nil {
			return nil, err
		}
		newName, err := required("new", tc.New)
		if err != nil {
			return nil, err
		}
		return core.RenameTable{Old: oldName, New: newName}, nil
	default:
		return nil, fmt.Errorf("unhandled kind %q", tc.Kind)
	}
}

func (c *converter) convertCreateTable(tc *tomlChange) (core.ChangeRequest, error) {
	ref, err := c.tables.lookup(tc.Table)
	if err != nil {
		return nil, err
	}
	if len(tc.Columns) == 0 {
		return nil, errors.New("missing columns")
	}
	t := &core.Table{
		Ref:     ref,
		Columns: make([]*core.Column, 0, len(tc.Columns)),
		Comment: tc.Comment,
	}
	for i := range tc.Columns {
		col, err := convertColumn(&tc.Columns[i])
		if err != nil {
			return nil, fmt.Errorf("columns[%d]: %w", i, err)
		}
		t.Columns = append(t.Columns, col)
	}
	for i, tfk := range tc.ForeignKeys {
		fk, err := c.convertForeignKey(tc.Table, tfk)
		if err != nil {
			return nil, fmt.Errorf("foreign_keys[%d]: %w", i, err)
		}
		if t.FindColumn(fk.Column) == nil {
			return nil, fmt.Errorf("foreign_keys[%d]: unknown column %q", i, fk.Column)
		}
		t.ForeignKeys = append(t.ForeignKeys, &fk)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return core.CreateTable{Table: t}, nil
}

func (c *converter) convertColumnChange(op core.Operation, tc *tomlChange) (core.ChangeRequest, error) {
	ref, err := c.tables.lookup(tc.Table)
	if err != nil {
		return nil, err
	}
	col, err := convertColumn(tc.Column)
	if err != nil {
		return nil, err
	}

	switch op {
	case core.OpAddColumn:
		return core.AddColumn{Table: ref, Column: col, PrimaryKey: tc.PrimaryKey}, nil
	case core.OpModifyColumn:
		return core.ModifyColumn{Table: ref, Column: col, PrimaryKey: tc.PrimaryKey}, nil
	case core.OpAlterColumnDefault:
		return core.AlterColumnDefault{Table: ref, Column: col}, nil
	case core.OpAlterColumnNullability:
		return core.AlterColumnNullability{Table: ref, Column: col}, nil
	default:
		return core.SetColumnComment{Table: ref, Column: col}, nil
	}
}

func (c *converter) convertRename(op core.Operation, tc *tomlChange) (core.ChangeRequest, error) {
	ref, err := c.tables.lookup(tc.Table)
	if err != nil {
		return nil, err
	}
	oldName, err := required("old", tc.Old)
	if err != nil {
		return nil, err
	}
	newName, err := required("new", tc.New)
	if err != nil {
		return nil, err
	}
	if op == core.OpRenameColumn {
		return core.RenameColumn{Table: ref, Old: oldName, New: newName}, nil
	}
	newType, err := required("new_type", tc.NewType)
	if err != nil {
		return nil, err
	}
	return core.ChangeColumn{Table: ref, Old: oldName, New: newName, NewType: newType}, nil
}

func (c *converter) convertIndex(tc *tomlChange) (core.Index, error) {
	ref, err := c.tables.lookup(tc.Table)
	if err != nil {
		return core.Index{}, err
	}
	fields := make([]string, 0, len(tc.Fields))
	for _, f := range tc.Fields {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return core.Index{}, errors.New("missing fields")
	}
	return core.Index{Table: ref, Fields: fields, Unique: tc.Unique}, nil
}

func (c *converter) convertForeignKey(table string, tfk tomlForeignKey) (core.ForeignKey, error) {
	ref, err := c.tables.lookup(table)
	if err != nil {
		return core.ForeignKey{}, err
	}
	col, err := required("column", tfk.Column)
	if err != nil {
		return core.ForeignKey{}, err
	}
	refTable, err := c.tables.lookup(tfk.RefTable)
	if err != nil {
		return core.ForeignKey{}, fmt.Errorf("ref_table: %w", err)
	}
	onDelete, err := referentialAction(tfk.OnDelete)
	if err != nil {
		return core.ForeignKey{}, err
	}
	return core.ForeignKey{
		Table:     ref,
		Column:    col,
		RefTable:  refTable,
		RefColumn: strings.TrimSpace(tfk.RefColumn),
		OnDelete:  onDelete,
	}, nil
}

// referentialAction validates an ON DELETE policy. Empty means CASCADE.
func referentialAction(raw string) (core.ReferentialAction, error) {
	a := core.NormalizeReferentialAction(core.ReferentialAction(raw))
	switch a {
	case core.RefActionCascade, core.RefActionRestrict, core.RefActionSetNull,
		core.RefActionSetDefault, core.RefActionNoAction:
		return a, nil
	default:
		return "", fmt.Errorf("invalid on_delete %q", raw)
	}
}

func required(field, value string) (string, error) {
	if v := strings.TrimSpace(value); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("missing %s", field)
}
