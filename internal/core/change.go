package core

import (
	"fmt"
	"strings"
)

// Operation enumerates every structural change a dialect can render.
type Operation uint8

const (
	OpCreateTable Operation = iota
	OpDropTable
	OpAddColumn
	OpDropColumn
	OpModifyColumn
	OpRenameColumn
	OpChangeColumn
	OpAddIndex
	OpDropIndex
	OpDropIndexByName
	OpAddForeignKey
	OpDropForeignKey
	OpCreateM2MTable
	OpDropM2MTable
	OpAlterColumnDefault
	OpAlterColumnNullability
	OpSetColumnComment
	OpRenameTable

	opCount
)

var operationNames = [...]string{
	OpCreateTable:            "create_table",
	OpDropTable:              "drop_table",
	OpAddColumn:              "add_column",
	OpDropColumn:             "drop_column",
	OpModifyColumn:           "modify_column",
	OpRenameColumn:           "rename_column",
	OpChangeColumn:           "change_column",
	OpAddIndex:               "add_index",
	OpDropIndex:              "drop_index",
	OpDropIndexByName:        "drop_index_by_name",
	OpAddForeignKey:          "add_foreign_key",
	OpDropForeignKey:         "drop_foreign_key",
	OpCreateM2MTable:         "create_m2m_table",
	OpDropM2MTable:           "drop_m2m_table",
	OpAlterColumnDefault:     "alter_column_default",
	OpAlterColumnNullability: "alter_column_nullability",
	OpSetColumnComment:       "set_column_comment",
	OpRenameTable:            "rename_table",
}

func (o Operation) String() string {
	if o < opCount {
		return operationNames[o]
	}
	return fmt.Sprintf("operation(%d)", uint8(o))
}

// Operations returns every operation in declaration order.
func Operations() []Operation {
	ops := make([]Operation, 0, opCount)
	for o := Operation(0); o < opCount; o++ {
		ops = append(ops, o)
	}
	return ops
}

// ParseOperation maps an operation name such as "add_column" back to its value.
func ParseOperation(name string) (Operation, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for o := Operation(0); o < opCount; o++ {
		if operationNames[o] == name {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", name)
}

// ChangeRequest is a closed set of structural change requests. Every
// implementation lives in this file.
type ChangeRequest interface {
	Op() Operation
	sealed()
}

type CreateTable struct {
	Table *Table
}

type DropTable struct {
	Table string
}

type AddColumn struct {
	Table      TableRef
	Column     *Column
	PrimaryKey bool
}

type DropColumn struct {
	Table  TableRef
	Column string
}

type ModifyColumn struct {
	Table      TableRef
	Column     *Column
	PrimaryKey bool
}

type RenameColumn struct {
	Table TableRef
	Old   string
	New   string
}

// ChangeColumn renames and retypes a column in one statement.
type ChangeColumn struct {
	Table   TableRef
	Old     string
	New     string
	NewType string
}

type AddIndex struct {
	Index Index
}

type DropIndex struct {
	Index Index
}

type DropIndexByName struct {
	Table TableRef
	Name  string
}

type AddForeignKey struct {
	ForeignKey ForeignKey
}

type DropForeignKey struct {
	ForeignKey ForeignKey
}

type CreateM2MTable struct {
	Relation *M2MRelation
}

type DropM2MTable struct {
	Table string
}

type AlterColumnDefault struct {
	Table  TableRef
	Column *Column
}

type AlterColumnNullability struct {
	Table  TableRef
	Column *Column
}

type SetColumnComment struct {
	Table  TableRef
	Column *Column
}

type RenameTable struct {
	Old string
	New string
}

func (CreateTable) Op() Operation            { return OpCreateTable }
func (DropTable) Op() Operation              { return OpDropTable }
func (AddColumn) Op() Operation              { return OpAddColumn }
func (DropColumn) Op() Operation             { return OpDropColumn }
func (ModifyColumn) Op() Operation           { return OpModifyColumn }
func (RenameColumn) Op() Operation           { return OpRenameColumn }
func (ChangeColumn) Op() Operation           { return OpChangeColumn }
func (AddIndex) Op() Operation               { return OpAddIndex }
func (DropIndex) Op() Operation              { return OpDropIndex }
func (DropIndexByName) Op() Operation        { return OpDropIndexByName }
func (AddForeignKey) Op() Operation          { return OpAddForeignKey }
func (DropForeignKey) Op() Operation         { return OpDropForeignKey }
func (CreateM2MTable) Op() Operation         { return OpCreateM2MTable }
func (DropM2MTable) Op() Operation           { return OpDropM2MTable }
func (AlterColumnDefault) Op() Operation     { return OpAlterColumnDefault }
func (AlterColumnNullability) Op() Operation { return OpAlterColumnNullability }
func (SetColumnComment) Op() Operation       { return OpSetColumnComment }
func (RenameTable) Op() Operation            { return OpRenameTable }

func (CreateTable) sealed()            {}
func (DropTable) sealed()              {}
func (AddColumn) sealed()              {}
func (DropColumn) sealed()             {}
func (ModifyColumn) sealed()           {}
func (RenameColumn) sealed()           {}
func (ChangeColumn) sealed()           {}
func (AddIndex) sealed()               {}
func (DropIndex) sealed()              {}
func (DropIndexByName) sealed()        {}
func (AddForeignKey) sealed()          {}
func (DropForeignKey) sealed()         {}
func (CreateM2MTable) sealed()         {}
func (DropM2MTable) sealed()           {}
func (AlterColumnDefault) sealed()     {}
func (AlterColumnNullability) sealed() {}
func (SetColumnComment) sealed()       {}
func (RenameTable) sealed()            {}
