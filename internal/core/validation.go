package core

import (
	"fmt"
	"strings"
)

// ValidationError represents an error found in a descriptor.
type ValidationError struct {
	Entity  string
	Name    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s %q field %q: %s", e.Entity, e.Name, e.Field, e.Message)
	}
	return fmt.Sprintf("validation error in %s %q: %s", e.Entity, e.Name, e.Message)
}

// Validate checks if the Table definition is valid and returns an error if not.
func (t *Table) Validate() error {
	if t == nil {
		return &ValidationError{Entity: "table", Message: "table is nil"}
	}
	name := t.Ref.StorageName()
	if name == "" {
		return &ValidationError{Entity: "table", Name: "(empty)", Message: "table name is empty"}
	}
	if len(t.Columns) == 0 {
		return &ValidationError{Entity: "table", Name: name, Message: "table has no columns"}
	}

	seenCols := make(map[string]bool, len(t.Columns))
	for i, c := range t.Columns {
		if c == nil {
			return &ValidationError{Entity: "table", Name: name, Message: fmt.Sprintf("column at index %d is nil", i)}
		}
		if err := c.Validate(); err != nil {
			return err
		}
		colName := strings.ToLower(c.StorageName())
		if seenCols[colName] {
			return &ValidationError{Entity: "table", Name: name, Message: fmt.Sprintf("duplicate column name %q", c.StorageName())}
		}
		seenCols[colName] = true
	}

	for i, fk := range t.ForeignKeys {
		if fk == nil {
			return &ValidationError{Entity: "table", Name: name, Message: fmt.Sprintf("foreign key at index %d is nil", i)}
		}
		if err := fk.Validate(); err != nil {
			return err
		}
		if t.FindColumn(fk.Column) == nil {
			return &ValidationError{Entity: "table", Name: name, Message: fmt.Sprintf("foreign key on unknown column %q", fk.Column)}
		}
	}
	return nil
}

// Validate checks if the Column definition is valid and returns an error if not.
func (c *Column) Validate() error {
	if c == nil {
		return &ValidationError{Entity: "column", Message: "column is nil"}
	}
	if c.StorageName() == "" {
		return &ValidationError{Entity: "column", Name: "(empty)", Message: "column name is empty"}
	}
	if c.Types.IsEmpty() {
		return &ValidationError{Entity: "column", Name: c.StorageName(), Field: "Types", Message: "column type is empty"}
	}
	if c.AutoNow && c.AutoNowAdd {
		return &ValidationError{Entity: "column", Name: c.StorageName(), Message: "auto_now and auto_now_add are mutually exclusive"}
	}
	return nil
}

// Validate checks if the ForeignKey definition is valid and returns an error if not.
func (fk *ForeignKey) Validate() error {
	if fk == nil {
		return &ValidationError{Entity: "foreign key", Message: "foreign key is nil"}
	}
	if strings.TrimSpace(fk.Column) == "" {
		return &ValidationError{Entity: "foreign key", Name: fk.Table.StorageName(), Field: "Column", Message: "foreign key has no column"}
	}
	if fk.RefTable.StorageName() == "" {
		return &ValidationError{Entity: "foreign key", Name: fk.Column, Field: "RefTable", Message: "foreign key must reference a table"}
	}
	if fk.ReferencedColumn() == "" {
		return &ValidationError{Entity: "foreign key", Name: fk.Column, Field: "RefColumn", Message: "foreign key must reference a column"}
	}
	return nil
}
