package toml

import (
	"errors"
	"fmt"
	"strings"

	"schemaddl/internal/core"
)

// tomlTable maps [[tables]]. Changes and relations refer to a table by Name.
type tomlTable struct {
	Name     string            `toml:"name"`
	DBTable  string            `toml:"db_table"`
	PKColumn string            `toml:"pk_column"`
	PKType   string            `toml:"pk_type"`
	PKTypes  map[string]string `toml:"pk_types"`
}

// tableIndex resolves logical table names to their refs.
type tableIndex struct {
	refs   []core.TableRef
	byName map[string]int
}

func convertTables(tables []tomlTable) (*tableIndex, error) {
	idx := &tableIndex{
		refs:   make([]core.TableRef, 0, len(tables)),
		byName: make(map[string]int, len(tables)),
	}
	for i := range tables {
		ref, err := convertTable(&tables[i])
		if err != nil {
			return nil, fmt.Errorf("toml: tables[%d]: %w", i, err)
		}
		key := strings.ToLower(ref.Name)
		if _, dup := idx.byName[key]; dup {
			return nil, fmt.Errorf("toml: tables[%d]: duplicate table %q", i, ref.Name)
		}
		idx.byName[key] = len(idx.refs)
		idx.refs = append(idx.refs, ref)
	}
	return idx, nil
}

func convertTable(tt *tomlTable) (core.TableRef, error) {
	name := strings.TrimSpace(tt.Name)
	if name == "" {
		return core.TableRef{}, errors.New("missing name")
	}
	pk := strings.TrimSpace(tt.PKColumn)
	if pk == "" {
		pk = "id"
	}
	types := typeMap(tt.PKType, tt.PKTypes)
	if err := validateTypeMap(types); err != nil {
		return core.TableRef{}, fmt.Errorf("table %q: pk_types: %w", name, err)
	}
	if types.IsEmpty() {
		return core.TableRef{}, fmt.Errorf("table %q: missing pk_type", name)
	}
	return core.TableRef{
		Name:     name,
		DBTable:  strings.TrimSpace(tt.DBTable),
		PKColumn: pk,
		PKTypes:  types,
	}, nil
}

// lookup returns the table named name. Lookups are case-insensitive.
func (t *tableIndex) lookup(name string) (core.TableRef, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.TableRef{}, errors.New("missing table")
	}
	i, ok := t.byName[strings.ToLower(name)]
	if !ok {
		return core.TableRef{}, fmt.Errorf("unknown table %q", name)
	}
	return t.refs[i], nil
}

// typeMap merges the portable type and the per-dialect overrides.
func typeMap(portable string, perDialect map[string]string) core.TypeMap {
	out := make(core.TypeMap, len(perDialect)+1)
	if t := strings.TrimSpace(portable); t != "" {
		out[""] = t
	}
	for d, t := range perDialect {
		if t = strings.TrimSpace(t); t != "" {
			out[strings.ToLower(strings.TrimSpace(d))] = t
		}
	}
	return out
}

func validateTypeMap(m core.TypeMap) error {
	for d := range m {
		if d != "" && !core.IsValidDialect(d) {
			return fmt.Errorf("unsupported dialect %q", d)
		}
	}
	return nil
}
