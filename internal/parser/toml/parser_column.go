package toml

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"schemaddl/internal/core"
)

// tomlColumn maps [changes.column] and [[changes.columns]].
type tomlColumn struct {
	Name     string            `toml:"name"`
	DBColumn string            `toml:"db_column"`
	Type     string            `toml:"type"`
	Types    map[string]string `toml:"types"`
	Kind     string            `toml:"kind"`

	Nullable      bool   `toml:"nullable"`
	Unique        bool   `toml:"unique"`
	AutoIncrement bool   `toml:"auto_increment"`
	AutoNowAdd    bool   `toml:"auto_now_add"`
	AutoNow       bool   `toml:"auto_now"`
	Description   string `toml:"description"`

	// Default accepts a string, bool, number or date/time literal. At most
	// one of Default, DefaultFunction and DefaultEnum may be set.
	Default         any              `toml:"default"`
	DefaultFunction string           `toml:"default_function"`
	DefaultEnum     *tomlEnumDefault `toml:"default_enum"`
}

// tomlEnumDefault maps [changes.column.default_enum].
type tomlEnumDefault struct {
	Name  string `toml:"name"`
	Value any    `toml:"value"`
}

var fieldKinds = []core.FieldKind{
	core.KindChar, core.KindText, core.KindInt, core.KindBigInt, core.KindSmallInt,
	core.KindFloat, core.KindDecimal, core.KindBool, core.KindDatetime, core.KindDate,
	core.KindTime, core.KindJSON, core.KindUUID, core.KindBinary, core.KindEnum, core.KindFK,
}

func convertColumn(tc *tomlColumn) (*core.Column, error) {
	if tc == nil {
		return nil, errors.New("missing column")
	}
	name := strings.TrimSpace(tc.Name)
	if name == "" {
		return nil, errors.New("column: missing name")
	}

	types := typeMap(tc.Type, tc.Types)
	if err := validateTypeMap(types); err != nil {
		return nil, fmt.Errorf("column %q: types: %w", name, err)
	}
	if types.IsEmpty() {
		return nil, fmt.Errorf("column %q: missing type", name)
	}

	kind := core.FieldKind(strings.ToLower(strings.TrimSpace(tc.Kind)))
	if kind != "" && !slices.Contains(fieldKinds, kind) {
		return nil, fmt.Errorf("column %q: unknown kind %q", name, tc.Kind)
	}

	def, err := convertDefault(tc)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", name, err)
	}

	return &core.Column{
		Name:          name,
		DBColumn:      strings.TrimSpace(tc.DBColumn),
		Types:         types,
		Nullable:      tc.Nullable,
		Unique:        tc.Unique,
		Default:       def,
		AutoNowAdd:    tc.AutoNowAdd,
		AutoNow:       tc.AutoNow,
		Description:   tc.Description,
		Kind:          kind,
		AutoIncrement: tc.AutoIncrement,
	}, nil
}

func convertDefault(tc *tomlColumn) (any, error) {
	set := 0
	for _, ok := range []bool{tc.Default != nil, tc.DefaultFunction != "", tc.DefaultEnum != nil} {
		if ok {
			set++
		}
	}
	if set > 1 {
		return nil, errors.New("default, default_function and default_enum are mutually exclusive")
	}

	switch {
	case tc.DefaultFunction != "":
		return core.DefaultFunc{Name: strings.TrimSpace(tc.DefaultFunction)}, nil
	case tc.DefaultEnum != nil:
		if strings.TrimSpace(tc.DefaultEnum.Name) == "" {
			return nil, errors.New("default_enum: missing name")
		}
		if err := validateScalar(tc.DefaultEnum.Value); err != nil {
			return nil, fmt.Errorf("default_enum: %w", err)
		}
		return core.EnumMember{Name: strings.TrimSpace(tc.DefaultEnum.Name), Value: tc.DefaultEnum.Value}, nil
	case tc.Default != nil:
		if err := validateScalar(tc.Default); err != nil {
			return nil, fmt.Errorf("default: %w", err)
		}
		return tc.Default, nil
	default:
		return nil, nil
	}
}

// validateScalar accepts the scalar shapes TOML decodes into an interface.
// Local dates and times decode to time.Time as well.
func validateScalar(v any) error {
	switch v.(type) {
	case nil, string, bool, int64, float64, time.Time:
		return nil
	default:
		return fmt.Errorf("unsupported value of type %T", v)
	}
}
