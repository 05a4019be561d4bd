package toml

import (
	"errors"
	"fmt"
	"strings"

	"schemaddl/internal/core"
)

// tomlRelation maps [[old]], [[new]] and [changes.relation].
type tomlRelation struct {
	Through       string            `toml:"through"`
	Name          string            `toml:"name"`
	ForwardKey    string            `toml:"forward_key"`
	BackwardKey   string            `toml:"backward_key"`
	ForwardTable  string            `toml:"forward_table"`
	BackwardTable string            `toml:"backward_table"`
	ForwardType   string            `toml:"forward_type"`
	ForwardTypes  map[string]string `toml:"forward_types"`
	BackwardType  string            `toml:"backward_type"`
	BackwardTypes map[string]string `toml:"backward_types"`
	OnDelete      string            `toml:"on_delete"`
	Description   string            `toml:"description"`
}

func (c *converter) convertRelations(section string, rels []tomlRelation) ([]*core.M2MRelation, error) {
	out := make([]*core.M2MRelation, 0, len(rels))
	for i := range rels {
		rel, err := c.convertRelation(&rels[i])
		if err != nil {
			return nil, fmt.Errorf("toml: %s[%d]: %w", section, i, err)
		}
		out = append(out, rel)
	}
	return out, nil
}

// convertRelation needs only through and name. Tables are resolved when
// given and default the keys to "<table>_id".
func (c *converter) convertRelation(tr *tomlRelation) (*core.M2MRelation, error) {
	through := strings.TrimSpace(tr.Through)
	if through == "" {
		return nil, errors.New("missing through")
	}
	rel := &core.M2MRelation{
		Through:       through,
		Name:          strings.TrimSpace(tr.Name),
		ForwardKey:    strings.TrimSpace(tr.ForwardKey),
		BackwardKey:   strings.TrimSpace(tr.BackwardKey),
		ForwardTypes:  typeMap(tr.ForwardType, tr.ForwardTypes),
		BackwardTypes: typeMap(tr.BackwardType, tr.BackwardTypes),
		Description:   tr.Description,
	}
	if err := validateTypeMap(rel.ForwardTypes); err != nil {
		return nil, fmt.Errorf("forward_types: %w", err)
	}
	if err := validateTypeMap(rel.BackwardTypes); err != nil {
		return nil, fmt.Errorf("backward_types: %w", err)
	}

	var err error
	if tr.ForwardTable != "" {
		if rel.ForwardTable, err = c.tables.lookup(tr.ForwardTable); err != nil {
			return nil, fmt.Errorf("forward_table: %w", err)
		}
		if rel.ForwardKey == "" {
			rel.ForwardKey = strings.ToLower(rel.ForwardTable.StorageName()) + "_id"
		}
	}
	if tr.BackwardTable != "" {
		if rel.BackwardTable, err = c.tables.lookup(tr.BackwardTable); err != nil {
			return nil, fmt.Errorf("backward_table: %w", err)
		}
		if rel.BackwardKey == "" {
			rel.BackwardKey = strings.ToLower(rel.BackwardTable.StorageName()) + "_id"
		}
	}
	if tr.OnDelete != "" {
		if rel.OnDelete, err = referentialAction(tr.OnDelete); err != nil {
			return nil, err
		}
	}
	return rel, nil
}
