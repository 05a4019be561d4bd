// Package toml provides a parser for the schemaddl TOML input files.
// A change file lists the tables it refers to and an ordered array of change
// requests; a relation file holds the old and new many-to-many relations of
// one model. Both are converted once into the core descriptors the rest of
// the toolchain reads.
package toml

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"schemaddl/internal/core"
)

// changeFile is the top-level TOML document of a change file.
type changeFile struct {
	Database tomlDatabase `toml:"database"`
	Tables   []tomlTable  `toml:"tables"`
	Changes  []tomlChange `toml:"changes"`
}

// relationFile is the top-level TOML document of a relation file.
type relationFile struct {
	Tables []tomlTable    `toml:"tables"`
	Old    []tomlRelation `toml:"old"`
	New    []tomlRelation `toml:"new"`
}

// tomlDatabase maps [database].
type tomlDatabase struct {
	Dialect string `toml:"dialect"`
}

// ChangeSet is a parsed change file.
type ChangeSet struct {
	// Dialect is empty when the file does not name one.
	Dialect core.Dialect
	Tables  []core.TableRef
	Changes []core.ChangeRequest
}

// RelationSet is a parsed relation file.
type RelationSet struct {
	Old []*core.M2MRelation
	New []*core.M2MRelation
}

// Parser reads schemaddl TOML files.
type Parser struct{}

// NewParser creates a new TOML parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile opens the file at the given path and parses it as a change file.
func (p *Parser) ParseFile(path string) (*ChangeSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("toml: open file %q: %w", path, err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads a change file from r.
func (p *Parser) Parse(r io.Reader) (*ChangeSet, error) {
	var cf changeFile
	if err := decode(r, &cf); err != nil {
		return nil, err
	}

	dialect, err := validateDialect(cf.Database.Dialect)
	if err != nil {
		return nil, err
	}
	tables, err := convertTables(cf.Tables)
	if err != nil {
		return nil, err
	}

	c := &converter{tables: tables}
	set := &ChangeSet{
		Dialect: dialect,
		Tables:  tables.refs,
		Changes: make([]core.ChangeRequest, 0, len(cf.Changes)),
	}
	for i := range cf.Changes {
		req, err := c.convertChange(&cf.Changes[i])
		if err != nil {
			return nil, fmt.Errorf("toml: changes[%d] (%s): %w", i, cf.Changes[i].Kind, err)
		}
		set.Changes = append(set.Changes, req)
	}
	return set, nil
}

// ParseRelationsFile opens the file at the given path and parses it as a
// relation file.
func (p *Parser) ParseRelationsFile(path string) (*RelationSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("toml: open file %q: %w", path, err)
	}
	defer f.Close()

	return p.ParseRelations(f)
}

// ParseRelations reads a relation file from r.
func (p *Parser) ParseRelations(r io.Reader) (*RelationSet, error) {
	var rf relationFile
	if err := decode(r, &rf); err != nil {
		return nil, err
	}
	tables, err := convertTables(rf.Tables)
	if err != nil {
		return nil, err
	}

	c := &converter{tables: tables}
	set := &RelationSet{}
	if set.Old, err = c.convertRelations("old", rf.Old); err != nil {
		return nil, err
	}
	if set.New, err = c.convertRelations("new", rf.New); err != nil {
		return nil, err
	}
	return set, nil
}

func decode(r io.Reader, v any) error {
	md, err := toml.NewDecoder(r).Decode(v)
	if err != nil {
		return fmt.Errorf("toml: decode error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("toml: unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// validateDialect validates the raw dialect string.
// Empty is allowed (dialect is optional); an unrecognized non-empty value is an error.
func validateDialect(raw string) (core.Dialect, error) {
	if raw == "" {
		return "", nil
	}
	if !core.IsValidDialect(raw) {
		return "", fmt.Errorf("toml: unsupported dialect %q; supported: %v", raw, core.SupportedDialects())
	}
	return core.Dialect(strings.ToLower(raw)), nil
}

type converter struct {
	tables *tableIndex
}
