// Package parser reads schemaddl input files and verifies rendered SQL.
// Input files are dispatched on their extension; only TOML is supported.
package parser

import (
	"path/filepath"
	"strings"

	"schemaddl/internal/parser/toml"
)

// ParseChangesFile reads a change file.
func ParseChangesFile(path string) (*toml.ChangeSet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.NewParser().ParseFile(path)
	default:
		return nil, &UnsupportedFormatError{Path: path}
	}
}

// ParseRelationsFile reads a relation file.
func ParseRelationsFile(path string) (*toml.RelationSet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.NewParser().ParseRelationsFile(path)
	default:
		return nil, &UnsupportedFormatError{Path: path}
	}
}

type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return "unsupported file format: " + e.Path
}
