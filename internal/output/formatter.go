// Package output provides a set of formatters for rendered migrations and
// many-to-many alignments. It is extendable and for now provides two
// formats: SQL and JSON.
package output

import (
	"fmt"
	"io"
	"strings"

	"schemaddl/internal/diff"
	"schemaddl/internal/migration"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatSQL  Format = "sql"
	FormatJSON Format = "json"
)

// Formatter is an interface for formatting migrations and alignments.
type Formatter interface {
	FormatMigration(*migration.Migration) (string, error)
	FormatAlignment(diff.Alignment) (string, error)
}

// NewFormatter creates a new Formatter instance based on the given name.
// If no format is specified, defaults to SQL format.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatSQL:
		return sqlFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'sql' or 'json'", name)
	}
}

// Write writes formatted content to w.
func Write(w io.Writer, content string) error {
	_, err := io.WriteString(w, content)
	return err
}

func normalizeStatements(stmts []string) []string {
	out := make([]string, 0, len(stmts))
	for _, stmt := range stmts {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if !strings.HasSuffix(stmt, ";") {
			stmt += ";"
		}
		out = append(out, stmt)
	}
	return out
}
