package parser

import (
	"schemaddl/internal/core"
	"schemaddl/internal/parser/mysql"
)

// SQLVerifier checks that rendered statements parse.
type SQLVerifier interface {
	Verify(statements []string) error
}

// NewSQLVerifier returns a verifier for dialect d. The second result is
// false when no SQL parser is available for d.
func NewSQLVerifier(d core.Dialect) (SQLVerifier, bool) {
	switch d {
	case core.DialectMySQL:
		return mysql.NewParser(), true
	default:
		return nil, false
	}
}
