// Package mysql provides the MySQL dialect: backtick quoting, inline
// comments and a character set on every new table.
package mysql

import (
	"strings"

	"schemaddl/internal/core"
	"schemaddl/internal/dialect"
)

// DefaultCharset is appended to new tables when Options.Charset is empty.
const DefaultCharset = "utf8mb4"

func init() {
	dialect.Register(core.DialectMySQL, NewSpec)
}

// NewSpec returns the MySQL dialect record. MySQL has in-place MODIFY COLUMN,
// so nullability and comment changes re-issue the column definition.
func NewSpec(opts dialect.Options) dialect.Spec {
	charset := strings.TrimSpace(opts.Charset)
	if charset == "" {
		charset = DefaultCharset
	}

	return dialect.Spec{
		Name:              core.DialectMySQL,
		Templates:         dialect.BaseTemplates(),
		QuoteIdentifier:   QuoteIdentifier,
		QuoteString:       QuoteString,
		BoolLiteral:       boolLiteral,
		CurrentTimestamp:  "CURRENT_TIMESTAMP(6)",
		OnUpdateTimestamp: "CURRENT_TIMESTAMP(6)",
		AutoIncrement:     "AUTO_INCREMENT",
		TableExtra: func(string) string {
			return " CHARACTER SET " + charset
		},
		TableComment: func(_, comment string) string {
			return " COMMENT=" + QuoteString(comment)
		},
		ColumnComment: func(_, _, comment string) string {
			return "COMMENT " + QuoteString(comment)
		},
	}
}

// QuoteIdentifier is a function used for quote identification inside an SQL dialect.
func QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "`", "``")
	return "`" + name + "`"
}

// QuoteString is a function used for quote string inside an SQL dialect.
func QuoteString(value string) string {
	var b strings.Builder
	b.Grow(len(value) + len(value)/10 + 2)

	b.WriteByte('\'')
	for _, char := range value {
		switch char {
		case '\'':
			b.WriteString("''")
		case '\\':
			b.WriteString(`\\`)
		case '\x00':
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\x1A':
			b.WriteString(`\Z`)
		default:
			b.WriteRune(char)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func boolLiteral(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
