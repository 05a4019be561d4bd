// Package mysql parses generated MySQL DDL with the TiDB parser. It is used to
// verify rendered migrations before they are written out.
package mysql

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
	"go.uber.org/multierr"
)

// Statement summarizes one parsed DDL statement.
type Statement struct {
	Kind  string
	Table string
}

// Parser wraps a TiDB parser. The underlying parser keeps state between
// calls, so access is serialized.
type Parser struct {
	mu sync.Mutex
	p  *parser.Parser
}

func NewParser() *Parser {
	return &Parser{
		p: parser.New(),
	}
}

// Parse parses sql, which may hold several statements, and describes each.
func (p *Parser) Parse(sql string) ([]Statement, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stmtNodes, _, err := p.p.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse MySQL statement: %w", err)
	}

	out := make([]Statement, 0, len(stmtNodes))
	for _, node := range stmtNodes {
		out = append(out, describe(node))
	}
	return out, nil
}

// Verify parses every statement and returns all failures combined.
func (p *Parser) Verify(statements []string) error {
	var errs error
	for i, stmt := range statements {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := p.Parse(stmt); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("statement %d: %w", i+1, err))
		}
	}
	return errs
}

func describe(node ast.StmtNode) Statement {
	switch s := node.(type) {
	case *ast.CreateTableStmt:
		return Statement{Kind: "create_table", Table: s.Table.Name.O}
	case *ast.AlterTableStmt:
		return Statement{Kind: "alter_table", Table: s.Table.Name.O}
	case *ast.DropTableStmt:
		st := Statement{Kind: "drop_table"}
		if len(s.Tables) > 0 {
			st.Table = s.Tables[0].Name.O
		}
		return st
	case *ast.CreateIndexStmt:
		return Statement{Kind: "create_index", Table: s.Table.Name.O}
	case *ast.DropIndexStmt:
		return Statement{Kind: "drop_index", Table: s.Table.Name.O}
	case *ast.RenameTableStmt:
		st := Statement{Kind: "rename_table"}
		if len(s.TableToTables) > 0 {
			st.Table = s.TableToTables[0].OldTable.Name.O
		}
		return st
	default:
		return Statement{Kind: "other"}
	}
}
