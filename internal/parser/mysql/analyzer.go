package mysql

import (
	"fmt"

	"github.com/pingcap/tidb/pkg/parser/ast"
)

type alterTableSpecEffect struct {
	blocking          bool
	destructive       bool
	destructiveReason string
	blockingReason    string
}

var alterTableSpecEffects = map[ast.AlterTableType]alterTableSpecEffect{
	ast.AlterTableAddColumns: {
		blocking:       true,
		blockingReason: "ADD COLUMN may require a table rebuild depending on MySQL version and column position",
	},
	ast.AlterTableDropColumn: {
		blocking:          true,
		destructive:       true,
		destructiveReason: "DROP COLUMN will permanently delete the column and its data",
		blockingReason:    "DROP COLUMN typically requires a full table rebuild and will lock the table",
	},
	ast.AlterTableModifyColumn: {
		blocking:       true,
		blockingReason: "MODIFY COLUMN may require a table rebuild if changing column type or size",
	},
	ast.AlterTableChangeColumn: {
		blocking:       true,
		blockingReason: "CHANGE COLUMN may require a table rebuild",
	},
	ast.AlterTableDropIndex: {
		blocking:       true,
		blockingReason: "DROP INDEX may briefly lock the table",
	},
	ast.AlterTableDropForeignKey: {
		blocking:       true,
		blockingReason: "DROP FOREIGN KEY may briefly lock the table",
	},
	ast.AlterTableRenameTable: {
		blocking:       true,
		blockingReason: "RENAME TABLE acquires an exclusive lock but is typically fast",
	},
}

// Analysis describes the operational effect of one statement.
type Analysis struct {
	Statement         Statement
	IsBlocking        bool
	BlockingReasons   []string
	IsDestructive     bool
	DestructiveReason string
}

// Analyze parses a single statement and reports whether it may lock a table
// or delete data.
func (p *Parser) Analyze(sql string) (Analysis, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stmtNodes, _, err := p.p.Parse(sql, "", "")
	if err != nil {
		return Analysis{}, fmt.Errorf("failed to parse MySQL statement: %w", err)
	}
	if len(stmtNodes) == 0 {
		return Analysis{Statement: Statement{Kind: "other"}}, nil
	}
	return analyzeNode(stmtNodes[0]), nil
}

// Advise returns one note per warning raised by the statements. Statements
// that fail to parse are skipped; Verify reports them.
func (p *Parser) Advise(statements []string) []string {
	var notes []string
	for _, stmt := range statements {
		a, err := p.Analyze(stmt)
		if err != nil {
			continue
		}
		if a.IsDestructive {
			notes = append(notes, fmt.Sprintf("Destructive: %s: %s", a.DestructiveReason, stmt))
		}
		for _, reason := range a.BlockingReasons {
			notes = append(notes, fmt.Sprintf("Potentially blocking: %s: %s", reason, stmt))
		}
	}
	return notes
}

func analyzeNode(node ast.StmtNode) Analysis {
	a := Analysis{Statement: describe(node)}

	switch stmt := node.(type) {
	case *ast.DropTableStmt:
		a.IsDestructive = true
		a.DestructiveReason = "DROP TABLE will permanently delete the table and all its data"
	case *ast.CreateIndexStmt:
		a.block("CREATE INDEX may lock the table for the duration of index creation")
	case *ast.DropIndexStmt:
		a.block("DROP INDEX may briefly lock the table")
	case *ast.RenameTableStmt:
		a.block("RENAME TABLE acquires an exclusive lock but is typically fast")
	case *ast.AlterTableStmt:
		for _, spec := range stmt.Specs {
			a.alterTableSpec(spec)
		}
	}
	return a
}

func (a *Analysis) block(reason string) {
	a.IsBlocking = true
	a.BlockingReasons = append(a.BlockingReasons, reason)
}

func (a *Analysis) alterTableSpec(spec *ast.AlterTableSpec) {
	if spec.Tp == ast.AlterTableAddConstraint {
		a.addConstraint(spec)
		return
	}

	effect, ok := alterTableSpecEffects[spec.Tp]
	if !ok {
		return
	}
	if effect.destructive {
		a.IsDestructive = true
		a.DestructiveReason = effect.destructiveReason
	}
	if effect.blocking {
		a.block(effect.blockingReason)
	}
}

func (a *Analysis) addConstraint(spec *ast.AlterTableSpec) {
	if spec.Constraint == nil {
		a.block("ADD CONSTRAINT may lock the table while validating existing data")
		return
	}

	switch spec.Constraint.Tp {
	case ast.ConstraintForeignKey:
		a.block("ADD FOREIGN KEY may lock the table while validating existing data")
	case ast.ConstraintIndex, ast.ConstraintKey, ast.ConstraintUniq,
		ast.ConstraintUniqKey, ast.ConstraintUniqIndex:
		a.block("ADD INDEX may lock the table for the duration of index creation on large tables")
	default:
		a.block("ADD CONSTRAINT may lock the table while validating existing data")
	}
}
