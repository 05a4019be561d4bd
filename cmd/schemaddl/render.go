package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"schemaddl/internal/core"
	"schemaddl/internal/migration"
	"schemaddl/internal/output"
	"schemaddl/internal/parser"
	"schemaddl/internal/plan"
)

// ErrChangesNotRendered is returned when at least one change request could
// not be rendered. The migration is still written.
var ErrChangesNotRendered = errors.New("some changes could not be rendered")

func (a *app) renderCmd() *cobra.Command {
	var dialectName, format, outFile string
	var verify bool

	cmd := &cobra.Command{
		Use:   "render <changes.toml>...",
		Short: "Render change files as one migration",
		Long: "Render the change requests of one or more TOML change files as DDL. " +
			"Files are rendered concurrently and their statements are written in argument order.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sets := make([]*changeSource, 0, len(args))
			for _, path := range args {
				cs, err := parser.ParseChangesFile(path)
				if err != nil {
					return fmt.Errorf("failed to parse %s: %w", path, err)
				}
				sets = append(sets, &changeSource{path: path, dialect: cs.Dialect, changes: cs.Changes})
			}

			d, err := a.resolveDialect(cmd, dialectName, sets)
			if err != nil {
				return err
			}

			var opts []plan.Option
			if verify {
				if v, ok := parser.NewSQLVerifier(d); ok {
					opts = append(opts, plan.WithVerifier(v))
				} else {
					a.log.Warn("No SQL parser available, skipping verification", zap.String("dialect", string(d)))
				}
			}
			r, err := a.newRenderer(d, opts...)
			if err != nil {
				return err
			}

			batches := make([][]core.ChangeRequest, len(sets))
			for i, s := range sets {
				batches[i] = s.changes
			}
			results, renderErr := r.RenderBatches(cmd.Context(), batches, a.cfg.Workers)

			m := migration.New(r.Dialect())
			for _, res := range results {
				m.Append(res)
			}
			m.Dedupe()

			f, err := output.NewFormatter(a.format(cmd, format))
			if err != nil {
				return err
			}
			content, err := f.FormatMigration(m)
			if err != nil {
				return fmt.Errorf("failed to format migration: %w", err)
			}
			if err := a.writeResult(outFile, content); err != nil {
				return err
			}

			if renderErr != nil {
				a.log.Debug("Render finished with errors", zap.Error(renderErr))
				return fmt.Errorf("%w: %d unresolved", ErrChangesNotRendered, len(m.UnresolvedNotes()))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dialectName, "dialect", "d", "", "Target dialect (mysql, postgresql, sqlite); overrides the file and config")
	cmd.Flags().StringVarP(&format, "format", "f", "sql", "Output format (sql, json)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&verify, "verify", false, "Parse rendered statements where a SQL parser exists for the dialect")
	return cmd
}

// changeSource is one parsed change file.
type changeSource struct {
	path    string
	dialect core.Dialect
	changes []core.ChangeRequest
}

// resolveDialect picks the --dialect flag, else the dialect named by the
// files, else the configured one. Files naming different dialects are
// rejected unless the flag is set.
func (a *app) resolveDialect(cmd *cobra.Command, flag string, sets []*changeSource) (core.Dialect, error) {
	if cmd.Flags().Changed("dialect") {
		return core.Dialect(flag), nil
	}
	var named *changeSource
	for _, s := range sets {
		if s.dialect == "" {
			continue
		}
		if named != nil && named.dialect != s.dialect {
			return "", fmt.Errorf("%s targets %s but %s targets %s; pass --dialect", named.path, named.dialect, s.path, s.dialect)
		}
		named = s
	}
	if named != nil {
		return named.dialect, nil
	}
	return core.Dialect(a.cfg.Dialect), nil
}
