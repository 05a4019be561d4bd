package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"schemaddl/internal/core"
	"schemaddl/internal/output"
	"schemaddl/internal/parser"
)

func (a *app) alignCmd() *cobra.Command {
	var format, outFile string

	cmd := &cobra.Command{
		Use:   "align <relations.toml>",
		Short: "Pair old and new many-to-many relations of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := parser.ParseRelationsFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			r, err := a.newRenderer(core.Dialect(a.cfg.Dialect))
			if err != nil {
				return err
			}
			alignment := r.Align(rs.Old, rs.New)

			f, err := output.NewFormatter(a.format(cmd, format))
			if err != nil {
				return err
			}
			content, err := f.FormatAlignment(alignment)
			if err != nil {
				return fmt.Errorf("failed to format alignment: %w", err)
			}
			return a.writeResult(outFile, content)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "sql", "Output format (sql, json)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (default: stdout)")
	return cmd
}
