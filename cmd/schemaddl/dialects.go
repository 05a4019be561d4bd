package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"schemaddl/internal/dialect"
)

func (a *app) dialectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List dialects and the operations they cannot express",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, d := range dialect.Registered() {
				spec, err := dialect.Lookup(d, dialect.Options{Charset: a.cfg.MySQLCharset})
				if err != nil {
					return err
				}
				ops := spec.Unsupported.Operations()
				if len(ops) == 0 {
					fmt.Fprintf(a.out, "%s: all operations supported\n", d)
					continue
				}
				names := make([]string, 0, len(ops))
				for _, op := range ops {
					names = append(names, op.String())
				}
				fmt.Fprintf(a.out, "%s: unsupported %s\n", d, strings.Join(names, ", "))
			}
			return nil
		},
	}
}
