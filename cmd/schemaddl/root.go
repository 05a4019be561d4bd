package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"schemaddl/internal/config"
	"schemaddl/internal/core"
	"schemaddl/internal/dialect"
	_ "schemaddl/internal/dialect/mysql"
	_ "schemaddl/internal/dialect/postgres"
	_ "schemaddl/internal/dialect/sqlite"
	"schemaddl/internal/logger"
	"schemaddl/internal/metrics"
	"schemaddl/internal/naming"
	"schemaddl/internal/output"
	"schemaddl/internal/plan"
)

// app holds what every command shares once flags and config are loaded.
type app struct {
	out    io.Writer
	errOut io.Writer

	envFile     string
	debug       bool
	jsonLogs    bool
	showMetrics bool

	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Store
}

// execute runs the command line with args. Errors are printed to errOut and
// metrics, when requested, are written even if the command failed.
func execute(args []string, out, errOut io.Writer) error {
	a := &app{out: out, errOut: errOut, log: zap.NewNop()}
	rootCmd := a.rootCmd()
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(errOut, "Error:", err)
	}
	if ferr := a.finish(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "schemaddl",
		Short:         "Render schema change requests as DDL for MySQL, PostgreSQL and SQLite",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Load SCHEMADDL_* defaults from this file if it exists")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&a.jsonLogs, "json-logs", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&a.showMetrics, "metrics", false, "Print collected metrics to stderr on exit")

	rootCmd.AddCommand(a.renderCmd())
	rootCmd.AddCommand(a.alignCmd())
	rootCmd.AddCommand(a.dialectsCmd())
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = a.debug
	}
	if cmd.Flags().Changed("json-logs") {
		cfg.JSONLogs = a.jsonLogs
	}
	a.cfg = cfg

	log, err := logger.New(cfg.Debug, cfg.JSONLogs)
	if err != nil {
		return err
	}
	a.log = log
	a.metrics = metrics.NewMetricsStore()

	a.log.Debug("Configuration loaded",
		zap.String("dialect", cfg.Dialect),
		zap.String("format", cfg.Format),
		zap.Int("workers", cfg.Workers),
		zap.Int("identifier_max_length", cfg.IdentifierMaxLength),
	)
	return nil
}

func (a *app) finish() error {
	_ = a.log.Sync()
	if !a.showMetrics || a.metrics == nil {
		return nil
	}
	return a.metrics.WriteText(a.errOut)
}

// newRenderer builds a renderer for dialect d from the loaded config.
func (a *app) newRenderer(d core.Dialect, opts ...plan.Option) (*plan.Renderer, error) {
	gen, err := dialect.New(d, dialect.Options{
		Charset: a.cfg.MySQLCharset,
		Names:   naming.NewHashed(a.cfg.IdentifierMaxLength),
	})
	if err != nil {
		return nil, err
	}
	opts = append([]plan.Option{plan.WithLogger(a.log), plan.WithMetrics(a.metrics)}, opts...)
	return plan.NewRenderer(gen, opts...), nil
}

// format returns the --format flag when set, else the configured format.
func (a *app) format(cmd *cobra.Command, flag string) string {
	if cmd.Flags().Changed("format") {
		return flag
	}
	return a.cfg.Format
}

// writeResult writes content to the file at path, or to stdout when path is
// empty.
func (a *app) writeResult(path, content string) error {
	if path == "" {
		return output.Write(a.out, content)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	a.log.Info("Output written", zap.String("path", path))
	return nil
}
