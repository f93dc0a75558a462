// Package main provides the gtnorm command-line tool.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ancient-ibd/gtnorm/internal/genotype"
	"github.com/ancient-ibd/gtnorm/internal/normalize"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usageLine = "Usage: gtnorm input_file output_file"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app carries per-invocation state shared by all subcommands.
type app struct {
	v       *viper.Viper
	logger  *zap.Logger
	cfgFile string
	stdout  io.Writer
	stderr  io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{
		v:      viper.New(),
		logger: zap.NewNop(),
		stdout: stdout,
		stderr: stderr,
	}

	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	_ = a.logger.Sync()
	if err != nil {
		a.reportError(err)
		return ExitError
	}
	return ExitSuccess
}

func (a *app) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gtnorm <input_file> <output_file>",
		Short: "Validate and normalize a 23andMe-style genotype file",
		Long: `gtnorm checks that a consumer genotype file (23andMe-style raw data) is
well-formed and rewrites it into the canonical layout:

  # rsid<TAB>chromosome<TAB>position<TAB>genotype

Input may be tab- or comma-delimited, with an optional header line and
either one genotype column or two allele columns. Gzip, bzip2, xz and zip
compressed files are read transparently. The first invalid record aborts the
run with exit status 1 and the partial output is removed.`,
		Example: `  gtnorm genome_Full_20250410.txt genome_processed.txt
  gtnorm --skip-preamble genome.zip genome_processed.txt
  gtnorm --max-errors 50 ancestry.csv ancestry_processed.txt`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("%w. %s", &genotype.Error{Kind: genotype.ArgumentError}, usageLine)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(); err != nil {
				return err
			}
			return a.initLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runNormalize(args[0], args[1])
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Config file (default: ~/.gtnorm.yaml)")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.String("history-path", "", "DuckDB file recording runs (default: ~/.gtnorm/history.duckdb)")

	f := cmd.Flags()
	f.Int("max-errors", 1, "Invalid records to report before aborting")
	f.Bool("skip-preamble", false, "Ignore leading '#' comment lines before the header")
	f.Bool("keep-partial", false, "Keep the partially written output on failure")
	f.Bool("history", false, "Record this run in the history database")
	f.Bool("store-genotypes", false, "Also store normalized records in the history database")

	flagKeys := map[string]string{
		"max-errors":      "validate.max_errors",
		"skip-preamble":   "input.skip_preamble",
		"keep-partial":    "output.keep_partial",
		"history":         "history.enabled",
		"store-genotypes": "history.store_genotypes",
		"history-path":    "history.path",
		"verbose":         "log.verbose",
	}
	for name, key := range flagKeys {
		flag := f.Lookup(name)
		if flag == nil {
			flag = pf.Lookup(name)
		}
		_ = a.v.BindPFlag(key, flag)
	}

	cmd.AddCommand(a.newConfigCmd())
	cmd.AddCommand(a.newHistoryCmd())
	cmd.AddCommand(a.newVersionCmd())

	return cmd
}

// initConfig loads the config file and environment.
// A missing config file is not an error.
func (a *app) initConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	a.v.SetDefault("log.level", "info")
	a.v.SetDefault("validate.max_errors", 1)
	a.v.SetDefault("history.path", filepath.Join(home, ".gtnorm", "history.duckdb"))

	a.v.SetEnvPrefix("GTNORM")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(home)
		a.v.SetConfigName(".gtnorm")
		a.v.SetConfigType("yaml")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func (a *app) reportError(err error) {
	errs := multierr.Errors(err)
	if len(errs) > 1 {
		fmt.Fprintf(a.stderr, "Error: %d invalid records\n", len(errs))
	}
	for _, e := range errs {
		fmt.Fprintf(a.stderr, "Error: %v\n", e)
	}

	if errors.Is(err, normalize.ErrOutputIsInput) {
		fmt.Fprintf(a.stderr, "Hint: Write the normalized file to a different path\n")
		return
	}

	switch genotype.KindOf(err) {
	case genotype.InputNotFound:
		fmt.Fprintf(a.stderr, "Hint: Check that the file path is correct\n")
	case genotype.UnrecognizedDelimiter, genotype.InvalidFirstLine:
		fmt.Fprintf(a.stderr, "Hint: Raw downloads start with '#' comment lines; try --skip-preamble\n")
	}
}
