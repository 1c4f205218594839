package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"genre-schedule/internal/analysis"
	"genre-schedule/internal/config"
	"genre-schedule/internal/logging"
	"genre-schedule/internal/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errReported marks a failure whose message has already been printed.
var errReported = errors.New("reported")

// app carries state shared by all subcommands.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "schedmode [path]",
		Short: "Most common broadcast schedule per TV genre",
		Long: `Reads a CSV of TV programs and prints, for every genre, the schedule
value that occurs most often among programs tagged with that genre.

The header must contain a column whose name includes "genre" and one whose
name includes both "schedule" and "time". Without a path argument the
configured fallback path is used. Arguments after the path are ignored.

An existing file named like a subcommand (help, serve, db) or starting with
"-" is read as the path. Put "--" before a path that does not exist yet to
get the file-not-found report instead of a subcommand or flag error.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			logger, err := logging.New(cfg.Logging, a.verbose)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: a.runAnalyze,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging on stderr")

	rootCmd.AddCommand(a.newServeCmd(), a.newDBCmd(), a.newInitConfigCmd())
	return rootCmd
}

func (a *app) runAnalyze(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	path := a.cfg.FallbackPath
	if len(args) >= 1 {
		path = args[0]
	} else {
		fmt.Fprintln(out, "⚠️  No CSV path provided as argument.")
		fmt.Fprintf(out, "ℹ️  Using fallback path: %s\n", path)
	}

	a.logger.Debug("analyzing file", zap.String("path", path))
	report, err := analysis.NewCSVService(a.logger).AnalyzeFile(path)
	if err != nil {
		return reportFailure(out, path, err)
	}
	printReport(out, report)
	return nil
}

// reportFailure prints the user-facing message for err.
func reportFailure(out io.Writer, path string, err error) error {
	switch {
	case errors.Is(err, analysis.ErrFileNotFound):
		fmt.Fprintf(out, "❌ File not found: %s\n", path)
	case errors.Is(err, analysis.ErrEmptyResult):
		fmt.Fprintln(out, "⚠️  No valid data found in the CSV.")
	case analysis.IsMissingColumn(err):
		fmt.Fprintf(out, "Value error: %v\n", err)
	default:
		fmt.Fprintf(out, "Unexpected error: %v\n", err)
	}
	return errReported
}

func printReport(out io.Writer, report models.ScheduleReport) {
	for _, gs := range report.Results {
		fmt.Fprintf(out, "%s: %s\n", gs.Genre, gs.Schedule)
	}
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, out io.Writer) int {
	return executeWith(out, newRootCmd, args)
}

// executeWith runs the command built by newCmd. Panics are reported as fatal
// errors rather than crashing.
func executeWith(out io.Writer, newCmd func() *cobra.Command, args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(out, "🔥 Fatal error in script execution: %v\n", r)
			code = 1
		}
	}()

	cmd := newCmd()
	cmd.SetArgs(protectPathArg(cmd, args))
	cmd.SetOut(out)
	cmd.SetErr(out)

	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(out, "Unexpected error: %v\n", err)
		}
		return 1
	}
	return 0
}

// protectPathArg stops cobra from treating an existing file as a subcommand
// or a flag when it is the first argument.
func protectPathArg(cmd *cobra.Command, args []string) []string {
	if len(args) == 0 || args[0] == "--" {
		return args
	}
	name := args[0]
	if !strings.HasPrefix(name, "-") && !isCommandName(cmd, name) {
		return args
	}
	if info, err := os.Stat(name); err != nil || !info.Mode().IsRegular() {
		return args
	}
	return append([]string{"--"}, args...)
}

// isCommandName reports whether name selects a subcommand of cmd. help and
// completion are added by cobra during Execute.
func isCommandName(cmd *cobra.Command, name string) bool {
	if name == "help" || name == "completion" {
		return true
	}
	for _, sub := range cmd.Commands() {
		if sub.Name() == name || sub.HasAlias(name) {
			return true
		}
	}
	return false
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout))
}
