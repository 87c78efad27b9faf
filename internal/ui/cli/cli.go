// Package cli implements the corocheck command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const Version = "1.0.0"

const (
	ExitOK       = 0
	ExitFault    = 1
	ExitUsage    = 2
	ExitMismatch = 3
)

type cliOptions struct {
	configPath string
	format     string
	noColor    bool
	noExec     bool
	python     string
	watch      bool
	ui         bool
	history    bool
	verbose    bool
}

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func fault(err error) error {
	return &exitError{code: ExitFault, err: err}
}

// NewRootCommand builds the command tree writing to stdout and stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "corocheck [flags] <path>...",
		Short: "Find coroutine calls that are missing (or wrongly use) yield from",
		Long: `corocheck classifies every call expression in Python sources as a coroutine
or not and reports calls whose delegation does not match:
a coroutine invoked without "yield from", or "yield from" applied to a
non-coroutine.`,
		Version:       Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, opts, args)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("corocheck v{{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "./corocheck.toml", "Path to config file")
	pf.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")

	f := root.Flags()
	f.StringVar(&opts.format, "format", "", "Output format: text or json")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable colored text output")
	f.BoolVar(&opts.noExec, "no-exec", false, "Do not execute imports; use the static environment")
	f.StringVar(&opts.python, "python", "", "Python interpreter used to evaluate names")
	f.BoolVar(&opts.watch, "watch", false, "Re-analyze files when they change")
	f.BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode (implies --watch)")
	f.BoolVar(&opts.history, "history", false, "Record runs in the history database")

	root.AddCommand(newHistoryCommand(opts))
	return root
}

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	return execute(args, os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return ExitOK
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			slog.Error("corocheck failed", "error", exit.err)
		}
		return exit.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", root.CommandPath())
	return ExitUsage
}
