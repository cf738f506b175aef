// Package cli implements the screener command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"screener/internal/config"
	"screener/internal/logging"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// usageError marks errors caused by bad arguments.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

// errNoCommand is returned when screener runs without a subcommand.
var errNoCommand = errors.New("no command given")

// Run executes the CLI and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), args, stdout, stderr)
}

// RunContext is Run with a caller supplied context.
func RunContext(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	a.close()

	var usage usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errNoCommand):
		return ExitUsage
	case errors.As(err, &usage), isCobraUsageError(err):
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		fmt.Fprint(stderr, root.UsageString())
		return ExitUsage
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
}

// isCobraUsageError matches the unwrapped errors cobra returns for unknown
// commands.
func isCobraUsageError(err error) bool {
	return strings.HasPrefix(err.Error(), "unknown command")
}

// app carries the persistent flags and the lazily built logger.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configFlag string
	verbose    bool
	logPath    string

	logger   *zap.Logger
	closeLog func() error
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "screener",
		Short:         "Screen event sign-ups with an LLM and write verdicts back to the sheet",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			_ = cmd.Help()
			return errNoCommand
		},
	}
	root.Args = cobra.ArbitraryArgs
	root.PersistentFlags().StringVar(&a.configFlag, "config", "", "control panel path (default $"+config.ConfigEnvVar+" or "+config.ConfigPath(".")+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&a.logPath, "log", "", "write logs to this file instead of stderr")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	root.AddCommand(
		a.runCommand(),
		a.promptsCommand(),
		a.usePromptCommand(),
		a.addPromptCommand(),
		a.toggleHighlightCommand(),
		a.setCommand(),
		a.initCommand(),
		a.validateCommand(),
		a.importCommand(),
	)
	return root
}

func (a *app) configPath() string {
	return config.ResolvePath(a.configFlag)
}

// setupLogger builds the logger once. fallbackPath is used when --log is
// empty; an empty fallback logs to stderr.
func (a *app) setupLogger(fallbackPath string) (*zap.Logger, error) {
	if a.logger != nil {
		return a.logger, nil
	}
	path := a.logPath
	if path == "" {
		path = fallbackPath
	}
	logger, closeFn, err := logging.New(logging.Options{Verbose: a.verbose, Path: path, Stderr: a.stderr})
	if err != nil {
		return nil, err
	}
	a.logger, a.closeLog = logger, closeFn
	return logger, nil
}

func (a *app) loadStore() (*config.Store, error) {
	logger, err := a.setupLogger("")
	if err != nil {
		return nil, err
	}
	return config.Load(a.configPath(), logger), nil
}

func (a *app) close() {
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("%s expects %d argument(s), got %d", cmd.Name(), n, len(args))
		}
		return nil
	}
}
