package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/gate/internal/config"
	"github.com/roach88/gate/internal/engine"
	"github.com/roach88/gate/internal/ir"
	"github.com/roach88/gate/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Path    string // tracked directory

	// Clock overrides the engine clock (for testing). If nil, each command
	// uses a fresh wall clock.
	Clock engine.Clock

	// LogOutput overrides where logs go (for testing). Defaults to stderr.
	LogOutput string

	config config.Config
	dir    string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the gate CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gate",
		Version: ir.ToolVersion,
		Short: "gate - step through time in a directory",
		Long: `Keep every committed state of a directory tree and rewrite the
directory to match any of them.

State lives in .gate.db in the tracked directory. Paths listed in
.gateignore (or under "ignore" in .gate.yaml) are never tracked.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setup()
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.Path, "path", "p", ".", "location of your gate")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewCommitCommand(opts))
	cmd.AddCommand(NewTravelCommand(opts))
	cmd.AddCommand(NewHistCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewLsCommand(opts))
	cmd.AddCommand(NewRmCommand(opts))
	cmd.AddCommand(NewMvCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	if !alreadyReported(err) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	// Cobra's own argument and flag errors.
	return ExitCommandError
}

// setup resolves the tracked directory, reads its config and installs the
// logger.
func (o *RootOptions) setup() error {
	dir, err := filepath.Abs(o.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "bad path", err)
	}
	o.dir = dir

	cfg, err := config.Load(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.config = cfg

	level := cfg.Log.Level
	if o.Verbose {
		level = "debug"
	}
	if _, err := logging.Init(logging.Config{
		Level:      level,
		Format:     cfg.Log.Format,
		OutputPath: o.LogOutput,
	}); err != nil {
		return WrapExitError(ExitCommandError, "failed to set up logging", err)
	}
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
