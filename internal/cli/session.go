package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/gate/internal/engine"
	"github.com/roach88/gate/internal/logging"
)

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
		Color:     o.Format == "text" && isTerminal(cmd.OutOrStdout()),
	}
}

// clock returns the shared test clock, or a new wall clock.
func (o *RootOptions) clock() engine.Clock {
	if o.Clock != nil {
		return o.Clock
	}
	return engine.NewWallClock()
}

// where names the tracked directory the way the hint messages do.
func (o *RootOptions) where() (loc, flag string) {
	if o.Path == "" || o.Path == "." {
		return "here", ""
	}
	return "there", fmt.Sprintf("-p %s ", o.Path)
}

// session is one opened engine plus the clock it runs on.
type session struct {
	e     *engine.Engine
	clock engine.Clock
}

func (s *session) Close() {
	if err := s.e.Close(); err != nil {
		slog.Error("error closing state file", "error", err)
	}
	_ = logging.Sync()
}

// open loads the tracked tree. With mustExist set, a directory without a
// state file is reported instead of being initialized.
func (o *RootOptions) open(cmd *cobra.Command, out *OutputFormatter, mustExist bool) (*session, error) {
	if mustExist && !engine.IsInitialized(o.dir) {
		loc, flag := o.where()
		_ = out.Error(CodeNotInitialized, fmt.Sprintf("a gate has not yet been opened %s", loc), nil)
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("try calling 'gate %sinit'", flag))
	}

	clock := o.clock()
	e, err := engine.Open(cmd.Context(), o.dir,
		engine.WithClock(clock),
		engine.WithIgnorePatterns(o.config.Ignore...),
		engine.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, out.Fail("failed to open gate", err)
	}
	return &session{e: e, clock: clock}, nil
}
