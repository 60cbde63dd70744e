package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/gate/internal/engine"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Interval time.Duration
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "keep the gate open, committing once every interval",
		Long: `Commit pending changes immediately and then once every interval until
interrupted. The interval comes from --interval, then run.interval in
.gate.yaml, then defaults to one second.

While the directory is materialized in the past, ticks are skipped.

Example:
  gate run
  gate run --interval 30s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(cmd, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "time between commits (default from config, else 1s)")

	return cmd
}

func runLoop(cmd *cobra.Command, opts *RunOptions) error {
	out := opts.formatter(cmd)
	s, err := opts.open(cmd, out, true)
	if err != nil {
		return err
	}
	defer s.Close()

	interval := opts.Interval
	if interval <= 0 {
		interval = opts.config.RunInterval()
	}

	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out.Line(ToneGood, "keeping your gate open, committing every %s", interval)
	out.Line(TonePlain, "Press Ctrl-C to stop.")
	slog.Info("run loop starting", "dir", s.e.Dir(), "interval", interval)

	commits := 0
	tick := func() error {
		res, err := s.e.Commit(ctx)
		switch {
		case errors.Is(err, engine.ErrNotAtPresent):
			slog.Debug("skipping commit while in the past")
			return nil
		case err != nil:
			return err
		case res.Empty():
			return nil
		}
		commits++
		for _, c := range res.Changes {
			out.Line(kindTone(c.Kind), "%s %s", c.Kind, c.Path)
		}
		return nil
	}

	if err := tick(); err != nil && ctx.Err() == nil {
		return out.Fail("commit failed", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("run loop stopped", "commits", commits)
			out.Line(ToneGood, "closing your gate")
			if out.Format == "json" {
				return out.Success(map[string]int{"commits": commits})
			}
			return nil
		case <-ticker.C:
			if err := tick(); err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					continue
				}
				return out.Fail("commit failed", err)
			}
		}
	}
}
