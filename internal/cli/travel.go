package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/gate/internal/engine"
	"github.com/roach88/gate/internal/when"
)

// TravelOptions holds flags for the travel command.
type TravelOptions struct {
	*RootOptions
	Force bool
}

// NewTravelCommand creates the travel command.
func NewTravelCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TravelOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "travel <when>",
		Aliases: []string{"gate"},
		Short:   "visit your files at another time",
		Long: `Rewrite the directory to match its state at <when>.

<when> may be "now", a date ("2024-05-01", "2024-05-01 14:30"), an RFC 3339
timestamp, a time of day ("14:30"), or an offset ("-90m", "2h ago",
"3 days ago").

Travelling into the past with uncommitted changes is refused unless
--force is given; those changes are then lost.

Example:
  gate travel "10 minutes ago"
  gate travel now`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTravel(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "discard uncommitted changes")

	return cmd
}

func runTravel(cmd *cobra.Command, opts *TravelOptions, expr string) error {
	out := opts.formatter(cmd)
	s, err := opts.open(cmd, out, true)
	if err != nil {
		return err
	}
	defer s.Close()

	target, err := parseWhen(out, expr, s.clock.Now())
	if err != nil {
		return err
	}

	out.Line(ToneTravel, "transporting you to %s", when.Format(target.Local()))

	var travelOpts []engine.TravelOption
	if opts.Force {
		travelOpts = append(travelOpts, engine.WithForce())
	}
	res, err := s.e.TimeTravel(cmd.Context(), target, travelOpts...)
	if err != nil {
		return out.Fail("cannot travel", err)
	}
	out.VerboseLog("renamed %d, removed %d, created %d, updated %d",
		res.Renamed, res.Removed, res.Created, res.Updated)
	if out.Format == "json" {
		return out.Success(res)
	}
	return nil
}

// parseWhen parses a time expression, reporting failures in the CLI's
// words.
func parseWhen(out *OutputFormatter, expr string, now time.Time) (time.Time, error) {
	t, err := when.Parse(expr, now.Local())
	if err != nil {
		msg := fmt.Sprintf("i do not understand the time %q", expr)
		_ = out.Error(CodeBadTime, msg, nil)
		exitErr := WrapExitError(ExitCommandError, msg, err)
		exitErr.reported = true
		return time.Time{}, exitErr
	}
	return t, nil
}
