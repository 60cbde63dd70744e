package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/gate/internal/engine"
)

// LsOptions holds flags for the ls command.
type LsOptions struct {
	*RootOptions
	At string
}

// NewLsCommand creates the ls command.
func NewLsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "list tracked paths",
		Long: `List every tracked path as it is on disk, or as it was at --at without
touching the directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			s, err := opts.open(cmd, out, true)
			if err != nil {
				return err
			}
			defer s.Close()

			at := s.e.Root().Current
			if opts.At != "" {
				if at, err = parseWhen(out, opts.At, s.clock.Now()); err != nil {
					return err
				}
			}

			listing := s.e.ListAt(at)
			if out.Format == "json" {
				return out.Success(listing)
			}
			for _, l := range listing {
				out.Line(TonePlain, "%s", displayPath(l))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.At, "at", "", "list the tree as it was at this time")

	return cmd
}

func displayPath(l engine.Listing) string {
	if l.IsDir {
		return l.Path + "/"
	}
	return l.Path
}
