package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/gate/internal/engine"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	File string
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "find text anywhere in the timeline",
		Long: `Search every version of every text file the directory ever held,
including files deleted since. Each hit names the file's path at the
matching version; "initial" marks a match in the first snapshot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			s, err := opts.open(cmd, out, true)
			if err != nil {
				return err
			}
			defer s.Close()

			var hits []engine.SearchHit
			if opts.File != "" {
				p, err := s.e.Rel(opts.File)
				if err != nil {
					return out.Fail("bad path", err)
				}
				hits = s.e.SearchFile(p, args[0])
			} else {
				hits = s.e.SearchAll(args[0])
			}

			if out.Format == "json" {
				return out.Success(hits)
			}
			if len(hits) == 0 {
				out.Line(TonePlain, "no matches")
				return nil
			}
			for _, h := range hits {
				at := "initial"
				if h.Version != nil {
					at = h.Version.Time.Local().Format(timeLayout)
				}
				out.Line(TonePlain, "%s  %s", h.Path, out.Paint(ToneDim, at))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "only search the file at this path")

	return cmd
}
