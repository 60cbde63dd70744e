package cli

import (
	"github.com/spf13/cobra"
)

// NewCommitCommand creates the commit command.
func NewCommitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "mark a point in time never to be changed",
		Long: `Record every pending change under one new version.

Fails when the directory is materialized in the past; travel to "now"
first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			s, err := opts.open(cmd, out, true)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.e.Commit(cmd.Context())
			if err != nil {
				return out.Fail("cannot commit", err)
			}
			if out.Format == "json" {
				return out.Success(res)
			}

			if res.Empty() {
				out.Line(TonePlain, "nothing to commit")
				return nil
			}
			for _, c := range res.Changes {
				out.Line(kindTone(c.Kind), "%s %s", c.Kind, c.Path)
			}
			out.Line(ToneGood, "committed %d changes at %s", len(res.Changes), res.Version.Time.Local().Format(timeLayout))
			out.VerboseLog("version %s", res.Version.ID)
			return nil
		},
	}
}

// timeLayout is the compact timestamp used in listings.
const timeLayout = "2006-01-02 15:04:05.000"
