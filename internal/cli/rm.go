package cli

import (
	"github.com/spf13/cobra"
)

// NewRmCommand creates the rm command.
func NewRmCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>",
		Short: "stop tracking a path and delete it",
		Long: `Remove a tracked file or directory from the tree under a new version
and delete it from disk. Its history stays searchable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			s, err := opts.open(cmd, out, true)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.e.Rel(args[0])
			if err != nil {
				return out.Fail("bad path", err)
			}
			if err := s.e.Remove(cmd.Context(), p); err != nil {
				return out.Fail("cannot remove", err)
			}
			if out.Format == "json" {
				return out.Success(map[string]string{"removed": p})
			}
			out.Line(ToneRemoved, "removed %s", p)
			return nil
		},
	}
}
