package cli

import (
	"github.com/spf13/cobra"
)

// NewMvCommand creates the mv command.
func NewMvCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <src> <dst-dir>",
		Short: "move a tracked path into a tracked directory",
		Long: `Move a tracked file or directory into another tracked directory under
a new version, keeping the paths of everything below it consistent.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			s, err := opts.open(cmd, out, true)
			if err != nil {
				return err
			}
			defer s.Close()

			src, err := s.e.Rel(args[0])
			if err != nil {
				return out.Fail("bad path", err)
			}
			dst, err := s.e.Rel(args[1])
			if err != nil {
				return out.Fail("bad path", err)
			}
			if err := s.e.Move(cmd.Context(), src, dst); err != nil {
				return out.Fail("cannot move", err)
			}
			if out.Format == "json" {
				return out.Success(map[string]string{"moved": src, "into": dst})
			}
			out.Line(ToneModified, "moved %s into %s", src, dst)
			return nil
		},
	}
}
