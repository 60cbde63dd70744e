package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/gate/internal/engine"
)

// InitResult is the JSON payload of init.
type InitResult struct {
	Dir     string `json:"dir"`
	Created bool   `json:"created"`
	Entries int    `json:"entries"`
}

// NewInitCommand creates the init command.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "open or create a gate",
		Long: `Start tracking the directory given by --path (default: the current
directory). Every file and directory not ignored is snapshotted as the
initial state. Running init on a directory that is already tracked just
opens it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			created := !engine.IsInitialized(opts.dir)
			out.Line(ToneGood, "opening your gate")

			s, err := opts.open(cmd, out, false)
			if err != nil {
				return err
			}
			defer s.Close()

			res := InitResult{
				Dir:     s.e.Dir(),
				Created: created,
				Entries: len(s.e.ListAt(s.e.Root().Current)),
			}
			out.VerboseLog("tracking %d paths in %s", res.Entries, res.Dir)
			if out.Format == "json" {
				return out.Success(res)
			}
			return nil
		},
	}
}
