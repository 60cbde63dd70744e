package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/gate/internal/ir"
)

// HistResult is the JSON payload of hist.
type HistResult struct {
	Init     time.Time    `json:"init"`
	Current  time.Time    `json:"current"`
	Versions []ir.Version `json:"versions"`
}

// NewHistCommand creates the hist command.
func NewHistCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hist",
		Short: "display the full timeline",
		Long: `List every version, newest first. The version materialized on disk is
marked with "*".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			s, err := opts.open(cmd, out, true)
			if err != nil {
				return err
			}
			defer s.Close()

			res := HistResult{
				Init:     s.e.InitTime(),
				Current:  s.e.Root().Current,
				Versions: s.e.Versions(),
			}
			if out.Format == "json" {
				return out.Success(res)
			}

			marked := false
			for _, v := range res.Versions {
				mark := " "
				if !marked && !v.Time.After(res.Current) {
					mark = "*"
					marked = true
				}
				out.Line(TonePlain, "%s %s  %s", mark, v.Time.Local().Format(timeLayout), out.Paint(ToneDim, v.ID.String()))
			}
			mark := " "
			if !marked {
				mark = "*"
			}
			out.Line(TonePlain, "%s %s  %s", mark, res.Init.Local().Format(timeLayout), out.Paint(ToneGood, "gate opened"))
			return nil
		},
	}
}
