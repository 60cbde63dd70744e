package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/gate/internal/engine"
	"github.com/roach88/gate/internal/when"
)

// StatusResult is the JSON payload of status.
type StatusResult struct {
	AtPresent bool            `json:"at_present"`
	Current   time.Time       `json:"current"`
	Changes   []engine.Change `json:"changes"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "peek through the gate, seeing what has changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			s, err := opts.open(cmd, out, true)
			if err != nil {
				return err
			}
			defer s.Close()

			changes, err := s.e.ChangedFiles()
			if err != nil {
				return out.Fail("failed to scan", err)
			}
			res := StatusResult{
				AtPresent: s.e.AtPresent(),
				Current:   s.e.Root().Current,
				Changes:   changes,
			}
			if out.Format == "json" {
				return out.Success(res)
			}

			if !res.AtPresent {
				out.Line(ToneTravel, "you are visiting %s", when.Format(res.Current.Local()))
			}
			if len(changes) == 0 {
				out.Line(TonePlain, "nothing has changed")
				return nil
			}
			for _, c := range changes {
				out.Line(kindTone(c.Kind), "%s %s", c.Kind, c.Path)
			}
			return nil
		},
	}
}

func kindTone(k engine.ChangeKind) Tone {
	switch k {
	case engine.KindNew:
		return ToneAdded
	case engine.KindRemoved:
		return ToneRemoved
	case engine.KindModified:
		return ToneModified
	}
	return TonePlain
}
