package cli

import (
	"strings"
	"time"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/roach88/gate/internal/engine"
	"github.com/roach88/gate/internal/ir"
)

// LogEntry is one revision in the JSON payload of log.
type LogEntry struct {
	Version *ir.Version `json:"version,omitempty"`
	Time    time.Time   `json:"time"`
	Path    string      `json:"path"`
	Added   int         `json:"added"`
	Removed int         `json:"removed"`
}

// NewLogCommand creates the log command.
func NewLogCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "log <path>",
		Short: "show how one file changed over time",
		Long: `Print every revision of a tracked file, oldest first, with a line diff
against the revision before it.`,
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
			revs, err := s.e.History(p)
			if err != nil {
				return out.Fail("cannot show log", err)
			}

			entries := make([]LogEntry, 0, len(revs))
			prev := ""
			for _, r := range revs {
				diffs := lineDiff(prev, string(r.Data))
				added, removed := countLines(diffs)
				entries = append(entries, LogEntry{Version: r.Version, Time: r.Time, Path: r.Path, Added: added, Removed: removed})
				if out.Format != "json" {
					printRevision(out, r, diffs)
				}
				prev = string(r.Data)
			}
			if out.Format == "json" {
				return out.Success(entries)
			}
			return nil
		},
	}
}

func printRevision(out *OutputFormatter, r engine.Revision, diffs []diffpatch.Diff) {
	label := "initial"
	if r.Version != nil {
		label = r.Version.ID.String()
	}
	out.Line(ToneTravel, "%s %s  %s", r.Time.Local().Format(timeLayout), r.Path, label)

	changed := false
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffpatch.DiffInsert:
				out.Line(ToneAdded, "+%s", line)
				changed = true
			case diffpatch.DiffDelete:
				out.Line(ToneRemoved, "-%s", line)
				changed = true
			}
		}
	}
	if !changed {
		out.Line(ToneDim, "(content unchanged)")
	}
}

// lineDiff diffs two texts line by line.
func lineDiff(from, to string) []diffpatch.Diff {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffMain(a, b, false)
	return dmp.DiffCharsToLines(diffs, lines)
}

func countLines(diffs []diffpatch.Diff) (added, removed int) {
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffInsert:
			added += len(splitLines(d.Text))
		case diffpatch.DiffDelete:
			removed += len(splitLines(d.Text))
		}
	}
	return added, removed
}

// splitLines splits s into lines without their terminators.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
