package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario, fails t on any mismatch, and compares
// every snapshot against testdata/golden/{scenario}_{snapshot}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := RunIn(t.Context(), t.TempDir(), scenario)
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the snapshots of an existing result against their
// golden files. Snapshots that share a name share a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, snap := range result.Snapshots {
		data, err := MarshalTree(snap.Tree)
		if err != nil {
			return err
		}
		g.Assert(t, scenarioName+"_"+snap.Name, data)
	}
	return nil
}

// MarshalTree renders a snapshot tree as indented JSON with sorted keys and
// a trailing newline.
func MarshalTree(tree map[string]string) ([]byte, error) {
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
