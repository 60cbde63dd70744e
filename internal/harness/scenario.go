package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one scripted run against a tracked directory.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixture selects the starting tree: "clean" (default) or "empty".
	Fixture string `yaml:"fixture,omitempty"`

	// Files are extra paths written on top of the fixture before init.
	// Keys ending in "/" are directories.
	Files map[string]string `yaml:"files,omitempty"`

	// Steps run in order after the directory is initialized.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one action in a scenario.
type Step struct {
	// Op is the step kind (see the Op constants).
	Op string `yaml:"op"`

	// Path is the slash path the step works on.
	Path string `yaml:"path,omitempty"`

	// Content is the file content written by write.
	Content string `yaml:"content,omitempty"`

	// Into is the destination directory of move.
	Into string `yaml:"into,omitempty"`

	// To is the travel destination: "init", a version label or a time
	// expression.
	To string `yaml:"to,omitempty"`

	// Force lets travel discard uncommitted changes.
	Force bool `yaml:"force,omitempty"`

	// Changes lists expected changes as "kind path" (status, commit). A nil
	// list skips the check; an empty list expects no changes.
	Changes []string `yaml:"changes,omitempty"`

	// Name labels a snapshot.
	Name string `yaml:"name,omitempty"`

	// Error is the expected failure kind (see the Err constants). Empty
	// means the step must succeed.
	Error string `yaml:"error,omitempty"`
}

// Step kinds.
const (
	OpWrite    = "write"
	OpMkdir    = "mkdir"
	OpDelete   = "delete"
	OpStatus   = "status"
	OpCommit   = "commit"
	OpRemove   = "remove"
	OpMove     = "move"
	OpTravel   = "travel"
	OpReopen   = "reopen"
	OpSnapshot = "snapshot"
)

// Expected error kinds.
const (
	ErrKindUncommitted  = "uncommitted"
	ErrKindNotAtPresent = "not_at_present"
	ErrKindNotTracked   = "not_tracked"
	ErrKindInvalidMove  = "invalid_move"
	ErrKindOccupied     = "occupied"
)

// Fixtures.
const (
	FixtureClean = "clean"
	FixtureEmpty = "empty"
)

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "file_content": file at Path holds Content
	// - "exists": Path is on disk
	// - "absent": Path is not on disk
	// - "version_count": the timeline holds Count versions
	// - "search": searching Query yields exactly Hits
	Type string `yaml:"type"`

	Path    string `yaml:"path,omitempty"`
	Content string `yaml:"content,omitempty"`

	// Count is the expected number of versions (used by version_count).
	Count int `yaml:"count,omitempty"`

	// Query is the search text; Hits are "path@label" with label "init"
	// for the initial snapshot (used by search).
	Query string   `yaml:"query,omitempty"`
	Hits  []string `yaml:"hits,omitempty"`
}

// Assertion type constants.
const (
	AssertFileContent  = "file_content"
	AssertExists       = "exists"
	AssertAbsent       = "absent"
	AssertVersionCount = "version_count"
	AssertSearch       = "search"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML text.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "step:" vs "steps:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch s.Fixture {
	case "", FixtureClean, FixtureEmpty:
	default:
		return fmt.Errorf("unknown fixture %q", s.Fixture)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateStep validates a single step based on its op.
func validateStep(index int, s *Step) error {
	switch s.Op {
	case OpWrite, OpMkdir, OpDelete, OpRemove:
		if s.Path == "" {
			return fmt.Errorf("steps[%d]: %s requires 'path'", index, s.Op)
		}
	case OpMove:
		if s.Path == "" || s.Into == "" {
			return fmt.Errorf("steps[%d]: move requires 'path' and 'into'", index)
		}
	case OpTravel:
		if s.To == "" {
			return fmt.Errorf("steps[%d]: travel requires 'to'", index)
		}
	case OpSnapshot:
		if s.Name == "" {
			return fmt.Errorf("steps[%d]: snapshot requires 'name'", index)
		}
	case OpStatus, OpCommit, OpReopen:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}

	switch s.Error {
	case "", ErrKindUncommitted, ErrKindNotAtPresent, ErrKindNotTracked, ErrKindInvalidMove, ErrKindOccupied:
	default:
		return fmt.Errorf("steps[%d]: unknown error kind %q", index, s.Error)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertFileContent, AssertExists, AssertAbsent:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: %s requires 'path'", index, a.Type)
		}
	case AssertVersionCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: version_count 'count' must be >= 0", index)
		}
	case AssertSearch:
		if a.Query == "" {
			return fmt.Errorf("assertions[%d]: search requires 'query'", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}
