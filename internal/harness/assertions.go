package harness

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/gate/internal/engine"
	"github.com/roach88/gate/internal/ir"
)

// AssertionContext is what assertions are evaluated against.
type AssertionContext struct {
	Engine *engine.Engine
	Dir    string
	Labels map[string]ir.Version
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Subject  string // Path or query the assertion is about
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s %s\n", e.Type, e.Subject)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages, in order.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	errs := []string{}
	for _, a := range assertions {
		if err := evaluate(a, actx); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertFileContent:
		return assertFileContent(actx.Dir, a)
	case AssertExists:
		return assertPresence(actx.Dir, a, true)
	case AssertAbsent:
		return assertPresence(actx.Dir, a, false)
	case AssertVersionCount:
		return assertVersionCount(actx.Engine, a)
	case AssertSearch:
		return assertSearch(actx, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertFileContent(dir string, a Assertion) error {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(a.Path)))
	if err != nil {
		return &AssertionError{Type: a.Type, Subject: a.Path, Expected: fmt.Sprintf("%q", a.Content), Actual: err.Error()}
	}
	if string(data) != a.Content {
		return &AssertionError{Type: a.Type, Subject: a.Path, Expected: fmt.Sprintf("%q", a.Content), Actual: fmt.Sprintf("%q", data)}
	}
	return nil
}

func assertPresence(dir string, a Assertion, want bool) error {
	_, err := os.Lstat(filepath.Join(dir, filepath.FromSlash(a.Path)))
	switch {
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return &AssertionError{Type: a.Type, Subject: a.Path, Expected: "a readable path", Actual: err.Error()}
	case want && err != nil:
		return &AssertionError{Type: a.Type, Subject: a.Path, Expected: "present", Actual: "absent"}
	case !want && err == nil:
		return &AssertionError{Type: a.Type, Subject: a.Path, Expected: "absent", Actual: "present"}
	}
	return nil
}

func assertVersionCount(e *engine.Engine, a Assertion) error {
	if n := len(e.Versions()); n != a.Count {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprint(a.Count), Actual: fmt.Sprint(n)}
	}
	return nil
}

func assertSearch(actx *AssertionContext, a Assertion) error {
	names := make(map[string]string, len(actx.Labels))
	for label, v := range actx.Labels {
		names[v.ID.String()] = label
	}

	got := []string{}
	for _, h := range actx.Engine.SearchAll(a.Query) {
		label := "init"
		if h.Version != nil {
			label = h.Version.ID.String()
			if name, ok := names[label]; ok {
				label = name
			}
		}
		got = append(got, h.Path+"@"+label)
	}

	if strings.Join(got, ",") != strings.Join(a.Hits, ",") {
		return &AssertionError{Type: a.Type, Subject: a.Query, Expected: fmt.Sprintf("%q", a.Hits), Actual: fmt.Sprintf("%q", got)}
	}
	return nil
}
