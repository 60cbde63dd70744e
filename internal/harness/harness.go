package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/roach88/gate/internal/engine"
	"github.com/roach88/gate/internal/ignore"
	"github.com/roach88/gate/internal/ir"
	"github.com/roach88/gate/internal/testutil"
	"github.com/roach88/gate/internal/when"
)

// Harness executes one scenario against one directory.
type Harness struct {
	dir    string
	engine *engine.Engine
	clock  *testutil.SteppingClock
	logger *slog.Logger
	labels map[string]ir.Version
}

// Run executes a scenario in a fresh temp directory and returns the result.
//
// Step and assertion mismatches are reported in the Result; the returned
// error is reserved for failures of the harness itself (unwritable temp
// directory, unknown version label).
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "gate-harness-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}
	defer os.RemoveAll(dir)
	return RunIn(context.Background(), dir, scenario)
}

// RunIn executes a scenario in dir, which must be empty.
//
// Execution flow:
// 1. Write the fixture tree and the scenario's extra files
// 2. Initialize the tracked directory
// 3. Execute steps, stopping at the first unexpected engine error
// 4. Evaluate assertions
func RunIn(ctx context.Context, dir string, scenario *Scenario) (*Result, error) {
	if scenario.Fixture != FixtureEmpty {
		if err := writeTree(dir, testutil.CleanDir); err != nil {
			return nil, fmt.Errorf("failed to write fixture: %w", err)
		}
	}
	if err := writeTree(dir, scenario.Files); err != nil {
		return nil, fmt.Errorf("failed to write files: %w", err)
	}

	h := &Harness{
		dir:    dir,
		clock:  testutil.NewSteppingClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		labels: make(map[string]ir.Version),
	}
	if err := h.open(ctx); err != nil {
		return nil, err
	}
	defer h.close()

	result := NewResult()
	for i, step := range scenario.Steps {
		detail, opErr, err := h.apply(ctx, i, step, result)
		if err != nil {
			return nil, fmt.Errorf("steps[%d] %s: %w", i, step.Op, err)
		}
		result.AddStep(i, step.Op, detail)
		h.logger.Info("step completed", "step", i, "op", step.Op, "detail", detail)

		if !checkError(i, step, opErr, result) {
			break
		}
	}

	actx := &AssertionContext{Engine: h.engine, Dir: dir, Labels: h.labels}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) open(ctx context.Context) error {
	e, err := engine.Open(ctx, h.dir, engine.WithClock(h.clock), engine.WithLogger(h.logger))
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	h.engine = e
	return nil
}

func (h *Harness) close() {
	if h.engine != nil {
		h.engine.Close()
		h.engine = nil
	}
}

// apply executes one step. opErr is the engine's answer, checked against
// the step's expected error; err means the harness could not run the step.
func (h *Harness) apply(ctx context.Context, i int, step Step, result *Result) (detail string, opErr, err error) {
	switch step.Op {
	case OpWrite:
		return step.Path, nil, writeFile(h.dir, step.Path, step.Content, h.clock.Between())

	case OpMkdir:
		return step.Path, nil, os.MkdirAll(h.abs(step.Path), 0o755)

	case OpDelete:
		return step.Path, nil, os.RemoveAll(h.abs(step.Path))

	case OpStatus:
		changes, err := h.engine.ChangedFiles()
		if err != nil {
			return "", nil, err
		}
		got := formatChanges(changes)
		compareChanges(i, step, got, result)
		return strings.Join(got, ", "), nil, nil

	case OpCommit:
		res, opErr := h.engine.Commit(ctx)
		if opErr != nil {
			return "", opErr, nil
		}
		got := formatChanges(res.Changes)
		compareChanges(i, step, got, result)
		if res.Empty() {
			return "nothing to commit", nil, nil
		}
		return h.label(res.Version, result) + ": " + strings.Join(got, ", "), nil, nil

	case OpRemove:
		if opErr := h.engine.Remove(ctx, step.Path); opErr != nil {
			return step.Path, opErr, nil
		}
		return h.labelLatest(result) + ": " + step.Path, nil, nil

	case OpMove:
		if opErr := h.engine.Move(ctx, step.Path, step.Into); opErr != nil {
			return step.Path, opErr, nil
		}
		return h.labelLatest(result) + ": " + step.Path + " -> " + step.Into, nil, nil

	case OpTravel:
		target, err := h.resolve(step.To)
		if err != nil {
			return "", nil, err
		}
		var opts []engine.TravelOption
		if step.Force {
			opts = append(opts, engine.WithForce())
		}
		res, opErr := h.engine.TimeTravel(ctx, target, opts...)
		if opErr != nil {
			return step.To, opErr, nil
		}
		return fmt.Sprintf("%s: renamed %d, removed %d, created %d, updated %d",
			step.To, res.Renamed, res.Removed, res.Created, res.Updated), nil, nil

	case OpReopen:
		h.close()
		return "", nil, h.open(ctx)

	case OpSnapshot:
		tree, err := readTree(h.dir)
		if err != nil {
			return "", nil, err
		}
		result.Snapshots = append(result.Snapshots, Snapshot{Name: step.Name, Tree: tree})
		return step.Name, nil, nil
	}
	return "", nil, fmt.Errorf("unknown op %q", step.Op)
}

// label names v with the next free label.
func (h *Harness) label(v ir.Version, result *Result) string {
	name := fmt.Sprintf("v%d", len(h.labels)+1)
	h.labels[name] = v
	result.Labels[name] = v.ID.String()
	return name
}

// labelLatest labels the newest version of the timeline.
func (h *Harness) labelLatest(result *Result) string {
	vs := h.engine.Versions()
	if len(vs) == 0 {
		return ""
	}
	return h.label(vs[0], result)
}

// resolve turns a travel destination into a time.
func (h *Harness) resolve(to string) (time.Time, error) {
	if to == "init" {
		return h.engine.InitTime(), nil
	}
	if v, ok := h.labels[to]; ok {
		return v.Time, nil
	}
	if len(to) > 1 && to[0] == 'v' && strings.Trim(to[1:], "0123456789") == "" {
		return time.Time{}, fmt.Errorf("unknown version label %q", to)
	}
	return when.Parse(to, h.clock.Now())
}

func (h *Harness) abs(rel string) string {
	return filepath.Join(h.dir, filepath.FromSlash(rel))
}

// checkError compares a step's outcome with its expected error. Returns
// false when the scenario cannot continue.
func checkError(i int, step Step, opErr error, result *Result) bool {
	switch {
	case step.Error == "" && opErr == nil:
		return true
	case step.Error == "":
		result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", i, step.Op, opErr))
		return false
	case opErr == nil:
		result.AddError(fmt.Sprintf("steps[%d] %s: expected %s error, got success", i, step.Op, step.Error))
		return true
	case !errors.Is(opErr, errorKinds[step.Error]):
		result.AddError(fmt.Sprintf("steps[%d] %s: expected %s error, got: %v", i, step.Op, step.Error, opErr))
		return false
	}
	return true
}

var errorKinds = map[string]error{
	ErrKindUncommitted:  engine.ErrUncommittedChanges,
	ErrKindNotAtPresent: engine.ErrNotAtPresent,
	ErrKindNotTracked:   engine.ErrNotTracked,
	ErrKindInvalidMove:  engine.ErrInvalidMove,
	ErrKindOccupied:     engine.ErrOccupied,
}

func formatChanges(changes []engine.Change) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, fmt.Sprintf("%s %s", c.Kind, c.Path))
	}
	return out
}

func compareChanges(i int, step Step, got []string, result *Result) {
	if step.Changes == nil {
		return
	}
	if strings.Join(got, "\n") != strings.Join(step.Changes, "\n") || len(got) != len(step.Changes) {
		result.AddError(fmt.Sprintf("steps[%d] %s: changes = %q, want %q", i, step.Op, got, step.Changes))
	}
}

// writeTree creates every path in files below root, parents first. Keys
// ending in "/" are directories.
func writeTree(root string, files map[string]string) error {
	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		p := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(k, "/")))
		if strings.HasSuffix(k, "/") {
			if err := os.MkdirAll(p, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(files[k]), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// writeFile writes content to root/rel stamped with mtime.
func writeFile(root, rel, content string, mtime time.Time) error {
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return err
	}
	return os.Chtimes(p, mtime, mtime)
}

// readTree lists every path below root except the state file and its side
// files. Directories end in "/".
func readTree(root string) (map[string]string, error) {
	tree := make(map[string]string)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, ignore.StateFile) {
			return nil
		}
		if d.IsDir() {
			tree[rel+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		tree[rel] = string(data)
		return nil
	})
	return tree, err
}
