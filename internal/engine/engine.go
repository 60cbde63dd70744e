package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/gate/internal/ignore"
	"github.com/roach88/gate/internal/ir"
	"github.com/roach88/gate/internal/store"
)

// Engine owns one tracked tree: its entry index, the ignore rules and the
// state file.
//
// Thread-safety model:
//   - An Engine is not safe for concurrent use
//   - Two Engines must never open the same directory at once
//
// INVARIANTS:
//   - Every entry reachable from the root is in the index
//   - The root's Current is the moment materialized on disk
//   - Mod logs are ordered by version time
type Engine struct {
	dir      string
	store    *store.Store
	index    *Index
	root     uuid.UUID
	initTime time.Time
	clock    Clock
	ignore   *ignore.Matcher
	patterns []string
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock. Used by tests for reproducible times.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithIgnorePatterns adds ignore patterns on top of the reserved names and
// the .gateignore file.
func WithIgnorePatterns(patterns ...string) Option {
	return func(e *Engine) {
		e.patterns = append(e.patterns, patterns...)
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// StatePath returns the state file location for a tracked directory.
func StatePath(dir string) string {
	return filepath.Join(dir, ignore.StateFile)
}

// IsInitialized reports whether dir already has a state file.
func IsInitialized(dir string) bool {
	_, err := os.Stat(StatePath(dir))
	return err == nil
}

// Open loads the tree tracked in dir, or scans dir and creates a new tree
// when no state exists yet.
//
// A state file that exists but cannot be read is reported as
// *store.CorruptStoreError and left untouched.
func Open(ctx context.Context, dir string, opts ...Option) (*Engine, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open %s: not a directory", dir)
	}

	e := &Engine{
		dir:    absDir,
		index:  NewIndex(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	m, err := ignore.Load(absDir, e.patterns...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	e.ignore = m

	st, err := store.Open(StatePath(absDir))
	if err != nil {
		return nil, err
	}
	e.store = st

	if err := e.loadOrCreate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) loadOrCreate(ctx context.Context) error {
	snap, err := e.store.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNoState):
		if e.clock == nil {
			e.clock = NewWallClock()
		}
		if err := e.create(); err != nil {
			return err
		}
		if err := e.save(ctx); err != nil {
			return err
		}
		e.logger.Info("initialized tree",
			"dir", e.dir,
			"entries", e.index.Len(),
			"init", e.initTime)
		return nil
	case err != nil:
		return err
	}

	for _, ent := range snap.Entries {
		if err := e.index.Insert(ent); err != nil {
			return &store.CorruptStoreError{Path: e.store.Path(), Reason: "load", Err: err}
		}
	}
	if e.index.Get(snap.RootID) == nil {
		return &store.CorruptStoreError{
			Path:   e.store.Path(),
			Reason: fmt.Sprintf("root entry %s missing", snap.RootID),
		}
	}
	e.root = snap.RootID
	e.initTime = snap.InitTime

	// Resume after the newest recorded instant.
	floor := e.latestTime()
	if e.clock == nil {
		e.clock = NewWallClockAt(floor)
	} else {
		e.clock.Observe(floor)
	}

	e.logger.Debug("loaded tree",
		"dir", e.dir,
		"entries", e.index.Len(),
		"current", e.Root().Current)
	return nil
}

// latestTime returns the newest instant recorded anywhere in the tree.
func (e *Engine) latestTime() time.Time {
	latest := e.initTime
	for _, ent := range e.index.All() {
		if t := ent.LastChanged(); t.After(latest) {
			latest = t
		}
		if ent.Current.After(latest) {
			latest = ent.Current
		}
	}
	return latest
}

// Close releases the state file.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Dir returns the absolute tracked directory.
func (e *Engine) Dir() string {
	return e.dir
}

// Root returns the root entry.
func (e *Engine) Root() *ir.Entry {
	return e.index.Get(e.root)
}

// InitTime returns the instant the tree was first scanned. Time travel
// never goes before it.
func (e *Engine) InitTime() time.Time {
	return e.initTime
}

// Index returns the entry index.
func (e *Engine) Index() *Index {
	return e.index
}

// Ignore returns the ignore rules in effect.
func (e *Engine) Ignore() *ignore.Matcher {
	return e.ignore
}

// Store returns the state file handle.
func (e *Engine) Store() *store.Store {
	return e.store
}

// AtPresent reports whether the tree on disk is at or after the newest
// version, which is the only moment new history may be written.
func (e *Engine) AtPresent() bool {
	latest, ok := e.latestVersion()
	if !ok {
		return true
	}
	return !e.Root().Current.Before(latest.Time)
}

// latestVersion returns the newest version over every entry in the index.
func (e *Engine) latestVersion() (ir.Version, bool) {
	var latest ir.Version
	found := false
	for _, ent := range e.index.All() {
		if len(ent.Mods) == 0 {
			continue
		}
		v := ent.Mods[len(ent.Mods)-1].Version
		if !found || v.Time.After(latest.Time) {
			latest = v
			found = true
		}
	}
	return latest, found
}

// newVersion mints a version stamped by the clock.
func (e *Engine) newVersion() ir.Version {
	return ir.Version{ID: uuid.Must(uuid.NewV7()), Time: e.clock.Now()}
}

// advance marks the root as materialized at v.
func (e *Engine) advance(v ir.Version) {
	root := e.Root()
	if v.Time.After(root.Current) {
		root.Current = v.Time
	}
}

// save persists the whole tree.
func (e *Engine) save(ctx context.Context) error {
	snap := &store.Snapshot{
		RootID:   e.root,
		InitTime: e.initTime,
		Entries:  e.index.All(),
	}
	if err := e.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save tree: %w", err)
	}
	return nil
}

// node is an entry paired with its resolved state.
type node struct {
	entry *ir.Entry
	state ir.State
}

// walk visits every entry reachable from the root in breadth-first order,
// resolving each with at. Children are visited in path order. The root is
// visited first. Returning false from visit stops the walk.
func (e *Engine) walk(at func(*ir.Entry) ir.State, visit func(n node) bool) {
	root := e.Root()
	queue := []node{{entry: root, state: at(root)}}
	seen := map[uuid.UUID]bool{root.ID: true}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if !visit(n) {
			return
		}
		if !n.state.IsDir {
			continue
		}
		kids := make([]node, 0, n.state.Children.Cardinality())
		for _, id := range ir.SortedIDs(n.state.Children) {
			if seen[id] {
				continue
			}
			child := e.index.Get(id)
			if child == nil {
				e.logger.Warn("dangling child reference", "parent", n.entry.ID, "child", id)
				continue
			}
			seen[id] = true
			kids = append(kids, node{entry: child, state: at(child)})
		}
		sort.SliceStable(kids, func(i, j int) bool {
			return kids[i].state.Path < kids[j].state.Path
		})
		queue = append(queue, kids...)
	}
}

// reachableCurrent returns every entry reachable at each entry's own
// Current, keyed by identifier, excluding the root.
func (e *Engine) reachableCurrent() map[uuid.UUID]node {
	out := make(map[uuid.UUID]node)
	e.walk(resolveCurrent, func(n node) bool {
		if n.entry.ID != e.root {
			out[n.entry.ID] = n
		}
		return true
	})
	return out
}

// reachableAt returns every entry reachable at t, excluding the root.
func (e *Engine) reachableAt(t time.Time) map[uuid.UUID]node {
	out := make(map[uuid.UUID]node)
	at := func(ent *ir.Entry) ir.State { return ResolveAt(ent, t) }
	e.walk(at, func(n node) bool {
		if n.entry.ID != e.root {
			out[n.entry.ID] = n
		}
		return true
	})
	return out
}

// historical returns every entry that was ever a descendant of the root,
// following the union of each directory's base children and every children
// Mod. Entries are ordered by identifier.
func (e *Engine) historical() []*ir.Entry {
	root := e.Root()
	seen := map[uuid.UUID]bool{root.ID: true}
	queue := []*ir.Entry{root}
	var out []*ir.Entry
	for len(queue) > 0 {
		ent := queue[0]
		queue = queue[1:]
		out = append(out, ent)
		if !ent.IsDir {
			continue
		}
		union := ir.NewIDSet()
		if ent.Children != nil {
			union = union.Union(ent.Children)
		}
		for _, m := range ent.Mods {
			if m.Field == ir.FieldChildren && m.Children != nil {
				union = union.Union(m.Children)
			}
		}
		for _, id := range ir.SortedIDs(union) {
			if seen[id] {
				continue
			}
			seen[id] = true
			if child := e.index.Get(id); child != nil {
				queue = append(queue, child)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
