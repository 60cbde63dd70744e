package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/gate/internal/ir"
)

// TravelOption configures TimeTravel.
type TravelOption func(*travelConfig)

type travelConfig struct {
	force bool
}

// WithForce skips the uncommitted-changes check. Every tracked file is
// rewritten from history wherever disk differs from the target, so pending
// edits are lost. Untracked files are never overwritten.
func WithForce() TravelOption {
	return func(c *travelConfig) {
		c.force = true
	}
}

// TravelResult summarizes one time travel.
type TravelResult struct {
	Target  time.Time `json:"target"`
	Renamed int       `json:"renamed"`
	Removed int       `json:"removed"`
	Created int       `json:"created"`
	Updated int       `json:"updated"`
}

// TimeTravel rewrites disk so the tracked tree matches its state at target.
//
// Targets before the tree's init time are clamped to it. Travelling
// backwards (or sideways) with uncommitted changes fails with
// ErrUncommittedChanges unless WithForce is given; travelling forward only
// replays recorded history, so it is always allowed.
//
// Disk is reconciled in four phases over the entries reachable now (C) and
// at target (T):
//  1. entries in both whose path differs are renamed, shallowest target first
//  2. entries only in C are deleted, deepest first
//  3. entries only in T are created, shallowest first
//  4. files in both whose content differs (or that went missing) are rewritten
//
// An untracked path in the way of a rename or creation fails the travel
// with ErrOccupied, forced or not. A creation whose path already holds
// exactly the wanted content counts as done.
//
// Renames are skipped when the source is gone and the destination exists.
// An interrupted run leaves disk between two states, so repeating it needs
// WithForce.
func (e *Engine) TimeTravel(ctx context.Context, target time.Time, opts ...TravelOption) (TravelResult, error) {
	cfg := travelConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	target = target.Round(0)
	if target.Before(e.initTime) {
		target = e.initTime
	}
	root := e.Root()

	if !cfg.force && !root.Current.Before(target) {
		changes, err := e.ChangedFiles()
		if err != nil {
			return TravelResult{}, fmt.Errorf("time travel: %w", err)
		}
		if len(changes) > 0 {
			return TravelResult{}, fmt.Errorf("%w (%d pending)", ErrUncommittedChanges, len(changes))
		}
	}

	t := &traveller{
		e:       e,
		current: e.reachableCurrent(),
		wanted:  e.reachableAt(target),
		live:    make(map[uuid.UUID]string),
		force:   cfg.force,
		result:  TravelResult{Target: target},
	}
	for id, n := range t.current {
		t.live[id] = n.state.Path
	}

	if err := t.run(); err != nil {
		// Partial progress stays on disk; history is untouched and the
		// same travel can be retried.
		return t.result, fmt.Errorf("time travel to %s: %w", target.Format(time.RFC3339Nano), err)
	}

	root.Current = target
	for id := range t.current {
		e.index.Get(id).Current = target
	}
	for id := range t.wanted {
		e.index.Get(id).Current = target
	}

	if err := e.save(ctx); err != nil {
		return t.result, fmt.Errorf("time travel: %w", err)
	}
	e.logger.Info("time traveled",
		"target", target,
		"renamed", t.result.Renamed,
		"removed", t.result.Removed,
		"created", t.result.Created,
		"updated", t.result.Updated)
	return t.result, nil
}

// traveller holds one time travel's working state.
type traveller struct {
	e       *Engine
	current map[uuid.UUID]node
	wanted  map[uuid.UUID]node

	// live tracks where each current entry sits on disk as renames proceed.
	live map[uuid.UUID]string

	force  bool
	result TravelResult
}

func (t *traveller) run() error {
	if err := t.renames(); err != nil {
		return err
	}
	t.removals()
	if err := t.creations(); err != nil {
		return err
	}
	return t.rewrites()
}

func (t *traveller) renames() error {
	var ids []uuid.UUID
	for id, cur := range t.current {
		if want, ok := t.wanted[id]; ok && want.state.Path != cur.state.Path {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := t.wanted[ids[i]].state.Path, t.wanted[ids[j]].state.Path
		if da, db := depth(a), depth(b); da != db {
			return da < db
		}
		return a < b
	})

	for _, id := range ids {
		if err := t.rename(id, t.wanted[id].state.Path); err != nil {
			return err
		}
	}
	return nil
}

func (t *traveller) rename(id uuid.UUID, dst string) error {
	src := t.live[id]
	if src == dst {
		return nil
	}
	srcAbs, dstAbs := t.e.abs(src), t.e.abs(dst)

	srcExists, err := exists(srcAbs)
	if err != nil {
		return err
	}
	dstExists, err := exists(dstAbs)
	if err != nil {
		return err
	}
	if !srcExists {
		if !dstExists {
			t.e.logger.Warn("rename source missing", "from", src, "to", dst)
		}
		t.move(src, dst)
		return nil
	}

	if dstExists {
		occupant, ok := t.occupant(dst, id)
		if !ok {
			return &PathError{Op: "time travel", Path: dst, Err: ErrOccupied}
		}
		aside := fmt.Sprintf("%s.gate-%s", dst, occupant.String()[:8])
		if err := os.Rename(dstAbs, t.e.abs(aside)); err != nil {
			return &PathError{Op: "time travel", Path: dst, Err: err}
		}
		t.move(dst, aside)
	}

	if err := os.MkdirAll(filepath.Dir(dstAbs), 0o755); err != nil {
		return &PathError{Op: "time travel", Path: dst, Err: err}
	}
	if err := os.Rename(srcAbs, dstAbs); err != nil {
		return &PathError{Op: "time travel", Path: src, Err: err}
	}
	t.move(src, dst)
	t.result.Renamed++
	return nil
}

// move updates live paths for everything at or below from.
func (t *traveller) move(from, to string) {
	for id, p := range t.live {
		if within(p, from) {
			t.live[id] = rebase(p, from, to)
		}
	}
}

// occupant finds the current entry, other than self, living at p.
func (t *traveller) occupant(p string, self uuid.UUID) (uuid.UUID, bool) {
	for id, lp := range t.live {
		if id != self && lp == p {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (t *traveller) removals() {
	var ids []uuid.UUID
	for id := range t.current {
		if _, ok := t.wanted[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := t.live[ids[i]], t.live[ids[j]]
		if da, db := depth(a), depth(b); da != db {
			return da > db
		}
		return a < b
	})

	for _, id := range ids {
		p := t.live[id]
		if err := os.RemoveAll(t.e.abs(p)); err != nil {
			t.e.logger.Warn("remove failed", "path", p, "error", err)
			continue
		}
		t.result.Removed++
	}
}

func (t *traveller) creations() error {
	var ids []uuid.UUID
	for id := range t.wanted {
		if _, ok := t.current[id]; !ok {
			ids = append(ids, id)
		}
	}
	t.sortWanted(ids)

	for _, id := range ids {
		st := t.wanted[id].state
		done, err := t.claim(st)
		if err != nil {
			return err
		}
		if done {
			continue
		}
		if err := t.materialize(st); err != nil {
			return err
		}
		t.result.Created++
	}
	return nil
}

// claim checks the path a created entry needs. It reports true when disk
// already holds st there, and fails with ErrOccupied when something else
// that no current entry accounts for is in the way.
func (t *traveller) claim(st ir.State) (bool, error) {
	p := t.e.abs(st.Path)
	info, err := os.Lstat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &PathError{Op: "time travel", Path: st.Path, Err: err}
	}
	if _, ok := t.occupant(st.Path, uuid.Nil); ok {
		return false, nil
	}
	if st.IsDir && info.IsDir() {
		return true, nil
	}
	if !st.IsDir && info.Mode().IsRegular() {
		data, err := os.ReadFile(p)
		if err != nil {
			return false, &PathError{Op: "time travel", Path: st.Path, Err: err}
		}
		if ir.SameContent(st.Data, data) {
			return true, nil
		}
	}
	return false, &PathError{Op: "time travel", Path: st.Path, Err: ErrOccupied}
}

func (t *traveller) rewrites() error {
	var ids []uuid.UUID
	for id := range t.wanted {
		if _, ok := t.current[id]; ok {
			ids = append(ids, id)
		}
	}
	t.sortWanted(ids)

	for _, id := range ids {
		want, cur := t.wanted[id].state, t.current[id].state
		var settled bool
		var err error
		if t.force {
			settled, err = t.matchesDisk(want)
		} else {
			settled, err = exists(t.e.abs(want.Path))
			settled = settled && (want.IsDir || ir.SameContent(want.Data, cur.Data))
		}
		if err != nil {
			return err
		}
		if settled {
			continue
		}
		if err := t.materialize(want); err != nil {
			return err
		}
		t.result.Updated++
	}
	return nil
}

// matchesDisk reports whether disk holds want exactly. A path of the wrong
// type is cleared so want can be written in its place.
func (t *traveller) matchesDisk(want ir.State) (bool, error) {
	p := t.e.abs(want.Path)
	info, err := os.Lstat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &PathError{Op: "time travel", Path: want.Path, Err: err}
	}
	switch {
	case want.IsDir && info.IsDir():
		return true, nil
	case !want.IsDir && info.Mode().IsRegular():
		data, err := os.ReadFile(p)
		if err != nil {
			return false, &PathError{Op: "time travel", Path: want.Path, Err: err}
		}
		return ir.SameContent(want.Data, data), nil
	}
	if err := os.RemoveAll(p); err != nil {
		return false, &PathError{Op: "time travel", Path: want.Path, Err: err}
	}
	return false, nil
}

func (t *traveller) sortWanted(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := t.wanted[ids[i]].state.Path, t.wanted[ids[j]].state.Path
		if da, db := depth(a), depth(b); da != db {
			return da < db
		}
		return a < b
	})
}

// materialize writes one resolved state to disk.
func (t *traveller) materialize(st ir.State) error {
	p := t.e.abs(st.Path)
	if st.IsDir {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return &PathError{Op: "time travel", Path: st.Path, Err: err}
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return &PathError{Op: "time travel", Path: st.Path, Err: err}
	}
	if err := os.WriteFile(p, st.Data, 0o644); err != nil {
		return &PathError{Op: "time travel", Path: st.Path, Err: err}
	}
	return nil
}

func exists(p string) (bool, error) {
	_, err := os.Lstat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
