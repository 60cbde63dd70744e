package engine

import (
	"os"
	"sort"

	"github.com/roach88/gate/internal/ir"
)

// ChangeKind classifies one pending change.
type ChangeKind string

const (
	// KindRemoved is a tracked path missing from disk.
	KindRemoved ChangeKind = "rmv"

	// KindNew is a disk path with no tracked entry.
	KindNew ChangeKind = "new"

	// KindModified is a tracked file whose content changed on disk.
	KindModified ChangeKind = "mod"
)

// rank orders kinds within one depth: removals first so a path that
// changed type is freed before it is re-added.
func (k ChangeKind) rank() int {
	switch k {
	case KindRemoved:
		return 0
	case KindNew:
		return 1
	default:
		return 2
	}
}

// Change is one difference between disk and the tracked tree.
type Change struct {
	Path string     `json:"path"`
	Kind ChangeKind `json:"kind"`
}

// ChangedFiles compares disk against the tracked tree, resolving each entry
// at its own Current.
//
// A file counts as modified only when its content differs AND its mtime is
// after the entry's last change. A path that switched between file and
// directory is reported as a removal plus an addition. Ignored and
// unreadable paths never appear.
//
// The result is sorted by depth, then kind (rmv, new, mod), then path.
// Never returns nil on success.
func (e *Engine) ChangedFiles() ([]Change, error) {
	items, err := e.scanDisk()
	if err != nil {
		return nil, err
	}

	tracked := make(map[string]node)
	for _, n := range e.reachableCurrent() {
		tracked[n.state.Path] = n
	}

	changes := []Change{}
	onDisk := make(map[string]bool, len(items))
	for _, it := range items {
		onDisk[it.path] = true
		n, ok := tracked[it.path]
		switch {
		case !ok:
			changes = append(changes, Change{Path: it.path, Kind: KindNew})
		case n.state.IsDir != it.isDir:
			changes = append(changes,
				Change{Path: it.path, Kind: KindRemoved},
				Change{Path: it.path, Kind: KindNew})
		case !it.isDir && e.modified(it, n):
			changes = append(changes, Change{Path: it.path, Kind: KindModified})
		}
	}
	for p := range tracked {
		if !onDisk[p] && !e.ignore.Match(p) {
			changes = append(changes, Change{Path: p, Kind: KindRemoved})
		}
	}

	sortChanges(changes)
	return changes, nil
}

// modified reports whether a tracked file's disk content changed since its
// last recorded change.
func (e *Engine) modified(it diskItem, n node) bool {
	if !it.mtime.After(n.entry.LastChanged()) {
		return false
	}
	data, err := os.ReadFile(e.abs(it.path))
	if err != nil {
		e.logger.Warn("skipping unreadable file", "path", it.path, "error", err)
		return false
	}
	return !ir.SameContent(data, n.state.Data)
}

func sortChanges(changes []Change) {
	sort.SliceStable(changes, func(i, j int) bool {
		a, b := changes[i], changes[j]
		if da, db := depth(a.Path), depth(b.Path); da != db {
			return da < db
		}
		if ra, rb := a.Kind.rank(), b.Kind.rank(); ra != rb {
			return ra < rb
		}
		return a.Path < b.Path
	})
}
