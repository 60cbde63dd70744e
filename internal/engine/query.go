package engine

import (
	"bytes"
	"path"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/gate/internal/ir"
)

// FindByName returns the shallowest entry reachable now whose final path
// component is name, or nil. Ties at one depth go to the smaller path.
func (e *Engine) FindByName(name string) *ir.Entry {
	name = normalize(name)
	var found *ir.Entry
	e.walk(resolveCurrent, func(n node) bool {
		if n.entry.ID != e.root && path.Base(n.state.Path) == name {
			found = n.entry
			return false
		}
		return true
	})
	return found
}

// FindByPath returns the entry reachable now at p, or nil. "." is the root.
func (e *Engine) FindByPath(p string) *ir.Entry {
	p = normalize(p)
	var found *ir.Entry
	e.walk(resolveCurrent, func(n node) bool {
		if n.state.Path == p {
			found = n.entry
			return false
		}
		return true
	})
	return found
}

// FindParent returns the entry whose current children contain child, or
// nil for the root and for detached entries.
func (e *Engine) FindParent(child *ir.Entry) *ir.Entry {
	var found *ir.Entry
	e.walk(resolveCurrent, func(n node) bool {
		if n.state.IsDir && n.state.Children.Contains(child.ID) {
			found = n.entry
			return false
		}
		return true
	})
	return found
}

// Versions returns every version that ever touched the tree, newest first.
// Entries deleted since are included.
func (e *Engine) Versions() []ir.Version {
	seen := make(map[uuid.UUID]bool)
	out := []ir.Version{}
	for _, ent := range e.historical() {
		for _, m := range ent.Mods {
			if seen[m.Version.ID] {
				continue
			}
			seen[m.Version.ID] = true
			out = append(out, m.Version)
		}
	}
	sortVersions(out)
	return out
}

func sortVersions(vs []ir.Version) {
	sort.Slice(vs, func(i, j int) bool {
		if !vs[i].Time.Equal(vs[j].Time) {
			return vs[i].Time.After(vs[j].Time)
		}
		return bytes.Compare(vs[i].ID[:], vs[j].ID[:]) > 0
	})
}

// Listing is one path of the tree at some moment.
type Listing struct {
	ID    uuid.UUID `json:"id"`
	Path  string    `json:"path"`
	IsDir bool      `json:"is_dir"`
	Size  int       `json:"size"`
}

// ListAt returns every path reachable at t, sorted by path. The root is
// omitted.
func (e *Engine) ListAt(t time.Time) []Listing {
	out := []Listing{}
	for _, n := range e.reachableAt(t) {
		out = append(out, Listing{ID: n.entry.ID, Path: n.state.Path, IsDir: n.state.IsDir, Size: len(n.state.Data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Revision is one point in an entry's history.
type Revision struct {
	// Version is nil for the initial snapshot.
	Version *ir.Version `json:"version,omitempty"`
	Time    time.Time   `json:"time"`
	Path    string      `json:"path"`
	Data    []byte      `json:"-"`
}

// History returns the revisions of the entry currently at p, oldest first:
// the initial snapshot, then the state after each version that touched it.
func (e *Engine) History(p string) ([]Revision, error) {
	ent := e.FindByPath(p)
	if ent == nil {
		return nil, &PathError{Op: "history", Path: normalize(p), Err: ErrNotTracked}
	}

	revs := []Revision{{Time: ent.Init, Path: ent.Path, Data: ent.Data}}
	seen := make(map[uuid.UUID]bool)
	for _, m := range ent.Mods {
		if seen[m.Version.ID] {
			continue
		}
		seen[m.Version.ID] = true
		v := m.Version
		st := ResolveAt(ent, v.Time)
		revs = append(revs, Revision{Version: &v, Time: v.Time, Path: st.Path, Data: st.Data})
	}
	return revs, nil
}
