package engine

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/gate/internal/ir"
)

// CommitResult describes one finished commit.
type CommitResult struct {
	Version ir.Version `json:"version"`
	Changes []Change   `json:"changes"`
}

// Empty reports whether the commit recorded nothing.
func (r CommitResult) Empty() bool {
	return len(r.Changes) == 0
}

// Commit records every pending change under one new version.
//
// Removed paths become children Mods on their parents, new paths become new
// entries (directories start empty; their contents arrive as their own new
// changes), and modified files get a data Mod. Each parent receives at most
// one children Mod per commit.
//
// Returns ErrNotAtPresent when the tree is materialized in the past. A
// commit with no changes writes no Mods and leaves the tree untouched.
func (e *Engine) Commit(ctx context.Context) (CommitResult, error) {
	if !e.AtPresent() {
		return CommitResult{}, ErrNotAtPresent
	}

	changes, err := e.ChangedFiles()
	if err != nil {
		return CommitResult{}, fmt.Errorf("commit: %w", err)
	}
	if len(changes) == 0 {
		return CommitResult{Changes: []Change{}}, nil
	}

	v := e.newVersion()
	c := newCommitter(e, v)
	for _, ch := range changes {
		switch ch.Kind {
		case KindRemoved:
			c.remove(ch.Path)
		case KindNew:
			c.add(ch.Path)
		case KindModified:
			c.modify(ch.Path)
		}
	}
	c.flush()
	if len(c.applied) == 0 {
		return CommitResult{Changes: []Change{}}, nil
	}
	e.advance(v)

	if err := e.save(ctx); err != nil {
		return CommitResult{}, fmt.Errorf("commit: %w", err)
	}
	e.logger.Info("committed",
		"version", v.ID,
		"time", v.Time,
		"changes", len(c.applied))
	e.logger.Debug("commit details", "version", v.ID, "changes", describe(c.applied))
	return CommitResult{Version: v, Changes: c.applied}, nil
}

// committer accumulates one commit's edits.
type committer struct {
	e      *Engine
	v      ir.Version
	byPath map[string]*ir.Entry

	// Pending child sets, flushed as one children Mod per parent.
	pending map[uuid.UUID]ir.IDSet
	order   []uuid.UUID

	applied []Change
}

func newCommitter(e *Engine, v ir.Version) *committer {
	byPath := map[string]*ir.Entry{ir.RootPath: e.Root()}
	for _, n := range e.reachableCurrent() {
		byPath[n.state.Path] = n.entry
	}
	return &committer{
		e:       e,
		v:       v,
		byPath:  byPath,
		pending: make(map[uuid.UUID]ir.IDSet),
	}
}

// children returns the pending child set of parent, seeded from its
// current state on first use.
func (c *committer) children(parent *ir.Entry) ir.IDSet {
	if s, ok := c.pending[parent.ID]; ok {
		return s
	}
	s := resolveCurrent(parent).Children
	c.pending[parent.ID] = s
	c.order = append(c.order, parent.ID)
	return s
}

func (c *committer) remove(p string) {
	ent, ok := c.byPath[p]
	if !ok {
		return
	}
	parent, ok := c.byPath[parentPath(p)]
	if !ok {
		return
	}
	c.children(parent).Remove(ent.ID)
	for q := range c.byPath {
		if within(q, p) {
			delete(c.byPath, q)
		}
	}
	c.applied = append(c.applied, Change{Path: p, Kind: KindRemoved})
}

func (c *committer) add(p string) {
	parent, ok := c.byPath[parentPath(p)]
	if !ok || !parent.IsDir {
		c.e.logger.Warn("skipping path without tracked parent", "path", p)
		return
	}
	info, err := os.Lstat(c.e.abs(p))
	if err != nil {
		c.e.logger.Warn("skipping unreadable path", "path", p, "error", err)
		return
	}

	var ent *ir.Entry
	if info.IsDir() {
		ent = c.e.index.NewEntry(p, nil, true, c.v.Time)
	} else {
		data, err := os.ReadFile(c.e.abs(p))
		if err != nil {
			c.e.logger.Warn("skipping unreadable file", "path", p, "error", err)
			return
		}
		ent = c.e.index.NewEntry(p, data, false, c.v.Time)
	}
	c.children(parent).Add(ent.ID)
	c.byPath[p] = ent
	c.applied = append(c.applied, Change{Path: p, Kind: KindNew})
}

func (c *committer) modify(p string) {
	ent, ok := c.byPath[p]
	if !ok || ent.IsDir {
		return
	}
	data, err := os.ReadFile(c.e.abs(p))
	if err != nil {
		c.e.logger.Warn("skipping unreadable file", "path", p, "error", err)
		return
	}
	ent.Append(ir.DataMod(c.v, data))
	c.applied = append(c.applied, Change{Path: p, Kind: KindModified})
}

// flush writes one children Mod per parent whose child set changed.
func (c *committer) flush() {
	for _, id := range c.order {
		parent := c.e.index.Get(id)
		next := c.pending[id]
		if ir.SameIDs(resolveCurrent(parent).Children, next) {
			continue
		}
		parent.Append(ir.ChildrenMod(c.v, next))
	}
}

// describe renders a change list for logs.
func describe(changes []Change) string {
	parts := make([]string, 0, len(changes))
	for _, ch := range changes {
		parts = append(parts, string(ch.Kind)+" "+ch.Path)
	}
	return strings.Join(parts, ", ")
}
