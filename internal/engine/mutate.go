package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/roach88/gate/internal/ir"
)

// Remove deletes a tracked path from the tree and from disk under one new
// version. The entry stays in the index so the path remains visible in the
// past.
func (e *Engine) Remove(ctx context.Context, p string) error {
	p = normalize(p)
	if !e.AtPresent() {
		return ErrNotAtPresent
	}
	if p == ir.RootPath {
		return &PathError{Op: "remove", Path: p, Err: ErrInvalidMove}
	}
	ent := e.FindByPath(p)
	if ent == nil {
		return &PathError{Op: "remove", Path: p, Err: ErrNotTracked}
	}
	parent := e.FindParent(ent)
	if parent == nil {
		return &PathError{Op: "remove", Path: p, Err: ErrNotTracked}
	}

	if err := os.RemoveAll(e.abs(p)); err != nil {
		return &PathError{Op: "remove", Path: p, Err: err}
	}

	v := e.newVersion()
	kids := resolveCurrent(parent).Children
	kids.Remove(ent.ID)
	parent.Append(ir.ChildrenMod(v, kids))
	e.advance(v)

	if err := e.save(ctx); err != nil {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	e.logger.Info("removed", "path", p, "version", v.ID)
	return nil
}

// Move relocates a tracked path into a tracked directory, keeping its name,
// under one new version. The moved entry and every descendant get a path
// Mod, and both parents get a children Mod.
//
// Returns ErrInvalidMove when dstDir is not a directory, lies inside the
// moved subtree, or already holds an item with the same name.
func (e *Engine) Move(ctx context.Context, src, dstDir string) error {
	src, dstDir = normalize(src), normalize(dstDir)
	if !e.AtPresent() {
		return ErrNotAtPresent
	}
	if src == ir.RootPath {
		return &PathError{Op: "move", Path: src, Err: ErrInvalidMove}
	}
	ent := e.FindByPath(src)
	if ent == nil {
		return &PathError{Op: "move", Path: src, Err: ErrNotTracked}
	}
	dst := e.FindByPath(dstDir)
	if dst == nil {
		return &PathError{Op: "move", Path: dstDir, Err: ErrNotTracked}
	}
	if !dst.IsDir {
		return &PathError{Op: "move", Path: dstDir, Err: fmt.Errorf("%w: destination is not a directory", ErrInvalidMove)}
	}
	if within(dstDir, src) {
		return &PathError{Op: "move", Path: dstDir, Err: fmt.Errorf("%w: destination is inside %s", ErrInvalidMove, src)}
	}
	oldParent := e.FindParent(ent)
	if oldParent == nil {
		return &PathError{Op: "move", Path: src, Err: ErrNotTracked}
	}
	if oldParent.ID == dst.ID {
		return nil
	}

	target := joinPath(dstDir, path.Base(src))
	if e.FindByPath(target) != nil {
		return &PathError{Op: "move", Path: target, Err: fmt.Errorf("%w: destination exists", ErrInvalidMove)}
	}
	if _, err := os.Lstat(e.abs(target)); err == nil {
		return &PathError{Op: "move", Path: target, Err: fmt.Errorf("%w: destination exists on disk", ErrInvalidMove)}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &PathError{Op: "move", Path: target, Err: err}
	}

	// Collect the subtree before any Mod changes resolved paths.
	var subtree []node
	e.walk(resolveCurrent, func(n node) bool {
		if n.entry.ID != e.root && within(n.state.Path, src) {
			subtree = append(subtree, n)
		}
		return true
	})

	if err := os.Rename(e.abs(src), e.abs(target)); err != nil {
		return &PathError{Op: "move", Path: src, Err: err}
	}

	v := e.newVersion()
	from := resolveCurrent(oldParent).Children
	from.Remove(ent.ID)
	oldParent.Append(ir.ChildrenMod(v, from))
	to := resolveCurrent(dst).Children
	to.Add(ent.ID)
	dst.Append(ir.ChildrenMod(v, to))
	for _, n := range subtree {
		n.entry.Append(ir.PathMod(v, rebase(n.state.Path, src, target)))
	}
	e.advance(v)

	if err := e.save(ctx); err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}
	e.logger.Info("moved", "from", src, "to", target, "version", v.ID, "entries", len(subtree))
	return nil
}
