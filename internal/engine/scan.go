package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/gate/internal/ir"
)

// diskItem is one non-ignored path found on disk.
type diskItem struct {
	path  string
	isDir bool
	mtime time.Time
}

// scanDisk lists every non-ignored regular file and directory below the
// root, parents before children. Unreadable paths are logged and skipped,
// as are symlinks and special files.
func (e *Engine) scanDisk() ([]diskItem, error) {
	var items []diskItem
	err := filepath.WalkDir(e.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == e.dir {
				return err
			}
			e.logger.Warn("skipping unreadable path", "path", p, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == e.dir {
			return nil
		}

		rel, err := filepath.Rel(e.dir, p)
		if err != nil {
			return err
		}
		rel = normalize(rel)
		if e.ignore.Match(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			e.logger.Debug("skipping special file", "path", rel, "mode", d.Type())
			return nil
		}

		info, err := d.Info()
		if err != nil {
			e.logger.Warn("skipping unreadable path", "path", rel, "error", err)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		items = append(items, diskItem{path: rel, isDir: d.IsDir(), mtime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", e.dir, err)
	}
	return items, nil
}

// create builds a fresh tree from disk.
//
// Every scanned entry and the tree itself share one initial timestamp,
// max(now, newest mtime), so later modifications compare strictly after it
// and time travel to the init time shows the whole scanned tree.
func (e *Engine) create() error {
	items, err := e.scanDisk()
	if err != nil {
		return err
	}

	init := e.clock.Now()
	for _, it := range items {
		if it.mtime.After(init) {
			init = it.mtime.Round(0)
		}
	}
	e.clock.Observe(init)

	e.index.Clear()
	root := e.index.NewEntry(ir.RootPath, nil, true, init)
	e.root = root.ID
	e.initTime = init

	dirs := map[string]*ir.Entry{ir.RootPath: root}
	for _, it := range items {
		parent, ok := dirs[parentPath(it.path)]
		if !ok {
			// Parent was skipped.
			continue
		}
		var data []byte
		if !it.isDir {
			data, err = os.ReadFile(e.abs(it.path))
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
					e.logger.Warn("skipping unreadable file", "path", it.path, "error", err)
					continue
				}
				return fmt.Errorf("scan %s: %w", it.path, err)
			}
		}
		ent := e.index.NewEntry(it.path, data, it.isDir, init)
		parent.Children.Add(ent.ID)
		if it.isDir {
			dirs[it.path] = ent
		}
	}
	return nil
}
