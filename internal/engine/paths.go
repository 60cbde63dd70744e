package engine

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/gate/internal/ir"
)

// normalize converts a relative path to the tracked form: slash separated,
// cleaned, NFC normalized. The root is ".".
func normalize(p string) string {
	p = filepath.ToSlash(p)
	p = norm.NFC.String(p)
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	if p == "" || p == "/" {
		return ir.RootPath
	}
	return p
}

// depth returns how many components p has; the root has depth 0.
func depth(p string) int {
	if p == ir.RootPath {
		return 0
	}
	return strings.Count(p, "/") + 1
}

// joinPath appends a single name to a tracked directory path.
func joinPath(dir, name string) string {
	if dir == ir.RootPath {
		return name
	}
	return dir + "/" + name
}

// parentPath returns the tracked path of p's directory.
func parentPath(p string) string {
	return path.Dir(p)
}

// within reports whether p is dir or lies below it.
func within(p, dir string) bool {
	if dir == ir.RootPath {
		return true
	}
	return p == dir || strings.HasPrefix(p, dir+"/")
}

// rebase replaces the from prefix of p with to.
func rebase(p, from, to string) string {
	if p == from {
		return to
	}
	return normalize(joinPath(to, strings.TrimPrefix(p, from+"/")))
}

// abs returns the disk location of a tracked path.
func (e *Engine) abs(rel string) string {
	if rel == ir.RootPath {
		return e.dir
	}
	return filepath.Join(e.dir, filepath.FromSlash(rel))
}

// Rel converts a path given on the command line (absolute, or relative to
// the working directory) into the tracked form.
func (e *Engine) Rel(p string) (string, error) {
	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	rel, err := filepath.Rel(e.dir, absPath)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("resolve %s: outside tracked root %s", p, e.dir)
	}
	return normalize(rel), nil
}
