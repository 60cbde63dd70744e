// Package ignore decides which paths under a tracked root are never
// scanned, detected or committed.
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Reserved names that are always ignored.
const (
	// StateFile is the SQLite state file kept in the tracked root.
	StateFile = ".gate.db"

	// IgnoreFile lists extra names to ignore, one pattern per line.
	IgnoreFile = ".gateignore"

	// ConfigFile is the optional per-root configuration.
	ConfigFile = ".gate.yaml"
)

// reserved patterns cover the state file together with the SQLite side
// files (-wal, -shm, -journal) written next to it.
var reserved = []string{StateFile + "*", IgnoreFile, ConfigFile}

// Matcher matches path components against compiled glob patterns.
type Matcher struct {
	patterns []string
	globs    []glob.Glob
}

// New compiles the reserved names plus extra patterns.
// Blank patterns and '#' comments are skipped.
func New(extra ...string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range append(append([]string{}, reserved...), extra...) {
		if err := m.add(p); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Load builds a matcher from the reserved names, the ignore file in root
// (if present) and extra patterns.
func Load(root string, extra ...string) (*Matcher, error) {
	lines, err := ReadFile(filepath.Join(root, IgnoreFile))
	if err != nil {
		return nil, err
	}
	return New(append(lines, extra...)...)
}

// ReadFile returns the patterns listed in an ignore file.
// A missing file yields no patterns.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ignore file: %w", err)
	}
	return lines, nil
}

func (m *Matcher) add(pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || strings.HasPrefix(pattern, "#") {
		return nil
	}
	// Patterns match single names; a trailing slash is accepted for
	// directories the way people write them in other ignore files.
	pattern = strings.TrimSuffix(pattern, "/")
	g, err := glob.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
	}
	m.patterns = append(m.patterns, pattern)
	m.globs = append(m.globs, g)
	return nil
}

// MatchName reports whether a single path component is ignored.
func (m *Matcher) MatchName(name string) bool {
	for _, g := range m.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Match reports whether a slash-separated relative path is ignored, that
// is whether any of its components matches.
func (m *Matcher) Match(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if part == "" || part == "." {
			continue
		}
		if m.MatchName(part) {
			return true
		}
	}
	return false
}

// Patterns returns the compiled patterns in insertion order.
func (m *Matcher) Patterns() []string {
	out := make([]string, len(m.patterns))
	copy(out, m.patterns)
	return out
}
