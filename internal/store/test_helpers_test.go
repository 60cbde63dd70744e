package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/gate/internal/ir"
)

// createTestStore opens a store in a temp directory, closed on cleanup.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testBase = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func testTime(sec int) time.Time {
	return testBase.Add(time.Duration(sec) * time.Second)
}

func testVersion(sec int) ir.Version {
	return ir.Version{ID: uuid.Must(uuid.NewV7()), Time: testTime(sec)}
}

func newTestEntry(path string, data []byte, isDir bool) *ir.Entry {
	e := &ir.Entry{
		ID:       uuid.Must(uuid.NewV7()),
		Path:     path,
		IsDir:    isDir,
		Init:     testTime(0),
		Current:  testTime(0),
		Children: ir.NewIDSet(),
	}
	if !isDir {
		e.Data = data
	}
	return e
}

// createTestSnapshot builds a root with one file that has been modified
// and renamed, plus a directory whose children changed.
func createTestSnapshot() *Snapshot {
	root := newTestEntry(ir.RootPath, nil, true)
	dir := newTestEntry("dir", nil, true)
	file := newTestEntry("a.txt", []byte("one"), false)
	root.Children.Add(dir.ID)
	root.Children.Add(file.ID)

	v1 := testVersion(10)
	file.Append(ir.DataMod(v1, []byte("two")))

	v2 := testVersion(20)
	file.Append(ir.PathMod(v2, "dir/a.txt"))
	root.Append(ir.ChildrenMod(v2, ir.NewIDSet(dir.ID)))
	dir.Append(ir.ChildrenMod(v2, ir.NewIDSet(file.ID)))

	return &Snapshot{
		RootID:   root.ID,
		InitTime: testTime(0),
		Entries:  []*ir.Entry{root, dir, file},
	}
}

func findEntry(snap *Snapshot, id uuid.UUID) *ir.Entry {
	for _, e := range snap.Entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}
