package engine

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/gate/internal/ir"
)

// Index owns every entry of one tree, keyed by identifier.
//
// Entries are created only through NewEntry (or inserted once when a tree
// is loaded), and are never dropped when a path is deleted: deletion is a
// children Mod on the parent, so history stays queryable.
type Index struct {
	entries map[uuid.UUID]*ir.Entry
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[uuid.UUID]*ir.Entry)}
}

// NewEntry constructs an entry with a fresh UUIDv7 identifier and inserts
// it. Init and Current are both set to init.
func (ix *Index) NewEntry(path string, data []byte, isDir bool, init time.Time) *ir.Entry {
	e := &ir.Entry{
		ID:       uuid.Must(uuid.NewV7()),
		Path:     path,
		IsDir:    isDir,
		Init:     init,
		Current:  init,
		Children: ir.NewIDSet(),
	}
	if !isDir {
		e.Data = data
	}
	ix.entries[e.ID] = e
	return e
}

// Insert adds an existing entry. Used when loading a saved tree.
func (ix *Index) Insert(e *ir.Entry) error {
	if _, ok := ix.entries[e.ID]; ok {
		return fmt.Errorf("index: duplicate entry %s", e.ID)
	}
	if e.Children == nil {
		e.Children = ir.NewIDSet()
	}
	ix.entries[e.ID] = e
	return nil
}

// Get returns the entry with the given identifier, or nil.
func (ix *Index) Get(id uuid.UUID) *ir.Entry {
	return ix.entries[id]
}

// Remove drops an entry from the index.
func (ix *Index) Remove(id uuid.UUID) {
	delete(ix.entries, id)
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// All returns every entry ordered by identifier. UUIDv7 identifiers sort by
// creation time.
func (ix *Index) All() []*ir.Entry {
	out := make([]*ir.Entry, 0, len(ix.entries))
	for _, e := range ix.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}

// Clear removes every entry.
func (ix *Index) Clear() {
	clear(ix.entries)
}
