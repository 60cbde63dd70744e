package ir

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RootPath is the relative path of the tracked root entry.
const RootPath = "."

// Version identifies one commit. Every Mod written by the same commit
// shares the same Version.
type Version struct {
	ID   uuid.UUID `json:"id"`
	Time time.Time `json:"time"`
}

// String renders the version for logs and CLI output.
func (v Version) String() string {
	return fmt.Sprintf("%s@%s", v.ID, v.Time.Format(time.RFC3339Nano))
}

// Field names one versioned attribute of an Entry.
type Field string

const (
	// FieldData is the file content.
	FieldData Field = "data"

	// FieldPath is the location relative to the tracked root.
	FieldPath Field = "path"

	// FieldChildren is the set of child identifiers (directories only).
	FieldChildren Field = "children"
)

// Valid reports whether f is one of the known fields.
func (f Field) Valid() bool {
	switch f {
	case FieldData, FieldPath, FieldChildren:
		return true
	}
	return false
}

// Mod is one field-level change record.
//
// Only the value matching Field is meaningful. Mods are appended to an
// Entry's log and never edited afterwards; Children must not be mutated
// once the Mod is in a log.
type Mod struct {
	Version  Version
	Field    Field
	Data     []byte
	Path     string
	Children IDSet
}

// DataMod builds a content change.
func DataMod(v Version, data []byte) Mod {
	return Mod{Version: v, Field: FieldData, Data: data}
}

// PathMod builds a location change.
func PathMod(v Version, path string) Mod {
	return Mod{Version: v, Field: FieldPath, Path: path}
}

// ChildrenMod builds a child-set change. The set is copied.
func ChildrenMod(v Version, children IDSet) Mod {
	if children == nil {
		return Mod{Version: v, Field: FieldChildren, Children: NewIDSet()}
	}
	return Mod{Version: v, Field: FieldChildren, Children: children.Clone()}
}

// Entry is the tracked representation of one file or directory.
//
// Path, Data and Children hold the initial snapshot; the effective values
// at any time are obtained by folding Mods over them. Current marks which
// point of the entry's history is materialized on disk.
type Entry struct {
	ID       uuid.UUID
	Path     string
	Data     []byte
	IsDir    bool
	Init     time.Time
	Mods     []Mod
	Children IDSet
	Current  time.Time
}

// LastChanged returns the time of the newest Mod, or Init when the log is empty.
func (e *Entry) LastChanged() time.Time {
	if len(e.Mods) == 0 {
		return e.Init
	}
	return e.Mods[len(e.Mods)-1].Version.Time
}

// Append adds m to the log and moves Current to the Mod's version time.
func (e *Entry) Append(m Mod) {
	e.Mods = append(e.Mods, m)
	e.Current = m.Version.Time
}

// State is an Entry's effective attributes at one point in time.
type State struct {
	Path     string
	Data     []byte
	Children IDSet
	IsDir    bool
}
