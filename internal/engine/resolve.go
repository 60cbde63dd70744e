package engine

import (
	"time"

	"github.com/roach88/gate/internal/ir"
)

// Resolve returns the entry's effective state after every Mod in its log.
func Resolve(e *ir.Entry) ir.State {
	return resolve(e, nil)
}

// ResolveAt returns the entry's effective state at t: the initial snapshot
// with every Mod whose version time is not after t applied in log order,
// last write wins per field.
//
// The entry is never modified. The returned child set is a copy; Data is
// shared with the log and must be treated as read-only.
func ResolveAt(e *ir.Entry, t time.Time) ir.State {
	return resolve(e, &t)
}

func resolve(e *ir.Entry, stop *time.Time) ir.State {
	st := ir.State{Path: e.Path, Data: e.Data, IsDir: e.IsDir}
	children := e.Children
	for _, m := range e.Mods {
		if stop != nil && m.Version.Time.After(*stop) {
			continue
		}
		switch m.Field {
		case ir.FieldData:
			st.Data = m.Data
		case ir.FieldPath:
			st.Path = m.Path
		case ir.FieldChildren:
			children = m.Children
		}
	}
	if children == nil {
		st.Children = ir.NewIDSet()
	} else {
		st.Children = children.Clone()
	}
	return st
}

// resolveCurrent resolves e at its own logical current time, which is the
// state materialized on disk.
func resolveCurrent(e *ir.Entry) ir.State {
	return ResolveAt(e, e.Current)
}
