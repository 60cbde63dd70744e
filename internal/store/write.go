package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/gate/internal/ir"
)

// Snapshot is the complete persisted form of one tree.
type Snapshot struct {
	RootID   uuid.UUID
	InitTime time.Time
	Entries  []*ir.Entry
}

// Meta keys.
const (
	metaRootID      = "root_id"
	metaInitTime    = "init_time"
	metaToolVersion = "tool_version"
)

// Save writes the whole snapshot in one transaction.
//
// History is append-only: versions and mods use ON CONFLICT DO NOTHING, so
// rows written by an earlier Save are left untouched. Entry rows are
// inserted once and afterwards only their current column is refreshed.
func (s *Store) Save(ctx context.Context, snap *Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	meta := map[string]string{
		metaRootID:      snap.RootID.String(),
		metaInitTime:    strconv.FormatInt(toNanos(snap.InitTime), 10),
		metaToolVersion: ir.ToolVersion,
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, v); err != nil {
			return fmt.Errorf("save: meta %s: %w", k, err)
		}
	}

	entryStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (id, path, data, is_dir, init, current, children)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET current = excluded.current
	`)
	if err != nil {
		return fmt.Errorf("save: prepare entries: %w", err)
	}
	defer entryStmt.Close()

	versionStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO versions (id, time) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("save: prepare versions: %w", err)
	}
	defer versionStmt.Close()

	modStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO mods (entry_id, seq, version_id, field, value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(entry_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("save: prepare mods: %w", err)
	}
	defer modStmt.Close()

	// Entries first so every mod's foreign key resolves.
	for _, e := range snap.Entries {
		children, err := marshalChildren(e.Children)
		if err != nil {
			return fmt.Errorf("save: entry %s: %w", e.ID, err)
		}
		var data []byte
		if !e.IsDir {
			data = e.Data
			if data == nil {
				data = []byte{}
			}
		}
		if _, err := entryStmt.ExecContext(ctx,
			e.ID.String(),
			e.Path,
			data,
			boolToInt(e.IsDir),
			toNanos(e.Init),
			toNanos(e.Current),
			children,
		); err != nil {
			return fmt.Errorf("save: entry %s: %w", e.ID, err)
		}
	}

	for _, e := range snap.Entries {
		for seq, m := range e.Mods {
			if _, err := versionStmt.ExecContext(ctx, m.Version.ID.String(), toNanos(m.Version.Time)); err != nil {
				return fmt.Errorf("save: version %s: %w", m.Version.ID, err)
			}
			value, err := marshalModValue(m)
			if err != nil {
				return fmt.Errorf("save: entry %s mod %d: %w", e.ID, seq, err)
			}
			if _, err := modStmt.ExecContext(ctx,
				e.ID.String(),
				seq,
				m.Version.ID.String(),
				string(m.Field),
				value,
			); err != nil {
				return fmt.Errorf("save: entry %s mod %d: %w", e.ID, seq, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save: commit: %w", err)
	}

	return nil
}
