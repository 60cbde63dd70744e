package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/roach88/gate/internal/ir"
)

// HasState reports whether a tree has been saved to this store.
func (s *Store) HasState(ctx context.Context) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meta WHERE key = ?`, metaRootID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check state: %w", err)
	}
	return count > 0, nil
}

// Load reads the whole tree back.
//
// Returns ErrNoState for a store that was opened but never saved, and
// *CorruptStoreError when rows are missing or fail to decode.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	rootID, err := s.readMeta(ctx, metaRootID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, err
	}
	snap.RootID, err = uuid.Parse(rootID)
	if err != nil {
		return nil, s.corrupt("bad root id", err)
	}

	initTime, err := s.readMeta(ctx, metaInitTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, s.corrupt("missing init time", nil)
	}
	if err != nil {
		return nil, err
	}
	nanos, err := strconv.ParseInt(initTime, 10, 64)
	if err != nil {
		return nil, s.corrupt("bad init time", err)
	}
	snap.InitTime = fromNanos(nanos)

	versions, err := s.readVersions(ctx)
	if err != nil {
		return nil, err
	}

	entries, byID, err := s.readEntries(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := byID[snap.RootID]; !ok {
		return nil, s.corrupt(fmt.Sprintf("root entry %s not found", snap.RootID), nil)
	}

	if err := s.readMods(ctx, byID, versions); err != nil {
		return nil, err
	}

	snap.Entries = entries
	return snap, nil
}

// ReadVersions returns every recorded version ordered by time, oldest first.
func (s *Store) ReadVersions(ctx context.Context) ([]ir.Version, error) {
	byID, err := s.readVersions(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM versions ORDER BY time ASC, id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	versions := []ir.Version{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		vid, err := uuid.Parse(id)
		if err != nil {
			return nil, s.corrupt("bad version id", err)
		}
		versions = append(versions, byID[vid])
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

func (s *Store) readMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("read meta %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) readVersions(ctx context.Context) (map[uuid.UUID]ir.Version, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, time FROM versions`)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	versions := make(map[uuid.UUID]ir.Version)
	for rows.Next() {
		var id string
		var nanos int64
		if err := rows.Scan(&id, &nanos); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		vid, err := uuid.Parse(id)
		if err != nil {
			return nil, s.corrupt("bad version id", err)
		}
		versions[vid] = ir.Version{ID: vid, Time: fromNanos(nanos)}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

// readEntries returns entries in a deterministic order (path, then id)
// along with an index by identifier.
func (s *Store) readEntries(ctx context.Context) ([]*ir.Entry, map[uuid.UUID]*ir.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, data, is_dir, init, current, children
		FROM entries
		ORDER BY path ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []*ir.Entry{}
	byID := make(map[uuid.UUID]*ir.Entry)
	for rows.Next() {
		var (
			id, path, children string
			data               []byte
			isDir              int
			initNanos, curr    int64
		)
		if err := rows.Scan(&id, &path, &data, &isDir, &initNanos, &curr, &children); err != nil {
			return nil, nil, fmt.Errorf("scan entry: %w", err)
		}
		eid, err := uuid.Parse(id)
		if err != nil {
			return nil, nil, s.corrupt("bad entry id", err)
		}
		set, err := unmarshalChildren(children)
		if err != nil {
			return nil, nil, s.corrupt(fmt.Sprintf("entry %s", id), err)
		}
		e := &ir.Entry{
			ID:       eid,
			Path:     path,
			IsDir:    isDir == 1,
			Init:     fromNanos(initNanos),
			Current:  fromNanos(curr),
			Children: set,
		}
		if !e.IsDir {
			e.Data = make([]byte, len(data))
			copy(e.Data, data)
		}
		entries = append(entries, e)
		byID[eid] = e
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, byID, nil
}

func (s *Store) readMods(ctx context.Context, byID map[uuid.UUID]*ir.Entry, versions map[uuid.UUID]ir.Version) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_id, seq, version_id, field, value
		FROM mods
		ORDER BY entry_id COLLATE BINARY ASC, seq ASC
	`)
	if err != nil {
		return fmt.Errorf("query mods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entryID, versionID, field string
			seq                       int
			value                     []byte
		)
		if err := rows.Scan(&entryID, &seq, &versionID, &field, &value); err != nil {
			return fmt.Errorf("scan mod: %w", err)
		}
		eid, err := uuid.Parse(entryID)
		if err != nil {
			return s.corrupt("bad mod entry id", err)
		}
		e, ok := byID[eid]
		if !ok {
			return s.corrupt(fmt.Sprintf("mod references unknown entry %s", entryID), nil)
		}
		if seq != len(e.Mods) {
			return s.corrupt(fmt.Sprintf("entry %s: mod seq %d out of order", entryID, seq), nil)
		}
		vid, err := uuid.Parse(versionID)
		if err != nil {
			return s.corrupt("bad mod version id", err)
		}
		v, ok := versions[vid]
		if !ok {
			return s.corrupt(fmt.Sprintf("mod references unknown version %s", versionID), nil)
		}
		m, err := unmarshalModValue(v, ir.Field(field), value)
		if err != nil {
			return s.corrupt(fmt.Sprintf("entry %s mod %d", entryID, seq), err)
		}
		// Load must not move Current, so append to the log directly.
		e.Mods = append(e.Mods, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate mods: %w", err)
	}
	return nil
}

func (s *Store) corrupt(reason string, err error) error {
	return &CorruptStoreError{Path: s.path, Reason: reason, Err: err}
}
