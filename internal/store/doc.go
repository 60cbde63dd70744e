// Package store provides SQLite-backed durable storage for a gate tree.
//
// One state file per tracked root holds:
//   - meta: root entry identifier and store-init timestamp
//   - versions: one row per commit (identifier, timestamp)
//   - entries: the initial snapshot of every entry ever tracked
//   - mods: each entry's modification log, ordered by seq
//
// # Durability
//
// Save writes the whole in-memory tree in a single transaction. History
// rows are inserted with ON CONFLICT DO NOTHING, so re-saving an unchanged
// tree is a no-op apart from refreshing each entry's current time. A crash
// mid-save leaves the previous state intact.
//
// # Schema versions
//
// The schema version lives in PRAGMA user_version. Older files are migrated
// forward on Open; files written by a newer gate are rejected with
// ErrUnsupportedSchema instead of being guessed at.
//
// # Database Configuration
//
//   - WAL mode: readers never block the single writer
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: mods must reference known entries and versions
//
// Times are stored as Unix nanoseconds.
package store
