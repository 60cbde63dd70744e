// Package ir provides the core data types for gate's versioned file tree.
//
// This package contains type definitions and small value helpers only. All
// other internal packages import ir; ir imports nothing internal, so the
// store and the engine can share types without depending on each other.
//
// Key design constraints:
//   - Versions and Mods are immutable once created
//   - Paths are slash-separated and relative to the tracked root ("." is the root)
//   - Entries reference children by identifier, never by pointer
//   - Times are wall-clock instants with the monotonic reading stripped
package ir
