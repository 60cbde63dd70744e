// Package engine implements the gate version tree.
//
// A tracked directory is modelled as an index of entries, each carrying an
// initial snapshot plus an append-only log of field Mods. Every effective
// value at any point in time is derived by folding that log, so the tree
// can be moved through time without losing anything.
//
// ARCHITECTURE:
//
// Single Writer:
// One Engine owns one tree and its state file. Every operation runs to
// completion on the caller's goroutine and ends with a Save, so the state
// file always reflects the last finished operation.
//
// Operation Flow:
//  1. ChangedFiles compares disk against each entry resolved at its Current
//  2. Commit turns those changes into Mods under one fresh Version
//  3. TimeTravel rewrites disk to match the tree resolved at a target time
//  4. Move and Remove edit the tree and disk directly under one Version
//
// Time:
// Versions are stamped by a Clock that never repeats an instant. The root's
// Current records which moment is materialized on disk; history can only be
// written while that moment is at or after the newest Version.
//
// Deletion never drops an entry. A deleted path is a children Mod on its
// parent, so the entry stays reachable from the past.
package engine
