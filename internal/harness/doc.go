// Package harness runs scripted scenarios against a real tracked directory.
//
// A scenario builds a directory tree, drives the engine through a list of
// steps (disk edits, commits, moves, time travel) and checks the outcome.
// Every scenario runs in a fresh temp directory with a stepping clock, so
// version times and file modification times are reproducible.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: travel_round_trip
//	description: "Travel back to the initial state and forward again"
//	fixture: clean            # clean (default) or empty
//	files:                    # extra paths written before init
//	  notes/a.txt: "alpha"
//	steps:
//	  - op: write
//	    path: test_dir/test.txt
//	    content: "changed"
//	  - op: commit
//	    changes: ["mod test_dir/test.txt"]
//	  - op: travel
//	    to: init
//	  - op: snapshot
//	    name: initial
//	assertions:
//	  - type: file_content
//	    path: test_dir/test.txt
//	    content: "test1"
//
// # Steps
//
//   - write, mkdir, delete: change the disk behind the engine's back
//   - status: compare pending changes with "changes"
//   - commit: commit, optionally comparing the committed changes
//   - remove, move: the engine's own history-writing edits
//   - travel: time travel to "init", a version label ("v1", "v2", ...) or
//     any expression the CLI accepts ("now")
//   - reopen: close the engine and load it back from the state file
//   - snapshot: record the disk tree under a name for golden comparison
//
// Each history-writing step that records a version gets the next label:
// the first is v1. A step may name the error it expects with "error".
//
// # Assertion Types
//
//   - file_content: the file at path holds content
//   - exists, absent: the path is (not) on disk
//   - version_count: the timeline holds count versions
//   - search: searching for query yields exactly hits ("path@label")
package harness
