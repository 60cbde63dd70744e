package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUncommittedChanges is returned when time travel would discard disk
	// changes that were never committed.
	ErrUncommittedChanges = errors.New("uncommitted changes: commit them before time traveling")

	// ErrNotAtPresent is returned when a history-writing operation runs
	// while the tree is materialized at a past point in time.
	ErrNotAtPresent = errors.New("tree is not at the present: travel back to now first")

	// ErrNotTracked is returned when a path has no tracked entry.
	ErrNotTracked = errors.New("path is not tracked")

	// ErrInvalidMove is returned for moves the tree cannot represent.
	ErrInvalidMove = errors.New("invalid move")

	// ErrOccupied is returned when time travel would overwrite an
	// untracked path.
	ErrOccupied = errors.New("path is occupied by an untracked file")
)

// PathError records an operation failure on one tracked path.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// IsUncommitted reports whether err means the user has to commit (or travel
// back to the present) before retrying.
// Uses errors.Is to handle wrapped errors.
func IsUncommitted(err error) bool {
	return errors.Is(err, ErrUncommittedChanges) || errors.Is(err, ErrNotAtPresent)
}

// IsNotTracked reports whether err is an ErrNotTracked failure.
func IsNotTracked(err error) bool {
	return errors.Is(err, ErrNotTracked)
}
