package store

import (
	"errors"
	"fmt"
)

// ErrUnsupportedSchema is returned when the state file was written with a
// newer schema than this build understands.
var ErrUnsupportedSchema = errors.New("unsupported state file schema")

// ErrNoState is returned by Load when the state file holds no tree yet.
var ErrNoState = errors.New("state file holds no tree")

// CorruptStoreError reports a state file that cannot be read back into a
// consistent tree. History is never discarded silently: callers must decide
// what to do with the file.
type CorruptStoreError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptStoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt state file %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt state file %s: %s", e.Path, e.Reason)
}

func (e *CorruptStoreError) Unwrap() error {
	return e.Err
}

// IsCorrupt reports whether err is (or wraps) a CorruptStoreError.
func IsCorrupt(err error) bool {
	var ce *CorruptStoreError
	return errors.As(err, &ce)
}
