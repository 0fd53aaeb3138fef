package directory

import (
	"errors"
	"fmt"
)

// WalkError wraps a failed directory listing during a workspace walk.
type WalkError struct {
	Path  string
	Cause error
}

func (e *WalkError) Error() string { return fmt.Sprintf("failed to list %s: %v", e.Path, e.Cause) }
func (e *WalkError) Unwrap() error { return e.Cause }

// -- Sentinels --

var (
	ErrFileMissing   = errors.New("file or path does not exist")
	ErrNotADirectory = errors.New("not a directory")
	ErrNoMatch       = errors.New("no file matched the fragment")
)
