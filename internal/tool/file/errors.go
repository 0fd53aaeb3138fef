package file

import (
	"errors"
	"fmt"
)

// -- Error Types --

// NoMatchError is returned when a snippet cannot be located in a file,
// neither verbatim nor by fuzzy matching above the score floor.
type NoMatchError struct {
	Path      string
	Reason    string
	BestScore int
}

func (e *NoMatchError) Error() string {
	if e.BestScore > 0 {
		return fmt.Sprintf("no match in %s: %s (best score %d)", e.Path, e.Reason, e.BestScore)
	}
	return fmt.Sprintf("no match in %s: %s", e.Path, e.Reason)
}

// AmbiguousMatchError is returned when two or more windows tie at or above
// the score floor. Replacement is refused rather than guessing among ties.
type AmbiguousMatchError struct {
	Path  string
	Count int
	Score int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("ambiguous match in %s: %d windows scored >= %d, refusing to guess", e.Path, e.Count, e.Score)
}

// StatError wraps a failed stat call.
type StatError struct {
	Path  string
	Cause error
}

func (e *StatError) Error() string { return fmt.Sprintf("failed to stat %s: %v", e.Path, e.Cause) }
func (e *StatError) Unwrap() error { return e.Cause }

// ReadError wraps a failed read call.
type ReadError struct {
	Path  string
	Cause error
}

func (e *ReadError) Error() string { return fmt.Sprintf("failed to read %s: %v", e.Path, e.Cause) }
func (e *ReadError) Unwrap() error { return e.Cause }

// WriteError wraps a failed write call.
type WriteError struct {
	Path  string
	Cause error
}

func (e *WriteError) Error() string { return fmt.Sprintf("failed to write %s: %v", e.Path, e.Cause) }
func (e *WriteError) Unwrap() error { return e.Cause }

// TooLargeError is returned when a file exceeds the configured size ceiling.
type TooLargeError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file too large: %s (size %d, limit %d)", e.Path, e.Size, e.Limit)
}

// -- Sentinels --

var (
	ErrFileMissing  = errors.New("file or path does not exist")
	ErrFileExists   = errors.New("file already exists")
	ErrBinaryFile   = errors.New("file is binary")
	ErrIsDirectory  = errors.New("path is a directory")
	ErrPathRequired = errors.New("path is required")
	ErrEmptySnippet = errors.New("original snippet is empty")
)
