package history

import (
	"errors"
	"fmt"
)

// ErrEmptySnapshot is returned when Append is given a snapshot with no
// films. The append is refused before the file is opened, so a failed
// scrape never creates or touches the history file.
var ErrEmptySnapshot = errors.New("empty snapshot")

// IOError wraps a filesystem failure on the history file. Callers match
// it with errors.As to tell storage trouble apart from fetch and parse
// failures.
type IOError struct {
	// Op is the file operation that failed (open, stat, write, flush,
	// sync, read).
	Op string

	// Path is the history file path.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("history: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}
