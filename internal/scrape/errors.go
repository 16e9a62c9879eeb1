package scrape

import (
	"errors"
	"fmt"
)

// ErrNoEntries is returned (wrapped in *ParseError) when a listing page
// parses cleanly but contains zero entries. A silent empty append would
// pollute the history with a blank day, so this is always an error.
var ErrNoEntries = errors.New("no entries found in listing markup")

// FetchError reports a failed HTTP fetch: transport errors, timeouts,
// or a non-success status code. Fetch errors abort the run before any
// write to the history file.
type FetchError struct {
	// URL is the URL that failed.
	URL string

	// StatusCode is the HTTP status, or 0 for transport-level failures.
	StatusCode int

	// Attempts is the number of attempts made before giving up.
	Attempts int

	// Err is the underlying error, nil for status-code failures.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch %s failed after %d attempt(s): status %d", e.URL, e.Attempts, e.StatusCode)
}

// Unwrap returns the underlying transport error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports that the expected page structure was absent,
// typically because the site layout changed. It must be surfaced loudly:
// the append step never runs after a ParseError.
type ParseError struct {
	// URL is the page whose markup did not match, may be empty when
	// parsing an in-memory document.
	URL string

	// Err describes the structural mismatch.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("parse: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}
