package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoBaseURL is returned when the base URL is empty.
	ErrNoBaseURL = errors.New("no base URL specified")

	// ErrInvalidPages is returned when the page count is not positive.
	// Zero pages would mean fetching nothing.
	ErrInvalidPages = errors.New("invalid pages: must be positive")

	// ErrInvalidMaxFilms is returned when the film cap is not positive.
	ErrInvalidMaxFilms = errors.New("invalid max films: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetryAttempts is returned when the attempt count is not
	// positive. The count includes the first try, so it must be at least 1.
	ErrInvalidRetryAttempts = errors.New("invalid retry attempts: must be positive")

	// ErrInvalidDelay is returned when a retry or page delay is negative.
	// A negative delay is invalid; use 0 for no delay between requests.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidDetailWorkers is returned when the worker count is not
	// positive. Zero workers would stall detail enrichment.
	ErrInvalidDetailWorkers = errors.New("invalid detail workers: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoHistoryFile is returned when the history file path is empty.
	ErrNoHistoryFile = errors.New("no history file specified")
)
