package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror the site's pagination and the politeness settings
// that have proven reliable against it.
const (
	// DefaultBaseURL is the site the popular listing is scraped from.
	DefaultBaseURL = "https://letterboxd.com"

	// DefaultListingPath is the AJAX endpoint behind the popular-films
	// page. The browser UI loads the same fragment, so it returns plain
	// HTML poster markup without the surrounding page chrome.
	DefaultListingPath = "/films/ajax/popular/this/week/"

	// DefaultPages is the number of listing pages to fetch per snapshot.
	// The site renders 72 posters per page, so 14 pages comfortably
	// covers the top 1000 films.
	DefaultPages = 14

	// DefaultMaxFilms caps how many films a single snapshot records.
	// Ranks beyond 1000 churn heavily day to day and add little signal.
	DefaultMaxFilms = 1000

	// DefaultTimeout is the per-request HTTP timeout. The site is fast,
	// but AJAX fragments occasionally stall behind its CDN.
	DefaultTimeout = 30 * time.Second

	// DefaultRetryAttempts is the number of tries per page, including
	// the first. Transient 5xx responses from the CDN usually clear
	// within a retry or two.
	DefaultRetryAttempts = 3

	// DefaultRetryDelay is the pause before each retry.
	DefaultRetryDelay = 2 * time.Second

	// DefaultPageDelay is the pause between listing page fetches.
	// This is a politeness setting to avoid hammering the site.
	DefaultPageDelay = 2 * time.Second

	// DefaultDetailWorkers is the number of concurrent film-page fetches
	// during detail enrichment. Ten keeps a full enrichment run under a
	// few minutes without tripping rate limiting.
	DefaultDetailWorkers = 10

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for any page on the site while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTimezone is the IANA zone used to stamp the snapshot date.
	// The listing rolls over on US Pacific time, so dating snapshots in
	// that zone keeps one calendar day per listing state.
	DefaultTimezone = "America/Los_Angeles"

	// DefaultHistoryFile is the history CSV file name.
	DefaultHistoryFile = "letterboxd_popular_history.csv"

	// DefaultUserAgent is the User-Agent header sent with requests.
	// The site serves the AJAX fragment only to browser-like agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// AppName is the application name used for XDG directory paths.
	AppName = "boxdtrend"
)

// Config holds all configuration options for boxdtrend.
// This struct is populated from the config file and CLI flags and passed
// through the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, HistoryConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// BaseURL is the scheme and host of the site being scraped.
	// Overriding it points the whole run at a mirror or a test server.
	BaseURL string `yaml:"baseURL,omitempty"`

	// ListingPath is the path of the popular-films listing under BaseURL.
	ListingPath string `yaml:"listingPath,omitempty"`

	// Pages is the number of listing pages to fetch per snapshot.
	Pages int `yaml:"pages,omitempty"`

	// MaxFilms caps how many films a single snapshot records.
	MaxFilms int `yaml:"maxFilms,omitempty"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// RetryAttempts is the number of tries per page, including the first.
	RetryAttempts int `yaml:"retryAttempts,omitempty"`

	// RetryDelay is the pause before each retry.
	RetryDelay time.Duration `yaml:"retryDelay,omitempty"`

	// PageDelay is the pause between listing page fetches.
	PageDelay time.Duration `yaml:"pageDelay,omitempty"`

	// FetchDetails enables per-film detail page enrichment after the
	// listing scrape. Details are stored in the database only; the
	// history CSV format does not change.
	FetchDetails bool `yaml:"fetchDetails,omitempty"`

	// DetailWorkers is the number of concurrent film-page fetches during
	// detail enrichment.
	DetailWorkers int `yaml:"detailWorkers,omitempty"`

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// Timezone is the IANA zone used to stamp the snapshot date.
	Timezone string `yaml:"timezone,omitempty"`

	// HistoryFile is the path of the append-only history CSV.
	// A bare file name is resolved relative to the current directory.
	HistoryFile string `yaml:"historyFile,omitempty"`

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string `yaml:"userAgent,omitempty"`

	// DBDir is the directory path for storing the SQLite database.
	// When set, snapshots are mirrored to the database for trend queries.
	// When empty, snapshots are written to the CSV only.
	DBDir string `yaml:"dbDir,omitempty"`

	// SaveToDB indicates whether to mirror snapshots to the database.
	// This is automatically set to true when DBDir is configured.
	SaveToDB bool `yaml:"-"`

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool `yaml:"-"`

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .boxdtrend in the current directory
	// and then in the user's home directory.
	ConfigFilePath string `yaml:"-"`

	// Sources holds per-source overrides loaded from the config file.
	Sources *File `yaml:"-"`
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, page count).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		BaseURL:       DefaultBaseURL,
		ListingPath:   DefaultListingPath,
		Pages:         DefaultPages,
		MaxFilms:      DefaultMaxFilms,
		Timeout:       DefaultTimeout,
		RetryAttempts: DefaultRetryAttempts,
		RetryDelay:    DefaultRetryDelay,
		PageDelay:     DefaultPageDelay,
		DetailWorkers: DefaultDetailWorkers,
		MaxBodySize:   DefaultMaxBodySize,
		Timezone:      DefaultTimezone,
		HistoryFile:   DefaultHistoryFile,
		UserAgent:     DefaultUserAgent,
	}
}

// ListingURL returns the full URL of the popular-films listing.
func (c *Config) ListingURL() string {
	return c.BaseURL + c.ListingPath
}

// XDGDataDir returns the XDG data directory for boxdtrend.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/boxdtrend
// On macOS: ~/Library/Application Support/boxdtrend
// On Windows: %LOCALAPPDATA%\boxdtrend
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for boxdtrend.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any fetching begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}

	if c.Pages <= 0 {
		return ErrInvalidPages
	}

	if c.MaxFilms <= 0 {
		return ErrInvalidMaxFilms
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.RetryAttempts <= 0 {
		return ErrInvalidRetryAttempts
	}

	// Delays must be non-negative; use 0 for no delay
	if c.RetryDelay < 0 || c.PageDelay < 0 {
		return ErrInvalidDelay
	}

	if c.DetailWorkers <= 0 {
		return ErrInvalidDetailWorkers
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.HistoryFile == "" {
		return ErrNoHistoryFile
	}

	return nil
}
