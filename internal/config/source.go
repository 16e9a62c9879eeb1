package config

import "time"

// SourceConfig holds per-source overrides for a single scrape source.
// This allows customizing fetch behavior per host, for example sending a
// session cookie to one mirror while leaving the main site anonymous.
type SourceConfig struct {
	// Cookie is an HTTP cookie to send with requests to this source.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this source.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Pages overrides the global page count for this source.
	// If zero, the global Pages value is used.
	Pages int `yaml:"pages,omitempty"`

	// PageDelay overrides the global page delay for this source.
	// If zero, the global PageDelay is used.
	PageDelay time.Duration `yaml:"pageDelay,omitempty"`

	// UserAgent overrides the global User-Agent for this source.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .boxdtrend configuration file.
type File struct {
	// Settings overrides the global defaults. Only non-zero fields take
	// effect; anything omitted keeps its default value.
	Settings *Config `yaml:"settings,omitempty"`

	// Sources maps host names to their per-source configurations.
	// Keys are bare hosts without the scheme (e.g., "letterboxd.com").
	Sources map[string]SourceConfig `yaml:"sources,omitempty"`

	// Defaults contains default source configuration applied to all
	// sources unless overridden in the source-specific configuration.
	Defaults SourceConfig `yaml:"defaults,omitempty"`
}

// Apply copies the non-zero settings from the file onto c.
// CLI flags are applied after this, so the precedence is
// defaults < config file < flags.
func (cf *File) Apply(c *Config) {
	s := cf.Settings
	if s == nil {
		return
	}

	if s.BaseURL != "" {
		c.BaseURL = s.BaseURL
	}
	if s.ListingPath != "" {
		c.ListingPath = s.ListingPath
	}
	if s.Pages != 0 {
		c.Pages = s.Pages
	}
	if s.MaxFilms != 0 {
		c.MaxFilms = s.MaxFilms
	}
	if s.Timeout != 0 {
		c.Timeout = s.Timeout
	}
	if s.RetryAttempts != 0 {
		c.RetryAttempts = s.RetryAttempts
	}
	if s.RetryDelay != 0 {
		c.RetryDelay = s.RetryDelay
	}
	if s.PageDelay != 0 {
		c.PageDelay = s.PageDelay
	}
	if s.FetchDetails {
		c.FetchDetails = true
	}
	if s.DetailWorkers != 0 {
		c.DetailWorkers = s.DetailWorkers
	}
	if s.MaxBodySize != 0 {
		c.MaxBodySize = s.MaxBodySize
	}
	if s.Timezone != "" {
		c.Timezone = s.Timezone
	}
	if s.HistoryFile != "" {
		c.HistoryFile = s.HistoryFile
	}
	if s.UserAgent != "" {
		c.UserAgent = s.UserAgent
	}
	if s.DBDir != "" {
		c.DBDir = s.DBDir
	}
}

// GetSourceConfig returns the configuration for a specific host.
// It merges the source-specific configuration with defaults.
func (cf *File) GetSourceConfig(host string) SourceConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with source-specific configuration if present
	if sourceConfig, ok := cf.Sources[host]; ok {
		if sourceConfig.Cookie != "" {
			result.Cookie = sourceConfig.Cookie
		}
		if sourceConfig.Pages != 0 {
			result.Pages = sourceConfig.Pages
		}
		if sourceConfig.PageDelay != 0 {
			result.PageDelay = sourceConfig.PageDelay
		}
		if sourceConfig.UserAgent != "" {
			result.UserAgent = sourceConfig.UserAgent
		}
		if len(sourceConfig.Headers) > 0 {
			// Copy so the merge never mutates the shared Defaults map.
			merged := make(map[string]string, len(result.Headers)+len(sourceConfig.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range sourceConfig.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
	}

	return result
}
