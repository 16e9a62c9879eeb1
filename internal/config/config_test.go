package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	c := NewConfig()

	if c.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", c.BaseURL, DefaultBaseURL)
	}
	if c.Pages != DefaultPages {
		t.Errorf("Pages = %d, want %d", c.Pages, DefaultPages)
	}
	if c.MaxFilms != DefaultMaxFilms {
		t.Errorf("MaxFilms = %d, want %d", c.MaxFilms, DefaultMaxFilms)
	}
	if c.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, DefaultTimeout)
	}
	if c.Timezone != DefaultTimezone {
		t.Errorf("Timezone = %q, want %q", c.Timezone, DefaultTimezone)
	}
	if c.HistoryFile != DefaultHistoryFile {
		t.Errorf("HistoryFile = %q, want %q", c.HistoryFile, DefaultHistoryFile)
	}

	if err := c.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestConfig_ListingURL(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	want := "https://letterboxd.com/films/ajax/popular/this/week/"
	if got := c.ListingURL(); got != want {
		t.Errorf("ListingURL() = %q, want %q", got, want)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "empty base URL",
			modify:  func(c *Config) { c.BaseURL = "" },
			wantErr: ErrNoBaseURL,
		},
		{
			name:    "zero pages",
			modify:  func(c *Config) { c.Pages = 0 },
			wantErr: ErrInvalidPages,
		},
		{
			name:    "negative max films",
			modify:  func(c *Config) { c.MaxFilms = -1 },
			wantErr: ErrInvalidMaxFilms,
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero retry attempts",
			modify:  func(c *Config) { c.RetryAttempts = 0 },
			wantErr: ErrInvalidRetryAttempts,
		},
		{
			name:    "negative page delay",
			modify:  func(c *Config) { c.PageDelay = -time.Second },
			wantErr: ErrInvalidDelay,
		},
		{
			name:    "zero detail workers",
			modify:  func(c *Config) { c.DetailWorkers = 0 },
			wantErr: ErrInvalidDetailWorkers,
		},
		{
			name:    "negative max body size",
			modify:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
		{
			name:    "empty history file",
			modify:  func(c *Config) { c.HistoryFile = "" },
			wantErr: ErrNoHistoryFile,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewConfig()
			tt.modify(c)

			if err := c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads settings and sources", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)

		content := `settings:
  pages: 3
  historyFile: /data/history.csv
defaults:
  userAgent: "custom-agent/1.0"
sources:
  letterboxd.com:
    cookie: "letterboxd.signed.in.as=abc"
    pages: 5
    headers:
      Accept-Language: en-US
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}

		if cf.Settings == nil || cf.Settings.Pages != 3 {
			t.Errorf("Settings.Pages not loaded: %+v", cf.Settings)
		}

		c := NewConfig()
		cf.Apply(c)
		if c.Pages != 3 {
			t.Errorf("Apply() Pages = %d, want 3", c.Pages)
		}
		if c.HistoryFile != "/data/history.csv" {
			t.Errorf("Apply() HistoryFile = %q", c.HistoryFile)
		}
		if c.BaseURL != DefaultBaseURL {
			t.Errorf("Apply() should not override unset fields, BaseURL = %q", c.BaseURL)
		}

		sc := cf.GetSourceConfig("letterboxd.com")
		if sc.Cookie != "letterboxd.signed.in.as=abc" {
			t.Errorf("Cookie = %q", sc.Cookie)
		}
		if sc.Pages != 5 {
			t.Errorf("Pages = %d, want 5", sc.Pages)
		}
		if sc.UserAgent != "custom-agent/1.0" {
			t.Errorf("UserAgent should fall back to defaults, got %q", sc.UserAgent)
		}
		if sc.Headers["Accept-Language"] != "en-US" {
			t.Errorf("Headers = %v", sc.Headers)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("LoadConfigFile() error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid yaml returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(":\tnot yaml"), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("LoadConfigFile() should fail on invalid YAML")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Run("explicit path wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile(%q) = %q", path, got)
		}
	})

	t.Run("missing explicit path returns empty", func(t *testing.T) {
		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})
}

func TestFile_GetSourceConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: SourceConfig{
			UserAgent: "default-agent",
			Headers:   map[string]string{"Accept": "text/html"},
		},
		Sources: map[string]SourceConfig{
			"example.com": {
				Cookie:  "session=abc",
				Headers: map[string]string{"Accept-Language": "en-US"},
			},
		},
	}

	t.Run("merges source over defaults", func(t *testing.T) {
		t.Parallel()

		sc := cf.GetSourceConfig("example.com")
		if sc.Cookie != "session=abc" {
			t.Errorf("Cookie = %q", sc.Cookie)
		}
		if sc.UserAgent != "default-agent" {
			t.Errorf("UserAgent = %q", sc.UserAgent)
		}
		if sc.Headers["Accept"] != "text/html" || sc.Headers["Accept-Language"] != "en-US" {
			t.Errorf("Headers = %v", sc.Headers)
		}
	})

	t.Run("unknown host gets defaults", func(t *testing.T) {
		t.Parallel()

		sc := cf.GetSourceConfig("other.com")
		if sc.Cookie != "" || sc.UserAgent != "default-agent" {
			t.Errorf("unexpected config: %+v", sc)
		}
	})

	t.Run("merge does not mutate defaults", func(t *testing.T) {
		t.Parallel()

		_ = cf.GetSourceConfig("example.com")
		if _, ok := cf.Defaults.Headers["Accept-Language"]; ok {
			t.Error("defaults headers mutated by merge")
		}
	})
}
