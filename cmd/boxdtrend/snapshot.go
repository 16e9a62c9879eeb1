package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/popcult/boxdtrend/internal/config"
	"github.com/popcult/boxdtrend/internal/database"
	"github.com/popcult/boxdtrend/internal/history"
	"github.com/popcult/boxdtrend/internal/log"
	"github.com/popcult/boxdtrend/internal/model"
	"github.com/popcult/boxdtrend/internal/pipeline"
	"github.com/popcult/boxdtrend/internal/report"
	"github.com/popcult/boxdtrend/internal/scrape"
)

// NewSnapshotCmd creates the snapshot command.
func NewSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Scrape the popular-films listing and append it to the history CSV",
		Long: `Snapshot fetches the popular-films listing, parses the ranked film
entries, and appends one row per film to the append-only history CSV,
tagged with today's date.

The run is all-or-nothing: if any page fails to fetch or parse, nothing
is written and the command exits non-zero, so a cron schedule either
records a complete day or records nothing.

Examples:
  # Take today's snapshot with defaults
  boxdtrend snapshot

  # Fetch fewer pages into a custom history file
  boxdtrend snapshot --pages 3 --history /data/popular.csv

  # Also fetch per-film detail pages into the local database
  boxdtrend snapshot --details

  # Output a JSON run summary
  boxdtrend snapshot --json

Configuration file (.boxdtrend) example:
  settings:
    pages: 7
    historyFile: /data/popular.csv
  sources:
    letterboxd.com:
      cookie: "letterboxd.signed.in.as=..."`,
		Args: cobra.NoArgs,
		RunE: runSnapshotCmd,
	}

	// Fetch behavior flags
	cmd.Flags().IntP("pages", "p", config.DefaultPages,
		"Number of listing pages to fetch")
	cmd.Flags().Int("max-films", config.DefaultMaxFilms,
		"Maximum number of films to record per snapshot")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().Duration("page-delay", config.DefaultPageDelay,
		"Delay between listing page fetches")
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Base URL of the site to scrape")

	// Detail enrichment flags
	cmd.Flags().BoolP("details", "d", false,
		"Fetch per-film detail pages (ratings, genres, runtime) into the database")

	// History and database flags
	cmd.Flags().StringP("history", "H", config.DefaultHistoryFile,
		"Path of the append-only history CSV")
	cmd.Flags().Bool("no-db", false,
		"Skip mirroring the snapshot to the local database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .boxdtrend in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run summary (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write run summary to specified file path (creates directories if needed)")

	return cmd
}

// runSnapshotCmd executes the snapshot command.
func runSnapshotCmd(cmd *cobra.Command, _ []string) error {
	// Build config from the config file and flags
	cfg, err := buildSnapshotConfig(cmd)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential masking
	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runSnapshot(ctx, cmd, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildSnapshotConfig creates a Config from the config file and flags.
// Precedence is defaults < config file < flags: explicitly set flags win
// over the file, and flag defaults never clobber file settings.
func buildSnapshotConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configFilePath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configFilePath

	if err := loadConfigInto(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed("pages") {
		if cfg.Pages, err = flags.GetInt("pages"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-films") {
		if cfg.MaxFilms, err = flags.GetInt("max-films"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("page-delay") {
		if cfg.PageDelay, err = flags.GetDuration("page-delay"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("base-url") {
		if cfg.BaseURL, err = flags.GetString("base-url"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("details") {
		if cfg.FetchDetails, err = flags.GetBool("details"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("history") {
		if cfg.HistoryFile, err = flags.GetString("history"); err != nil {
			return nil, err
		}
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	if !noDB {
		// Mirror snapshots to the XDG data directory by default
		cfg.SaveToDB = true
		if cfg.DBDir == "" {
			cfg.DBDir = config.XDGDataDir()
		}
	} else {
		cfg.SaveToDB = false
	}

	return cfg, nil
}

// loadConfigInto finds and applies the configuration file to cfg.
// If the user explicitly specified a config file path, a missing file is
// an error. Otherwise a missing file silently leaves the defaults.
func loadConfigInto(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath == "" {
		if explicit {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		cfg.Sources = &config.File{Sources: make(map[string]config.SourceConfig)}
		return nil
	}

	cf, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	cf.Apply(cfg)
	cfg.Sources = cf
	return nil
}

// runSnapshot executes one scrape cycle.
func runSnapshot(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	date := model.SnapshotDate(time.Now(), loc)

	logger.Info("starting snapshot",
		"date", date,
		"source", cfg.ListingURL(),
		"pages", cfg.Pages,
		"historyFile", cfg.HistoryFile,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if mirroring is enabled
	var db *database.SnapshotDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)

		// A rerun on the same date appends to the CSV again. Warn so
		// an accidental double cron entry is noticed.
		if seen, err := db.HasSnapshotDate(ctx, date); err != nil {
			logger.Warn("could not check for existing snapshot", "error", err)
		} else if seen {
			logger.Warn("a snapshot for this date already exists; rows will be appended again", "date", date)
		}
	}

	scraper, err := buildScraper(cfg, logger)
	if err != nil {
		return err
	}

	p, err := pipeline.DefaultPipeline(pipeline.ScrapeConfig{
		Scraper:      scraper,
		Store:        history.NewStore(cfg.HistoryFile),
		DB:           db,
		FetchDetails: cfg.FetchDetails,
		Logger:       logger,
	}, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	snapshot := model.NewSnapshot(date, cfg.ListingURL())

	startTime := time.Now()
	if err := p.Execute(ctx, snapshot); err != nil {
		logger.Error("snapshot failed", "date", date, "error", err)
		return fmt.Errorf("snapshot for %s failed: %w", date, err)
	}
	logger.Info("snapshot completed",
		"date", date,
		"films", len(snapshot.Films),
		"rowsAppended", snapshot.RowsAppended,
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	return outputSnapshotReport(cmd, snapshot)
}

// buildScraper wires the fetcher, parser, and scraper from the config.
func buildScraper(cfg *config.Config, logger *slog.Logger) (*scrape.Scraper, error) {
	// Per-source overrides are keyed by host
	sourceCfg := sourceConfigFor(cfg)

	userAgent := cfg.UserAgent
	if sourceCfg.UserAgent != "" {
		userAgent = sourceCfg.UserAgent
	}
	pages := cfg.Pages
	if sourceCfg.Pages != 0 {
		pages = sourceCfg.Pages
	}
	pageDelay := cfg.PageDelay
	if sourceCfg.PageDelay != 0 {
		pageDelay = sourceCfg.PageDelay
	}

	fetcherOpts := []scrape.FetcherOption{
		scrape.WithUserAgent(userAgent),
		scrape.WithMaxBodySize(cfg.MaxBodySize),
		scrape.WithRetry(cfg.RetryAttempts, cfg.RetryDelay),
	}
	if len(sourceCfg.Headers) > 0 {
		fetcherOpts = append(fetcherOpts, scrape.WithHeaders(sourceCfg.Headers))
	}
	if sourceCfg.Cookie != "" {
		fetcherOpts = append(fetcherOpts, scrape.WithCookie(sourceCfg.Cookie))
	}

	fetcher := scrape.NewFetcher(&http.Client{Timeout: cfg.Timeout}, fetcherOpts...)

	parser, err := scrape.NewParser(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	return scrape.NewScraper(fetcher, parser, cfg.ListingURL(),
		scrape.WithPages(pages),
		scrape.WithMaxFilms(cfg.MaxFilms),
		scrape.WithPageDelay(pageDelay),
		scrape.WithDetailWorkers(cfg.DetailWorkers),
		scrape.WithLogger(logger),
	), nil
}

// sourceConfigFor returns the per-source overrides for the configured base URL.
func sourceConfigFor(cfg *config.Config) config.SourceConfig {
	if cfg.Sources == nil {
		return config.SourceConfig{}
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return cfg.Sources.Defaults
	}
	return cfg.Sources.GetSourceConfig(u.Host)
}

// outputSnapshotReport outputs the run summary in the requested format.
func outputSnapshotReport(cmd *cobra.Command, snapshot *model.Snapshot) error {
	output, closeFn, err := reportDestination(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	writer, err := reportWriter(cmd, output)
	if err != nil {
		return err
	}

	_, err = writer.WriteSnapshot(snapshot)
	return err
}

// reportDestination resolves the report output from the --output flag.
// It returns the writer and a close function (a no-op for stdout).
func reportDestination(cmd *cobra.Command) (*os.File, func(), error) {
	reportFile, err := cmd.Flags().GetString("output")
	if err != nil {
		return nil, nil, err
	}

	if reportFile == "" {
		return os.Stdout, func() {}, nil
	}

	// Create directories if they don't exist
	dir := filepath.Dir(reportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(reportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// reportWriter selects the report format from the --json and --markdown flags.
func reportWriter(cmd *cobra.Command, output *os.File) (report.Writer, error) {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	if jsonOut && markdownOut {
		return nil, config.ErrConflictingReportFormats
	}

	switch {
	case jsonOut:
		return report.NewJSONWriter(output, report.WithIndent("", "  ")), nil
	case markdownOut:
		return report.NewMarkdownWriter(output), nil
	default:
		return report.NewSimpleWriter(output), nil
	}
}
