package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/popcult/boxdtrend/internal/config"
	"github.com/popcult/boxdtrend/internal/database"
	"github.com/popcult/boxdtrend/internal/history"
	"github.com/popcult/boxdtrend/internal/log"
	"github.com/popcult/boxdtrend/internal/model"
	"github.com/popcult/boxdtrend/internal/trend"
)

// NewTrendsCmd creates the trends command.
func NewTrendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Analyze the accumulated ranking history",
		Long: `Trends reads the history CSV produced by snapshot runs and reports on
the accumulated rankings:

- Films appearing in the most snapshots
- Films with the best average rank
- How many films entered and exited the listing each day
- The top films of the most recent snapshot

When the local snapshot database is present, the latest top films are
enriched with their stored ratings, genres, and runtimes, and a single
film's rank history can be traced with --film.

Examples:
  # Analyze the default history file
  boxdtrend trends

  # Analyze a custom history file, top 25 films per list
  boxdtrend trends --history /data/popular.csv --top 25

  # Trace one film's rank across snapshots (id from the film_id column)
  boxdtrend trends --film 886396

  # Output a Markdown trend report to a file
  boxdtrend trends --markdown -o trends.md`,
		Args: cobra.NoArgs,
		RunE: runTrendsCmd,
	}

	cmd.Flags().StringP("history", "H", config.DefaultHistoryFile,
		"Path of the history CSV to analyze")
	cmd.Flags().Int("top", 10,
		"Number of films to show per list")

	// Database mirror flags
	cmd.Flags().String("db-dir", "",
		"Directory of the snapshot database (default: XDG data directory)")
	cmd.Flags().Bool("no-db", false,
		"Skip the snapshot database; report from the CSV only")
	cmd.Flags().String("film", "",
		"Show one film's rank history, by film id (the CSV film_id column)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .boxdtrend in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON trend report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown trend report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write trend report to specified file path (creates directories if needed)")

	return cmd
}

// runTrendsCmd executes the trends command.
func runTrendsCmd(cmd *cobra.Command, _ []string) error {
	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	historyPath, err := resolveHistoryPath(cmd)
	if err != nil {
		return err
	}

	topN, err := cmd.Flags().GetInt("top")
	if err != nil {
		return err
	}

	rows, err := history.NewStore(historyPath).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no history found at %s (run \"boxdtrend snapshot\" first)", historyPath)
	}

	logger.Debug("analyzing history", "path", historyPath, "rows", len(rows))

	trendReport := trend.NewAnalyzer(trend.WithTopN(topN)).Analyze(rows)

	if err := enrichFromMirror(cmd.Context(), cmd, trendReport, rows, logger); err != nil {
		return err
	}

	output, closeFn, err := reportDestination(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	writer, err := reportWriter(cmd, output)
	if err != nil {
		return err
	}

	_, err = writer.WriteTrends(trendReport)
	return err
}

// enrichFromMirror decorates the trend report with detail rows and the
// optional per-film rank history from the snapshot database.
//
// The mirror is best-effort: a machine that has only ever run with
// --no-db has no database, and the CSV-derived report is complete
// without one. Only an explicit --film query requires the mirror.
func enrichFromMirror(ctx context.Context, cmd *cobra.Command, trendReport *model.TrendReport, rows []history.Row, logger *slog.Logger) error {
	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return err
	}
	filmID, err := cmd.Flags().GetString("film")
	if err != nil {
		return err
	}
	if noDB {
		if filmID != "" {
			return fmt.Errorf("--film needs the snapshot database and cannot be combined with --no-db")
		}
		return nil
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		if filmID != "" {
			return fmt.Errorf("--film needs the snapshot database: %w", err)
		}
		logger.Debug("no snapshot database, reporting from the CSV only", "dir", dbDir, "error", err)
		return nil
	}
	defer db.Close()

	// The mirror can lag the CSV (runs with --no-db, a fresh machine
	// with a copied CSV). Flag it so missing detail rows are explicable.
	if dates, err := db.ListSnapshotDates(ctx); err != nil {
		logger.Warn("could not list mirrored snapshots", "error", err)
	} else if len(dates) < trendReport.SnapshotCount {
		logger.Warn("database mirror is missing snapshots",
			"csvSnapshots", trendReport.SnapshotCount, "dbSnapshots", len(dates))
	}

	for _, film := range trendReport.LatestTop {
		if film.ID == "" {
			continue
		}
		d, err := db.FilmDetailForDate(ctx, film.ID, trendReport.LastDate)
		if err != nil {
			logger.Warn("detail lookup failed", "film", film.Title, "error", err)
			continue
		}
		if d == nil {
			continue
		}
		if trendReport.Details == nil {
			trendReport.Details = make(map[string]*model.FilmDetail)
		}
		trendReport.Details[film.ID] = d
	}

	if filmID != "" {
		points, err := db.FilmRankHistory(ctx, filmID)
		if err != nil {
			return fmt.Errorf("rank history lookup failed: %w", err)
		}
		if len(points) == 0 {
			return fmt.Errorf("no rank history for film id %s in the snapshot database", filmID)
		}
		trendReport.Focus = &model.FilmHistory{
			FilmID: filmID,
			Title:  titleForFilmID(rows, filmID),
			Points: points,
		}
	}

	return nil
}

// titleForFilmID returns the most recent title recorded for a film id.
func titleForFilmID(rows []history.Row, filmID string) string {
	title := ""
	for _, row := range rows {
		if row.FilmID == filmID && row.Title != "" {
			title = row.Title
		}
	}
	return title
}

// resolveHistoryPath returns the history file path, preferring the flag
// over the config file over the default.
func resolveHistoryPath(cmd *cobra.Command) (string, error) {
	historyPath, err := cmd.Flags().GetString("history")
	if err != nil {
		return "", err
	}
	if cmd.Flags().Changed("history") {
		return historyPath, nil
	}

	cfg := config.NewConfig()
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return "", err
	}
	if err := loadConfigInto(cfg); err != nil {
		return "", err
	}
	return cfg.HistoryFile, nil
}
