package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/popcult/boxdtrend/internal/database"
	"github.com/popcult/boxdtrend/internal/history"
	"github.com/popcult/boxdtrend/internal/model"
	"github.com/popcult/boxdtrend/internal/scrape"
)

// FetchListingStep scrapes the paginated popular listing and fills the
// snapshot's ranked film slice. A fetch or parse failure here fails the
// step, which stops the default pipeline before anything is written.
type FetchListingStep struct {
	scraper *scrape.Scraper
}

// NewFetchListingStep creates the listing scrape step.
func NewFetchListingStep(scraper *scrape.Scraper) *FetchListingStep {
	return &FetchListingStep{scraper: scraper}
}

// Name returns the step name.
func (s *FetchListingStep) Name() string {
	return "fetch_listing"
}

// Do executes the listing scrape.
func (s *FetchListingStep) Do(ctx context.Context, snapshot *model.Snapshot) error {
	films, pages, err := s.scraper.ScrapeListing(ctx)
	snapshot.PagesFetched = pages
	if err != nil {
		return err
	}

	snapshot.Films = films
	return nil
}

// EnrichDetailsStep fetches each film's own page and attaches metadata
// to the snapshot. Individual page failures are tolerated; only context
// cancellation fails the step.
type EnrichDetailsStep struct {
	scraper *scrape.Scraper
	logger  *slog.Logger
}

// NewEnrichDetailsStep creates the detail enrichment step.
func NewEnrichDetailsStep(scraper *scrape.Scraper, logger *slog.Logger) *EnrichDetailsStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichDetailsStep{scraper: scraper, logger: logger}
}

// Name returns the step name.
func (s *EnrichDetailsStep) Name() string {
	return "enrich_details"
}

// Do executes detail enrichment for every film in the snapshot.
func (s *EnrichDetailsStep) Do(ctx context.Context, snapshot *model.Snapshot) error {
	details, err := s.scraper.EnrichDetails(ctx, snapshot.Films)
	if err != nil {
		return err
	}

	for _, d := range details {
		snapshot.SetDetail(d)
	}

	s.logger.Info("detail enrichment finished",
		"films", len(snapshot.Films),
		"details", len(details),
	)
	return nil
}

// AppendHistoryStep appends the snapshot's films to the history CSV.
// This step only runs after fetch and parse succeeded, so a blank day
// can never be written.
type AppendHistoryStep struct {
	store *history.Store
}

// NewAppendHistoryStep creates the CSV append step.
func NewAppendHistoryStep(store *history.Store) *AppendHistoryStep {
	return &AppendHistoryStep{store: store}
}

// Name returns the step name.
func (s *AppendHistoryStep) Name() string {
	return "append_history"
}

// Do appends the rows and records the outcome on the snapshot.
func (s *AppendHistoryStep) Do(_ context.Context, snapshot *model.Snapshot) error {
	n, err := s.store.Append(snapshot)
	if err != nil {
		return err
	}

	snapshot.RowsAppended = n
	snapshot.HistoryPath = s.store.Path()
	return nil
}

// SaveSnapshotStep mirrors the snapshot into the SQLite database.
// The CSV is the artifact of record, so a database failure after a
// successful append is logged and swallowed rather than failing the run.
type SaveSnapshotStep struct {
	db     *database.SnapshotDB
	logger *slog.Logger
}

// NewSaveSnapshotStep creates the database mirror step.
// A nil db makes the step a no-op.
func NewSaveSnapshotStep(db *database.SnapshotDB, logger *slog.Logger) *SaveSnapshotStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveSnapshotStep{db: db, logger: logger}
}

// Name returns the step name.
func (s *SaveSnapshotStep) Name() string {
	return "save_snapshot"
}

// Do saves the snapshot, logging instead of failing when the mirror
// cannot be written.
func (s *SaveSnapshotStep) Do(ctx context.Context, snapshot *model.Snapshot) error {
	if s.db == nil {
		return nil
	}

	if _, err := s.db.SaveSnapshot(ctx, snapshot); err != nil {
		s.logger.Error("failed to mirror snapshot to database",
			"date", snapshot.Date,
			"error", err,
		)
		return nil
	}

	s.logger.Info("snapshot mirrored to database", "date", snapshot.Date)
	return nil
}

// ScrapeConfig carries the wiring for the default scrape pipeline.
type ScrapeConfig struct {
	// Scraper performs listing and detail scraping.
	Scraper *scrape.Scraper

	// Store is the history CSV store.
	Store *history.Store

	// DB is the optional snapshot mirror. Nil disables the save step.
	DB *database.SnapshotDB

	// FetchDetails enables the detail enrichment step.
	FetchDetails bool

	// Logger is used by steps that log.
	Logger *slog.Logger
}

// DefaultPipeline assembles the standard fetch -> enrich -> append ->
// save pipeline in the required order.
func DefaultPipeline(cfg ScrapeConfig, opts ...Option) (*Pipeline, error) {
	if cfg.Scraper == nil {
		return nil, fmt.Errorf("pipeline: scraper is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("pipeline: history store is required")
	}

	p := New(opts...)
	p.AddStep(NewFetchListingStep(cfg.Scraper))
	if cfg.FetchDetails {
		p.AddStep(NewEnrichDetailsStep(cfg.Scraper, cfg.Logger))
	}
	p.AddStep(NewAppendHistoryStep(cfg.Store))
	p.AddStep(NewSaveSnapshotStep(cfg.DB, cfg.Logger))

	return p, nil
}
