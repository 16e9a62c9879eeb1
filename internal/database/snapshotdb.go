package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/popcult/boxdtrend/internal/model"
)

// SnapshotDB provides SQLite-based storage for snapshot history.
//
// Design decision: We use a single database file for all snapshots
// rather than one file per run. Trend queries join across runs, and a
// single file keeps backup/restore trivial.
type SnapshotDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures SnapshotDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended for most uses.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a SnapshotDB in the specified directory.
func Open(dbDir string, opts Options) (*SnapshotDB, error) {
	dbPath := filepath.Join(dbDir, "boxdtrend.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single pooled connection avoids
	// SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &SnapshotDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *SnapshotDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *SnapshotDB) createTables() error {
	schema := `
	-- One row per scrape cycle
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		source TEXT NOT NULL,
		pages_fetched INTEGER DEFAULT 0,
		film_count INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_date ON snapshots(date);

	-- Films are keyed by the site's film id
	CREATE TABLE IF NOT EXISTS films (
		film_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT,
		first_seen TEXT NOT NULL
	);

	-- Per-snapshot ranking rows
	CREATE TABLE IF NOT EXISTS rankings (
		snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
		rank INTEGER NOT NULL,
		film_id TEXT NOT NULL,
		title TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, rank)
	);

	CREATE INDEX IF NOT EXISTS idx_rankings_film ON rankings(film_id);

	-- Enriched film-page metadata, one row per film per snapshot
	CREATE TABLE IF NOT EXISTS film_details (
		snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
		film_id TEXT NOT NULL,
		rating_count INTEGER,
		rating_value REAL,
		genres TEXT,
		runtime_minutes INTEGER,
		tmdb_type TEXT,
		has_description INTEGER,
		poster_url TEXT,
		PRIMARY KEY (snapshot_id, film_id)
	);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveSnapshot stores a snapshot, its rankings, and any enriched details
// in a single transaction. A failure leaves the database unchanged.
func (sdb *SnapshotDB) SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) (int64, error) {
	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after a successful commit

	res, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (date, fetched_at, source, pages_fetched, film_count)
		 VALUES (?, ?, ?, ?, ?)`,
		snapshot.Date,
		snapshot.FetchedAt.UTC().Format(time.RFC3339),
		snapshot.Source,
		snapshot.PagesFetched,
		len(snapshot.Films),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	snapshotID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read snapshot id: %w", err)
	}

	for _, film := range snapshot.Films {
		if film.ID != "" {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO films (film_id, title, url, first_seen)
				 VALUES (?, ?, ?, ?)
				 ON CONFLICT(film_id) DO UPDATE SET
					title = excluded.title,
					url = excluded.url`,
				film.ID, film.Title, film.URL, snapshot.Date,
			); err != nil {
				return 0, fmt.Errorf("failed to upsert film %s: %w", film.ID, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rankings (snapshot_id, rank, film_id, title) VALUES (?, ?, ?, ?)`,
			snapshotID, film.Rank, film.ID, film.Title,
		); err != nil {
			return 0, fmt.Errorf("failed to insert ranking %d: %w", film.Rank, err)
		}

		if d := snapshot.Detail(film.ID); d != nil {
			genresJSON, err := json.Marshal(d.Genres)
			if err != nil {
				return 0, fmt.Errorf("failed to serialize genres: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO film_details
					(snapshot_id, film_id, rating_count, rating_value, genres,
					 runtime_minutes, tmdb_type, has_description, poster_url)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				snapshotID, d.FilmID, d.RatingCount, d.RatingValue, string(genresJSON),
				d.RuntimeMinutes, d.TMDBType, d.HasDescription, d.PosterURL,
			); err != nil {
				return 0, fmt.Errorf("failed to insert detail for film %s: %w", d.FilmID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return snapshotID, nil
}

// HasSnapshotDate reports whether a snapshot for the given date exists.
// Used to warn about same-date reruns; it never blocks an append.
func (sdb *SnapshotDB) HasSnapshotDate(ctx context.Context, date string) (bool, error) {
	var count int
	err := sdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snapshots WHERE date = ?`, date,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query snapshot date: %w", err)
	}
	return count > 0, nil
}

// ListSnapshotDates returns all snapshot dates in ascending order,
// including duplicates from same-date reruns.
func (sdb *SnapshotDB) ListSnapshotDates(ctx context.Context) ([]string, error) {
	rows, err := sdb.db.QueryContext(ctx,
		`SELECT date FROM snapshots ORDER BY date, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot dates: %w", err)
	}
	defer rows.Close()

	dates := make([]string, 0)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// FilmRankHistory returns a film's rank across all snapshots, in date order.
func (sdb *SnapshotDB) FilmRankHistory(ctx context.Context, filmID string) ([]model.FilmRankPoint, error) {
	rows, err := sdb.db.QueryContext(ctx,
		`SELECT s.date, r.rank
		 FROM rankings r JOIN snapshots s ON s.id = r.snapshot_id
		 WHERE r.film_id = ?
		 ORDER BY s.date, s.id`,
		filmID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rank history: %w", err)
	}
	defer rows.Close()

	points := make([]model.FilmRankPoint, 0)
	for rows.Next() {
		var p model.FilmRankPoint
		if err := rows.Scan(&p.Date, &p.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan rank point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// FilmDetailForDate returns the stored detail row for a film on the most
// recent snapshot at or before the given date. Returns nil when no
// detail was ever stored.
func (sdb *SnapshotDB) FilmDetailForDate(ctx context.Context, filmID, date string) (*model.FilmDetail, error) {
	var (
		d          model.FilmDetail
		genresJSON string
		hasDesc    int
	)
	err := sdb.db.QueryRowContext(ctx,
		`SELECT fd.film_id, fd.rating_count, fd.rating_value, fd.genres,
			fd.runtime_minutes, fd.tmdb_type, fd.has_description, fd.poster_url
		 FROM film_details fd JOIN snapshots s ON s.id = fd.snapshot_id
		 WHERE fd.film_id = ? AND s.date <= ?
		 ORDER BY s.date DESC, s.id DESC
		 LIMIT 1`,
		filmID, date,
	).Scan(&d.FilmID, &d.RatingCount, &d.RatingValue, &genresJSON,
		&d.RuntimeMinutes, &d.TMDBType, &hasDesc, &d.PosterURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query film detail: %w", err)
	}

	d.HasDescription = hasDesc != 0
	if genresJSON != "" {
		if err := json.Unmarshal([]byte(genresJSON), &d.Genres); err != nil {
			return nil, fmt.Errorf("failed to decode genres: %w", err)
		}
	}
	return &d, nil
}
