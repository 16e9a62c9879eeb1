package model

// TrendReport summarizes the accumulated history across all snapshots.
// It is produced by the trend analyzer and rendered by the report writers.
type TrendReport struct {
	// SnapshotCount is the number of distinct snapshot dates.
	SnapshotCount int `json:"snapshot_count"`

	// FirstDate and LastDate bound the history's date range.
	FirstDate string `json:"first_date,omitempty"`
	LastDate  string `json:"last_date,omitempty"`

	// TotalRows is the total number of history rows analyzed.
	TotalRows int `json:"total_rows"`

	// UniqueFilms is the number of distinct films seen across all
	// snapshots. Films are keyed by ID when present, title otherwise.
	UniqueFilms int `json:"unique_films"`

	// MostConsistent lists the films present in the most snapshots,
	// best first.
	MostConsistent []FilmConsistency `json:"most_consistent,omitempty"`

	// BestAverage lists the films with the best (lowest) average rank,
	// best first.
	BestAverage []FilmAverageRank `json:"best_average,omitempty"`

	// Flow tracks how many films entered and exited the listing at each
	// snapshot after the first, in date order.
	Flow []SnapshotFlow `json:"flow,omitempty"`

	// LatestTop holds the top-ranked films from the most recent snapshot.
	LatestTop []Film `json:"latest_top,omitempty"`

	// Details maps film IDs in LatestTop to metadata looked up from the
	// snapshot database mirror. Nil when the mirror is absent or holds
	// no details for those films.
	Details map[string]*FilmDetail `json:"details,omitempty"`

	// Focus traces a single film's rank across snapshots. Populated
	// only when one film is queried.
	Focus *FilmHistory `json:"focus,omitempty"`
}

// FilmHistory is one film's rank across snapshots, from the database
// mirror.
type FilmHistory struct {
	FilmID string          `json:"film_id"`
	Title  string          `json:"title,omitempty"`
	Points []FilmRankPoint `json:"points"`
}

// FilmRankPoint is one film's rank on a given snapshot date.
type FilmRankPoint struct {
	Date string `json:"date"`
	Rank int    `json:"rank"`
}

// FilmConsistency counts how many snapshots a film appeared in.
type FilmConsistency struct {
	Title       string `json:"title"`
	Appearances int    `json:"appearances"`
}

// FilmAverageRank is a film's mean rank across the snapshots it appeared in.
type FilmAverageRank struct {
	Title       string  `json:"title"`
	AverageRank float64 `json:"average_rank"`
	Appearances int     `json:"appearances"`
}

// SnapshotFlow records listing churn between one snapshot and the previous.
type SnapshotFlow struct {
	Date    string `json:"date"`
	Entries int    `json:"entries"`
	Exits   int    `json:"exits"`
}
