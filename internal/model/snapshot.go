package model

import "time"

// DateLayout is the wire format for snapshot dates, both in the history
// CSV and in the snapshot database.
const DateLayout = "2006-01-02"

// Snapshot is the result of one scrape cycle. It is created at run start,
// filled in by the pipeline steps, and discarded after the run.
//
// The Date field is captured exactly once per run so that every row
// appended to the history file carries the same date, even if the run
// straddles midnight.
type Snapshot struct {
	// Date is the snapshot date in DateLayout, evaluated in the
	// configured timezone at run start.
	Date string `json:"date"`

	// FetchedAt is the wall-clock time the run started.
	FetchedAt time.Time `json:"fetched_at"`

	// Source is the listing URL the films were scraped from.
	Source string `json:"source"`

	// Films holds the ranked entries parsed this run, in listing order.
	Films []Film `json:"films"`

	// Details maps film IDs to enriched metadata. Nil when detail
	// enrichment is disabled or produced nothing.
	Details map[string]*FilmDetail `json:"details,omitempty"`

	// PagesFetched is the number of listing pages actually fetched.
	PagesFetched int `json:"pages_fetched"`

	// RowsAppended is the number of rows written to the history file.
	// Zero until the append step runs.
	RowsAppended int `json:"rows_appended"`

	// HistoryPath is the history file the rows were appended to.
	HistoryPath string `json:"history_path,omitempty"`

	// Steps records the pipeline steps that ran, in order.
	Steps []string `json:"steps,omitempty"`

	// Err holds the first step error, if any. Excluded from JSON; the
	// message is carried separately for serialization.
	Err error `json:"-"`

	// ErrorMessage is Err's message, for reports and storage.
	ErrorMessage string `json:"error,omitempty"`
}

// NewSnapshot creates a Snapshot for the given run date and listing URL.
func NewSnapshot(date, source string) *Snapshot {
	return &Snapshot{
		Date:      date,
		FetchedAt: time.Now(),
		Source:    source,
		Films:     make([]Film, 0),
	}
}

// Detail returns the enriched metadata for a film ID, or nil.
func (s *Snapshot) Detail(filmID string) *FilmDetail {
	if s.Details == nil {
		return nil
	}
	return s.Details[filmID]
}

// SetDetail records enriched metadata for a film ID.
func (s *Snapshot) SetDetail(d *FilmDetail) {
	if d == nil || d.FilmID == "" {
		return
	}
	if s.Details == nil {
		s.Details = make(map[string]*FilmDetail)
	}
	s.Details[d.FilmID] = d
}

// SnapshotDate returns today's date in DateLayout for the given location.
// The location defaults to UTC when nil.
func SnapshotDate(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}
