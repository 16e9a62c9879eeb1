package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/popcult/boxdtrend/internal/model"
)

// Header is the CSV header row. The first three columns are the
// canonical record; film_id and url are extra metadata.
var Header = []string{"date", "rank", "title", "film_id", "url"}

// Row is one history line read back from the CSV.
type Row struct {
	Date   string
	Rank   int
	Title  string
	FilmID string
	URL    string
}

// Store appends snapshots to, and reads rows back from, a history CSV.
// It holds only the path: the file is opened per operation so a failed
// run can never leave a dangling open handle for the next one.
type Store struct {
	path string
}

// NewStore creates a Store for the given CSV path. The file itself is
// created lazily on the first append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the history file path.
func (s *Store) Path() string {
	return s.path
}

// Append writes one row per film in the snapshot, prefixed with the
// snapshot's date, and returns the number of rows written.
//
// The file is opened in append mode and the header is written only when
// the file is new or empty. All rows are staged through the csv.Writer's
// buffer and flushed once, then the file is fsynced: success means the
// rows are on durable storage. Rows already present are never touched.
func (s *Store) Append(snapshot *model.Snapshot) (int, error) {
	if snapshot == nil || len(snapshot.Films) == 0 {
		return 0, fmt.Errorf("history: refusing to append to %s: %w", s.path, ErrEmptySnapshot)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, &IOError{Op: "open", Path: s.path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, &IOError{Op: "stat", Path: s.path, Err: err}
	}

	w := csv.NewWriter(f)

	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return 0, &IOError{Op: "write", Path: s.path, Err: err}
		}
	}

	written := 0
	for _, film := range snapshot.Films {
		if film.Title == "" {
			continue
		}
		record := []string{snapshot.Date, strconv.Itoa(film.Rank), film.Title, film.ID, film.URL}
		if err := w.Write(record); err != nil {
			return written, &IOError{Op: "write", Path: s.path, Err: err}
		}
		written++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return written, &IOError{Op: "flush", Path: s.path, Err: err}
	}

	if err := f.Sync(); err != nil {
		return written, &IOError{Op: "sync", Path: s.path, Err: err}
	}

	return written, nil
}

// ReadAll reads every data row from the history file in file order.
// A missing file reads as an empty history, not an error.
func (s *Store) ReadAll() ([]Row, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &IOError{Op: "open", Path: s.path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Older files may predate the film_id/url columns.
	r.FieldsPerRecord = -1

	rows := make([]Row, 0)
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &IOError{Op: "read", Path: s.path, Err: err}
		}
		if first {
			first = false
			if len(record) > 0 && record[0] == Header[0] {
				continue
			}
		}
		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("history: %s: %w", s.path, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// RowCount returns the number of data rows currently in the file.
func (s *Store) RowCount() (int, error) {
	rows, err := s.ReadAll()
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// parseRow converts a CSV record into a Row.
func parseRow(record []string) (Row, error) {
	if len(record) < 3 {
		return Row{}, fmt.Errorf("malformed row with %d field(s)", len(record))
	}

	rank, err := strconv.Atoi(record[1])
	if err != nil {
		return Row{}, fmt.Errorf("malformed rank %q: %w", record[1], err)
	}

	row := Row{Date: record[0], Rank: rank, Title: record[2]}
	if len(record) > 3 {
		row.FilmID = record[3]
	}
	if len(record) > 4 {
		row.URL = record[4]
	}
	return row, nil
}
