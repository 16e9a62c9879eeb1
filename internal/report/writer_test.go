package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/popcult/boxdtrend/internal/model"
)

func sampleSnapshot() *model.Snapshot {
	s := model.NewSnapshot("2024-01-01", "https://example.com/films/")
	s.Films = []model.Film{
		{Rank: 1, ID: "11", Slug: "film-a", Title: "Film A", URL: "https://example.com/film/film-a/"},
		{Rank: 2, ID: "22", Slug: "film-b", Title: "Film B", URL: "https://example.com/film/film-b/"},
		{Rank: 3, ID: "33", Slug: "film-c", Title: "Film C", URL: "https://example.com/film/film-c/"},
	}
	s.PagesFetched = 1
	s.RowsAppended = 3
	s.HistoryPath = "/data/history.csv"
	return s
}

func sampleTrendReport() *model.TrendReport {
	return &model.TrendReport{
		SnapshotCount: 2,
		FirstDate:     "2024-01-01",
		LastDate:      "2024-01-02",
		TotalRows:     6,
		UniqueFilms:   4,
		MostConsistent: []model.FilmConsistency{
			{Title: "Film A", Appearances: 2},
			{Title: "Film B", Appearances: 2},
		},
		BestAverage: []model.FilmAverageRank{
			{Title: "Film A", AverageRank: 1.0, Appearances: 2},
			{Title: "Film B", AverageRank: 2.5, Appearances: 2},
		},
		Flow: []model.SnapshotFlow{
			{Date: "2024-01-02", Entries: 1, Exits: 1},
		},
		LatestTop: []model.Film{
			{Rank: 1, ID: "11", Title: "Film A"},
			{Rank: 2, ID: "44", Title: "Film D"},
		},
	}
}

// enrichedTrendReport adds mirror-sourced details and a focused film to
// the sample report.
func enrichedTrendReport() *model.TrendReport {
	r := sampleTrendReport()
	r.Details = map[string]*model.FilmDetail{
		"11": {
			FilmID:         "11",
			RatingValue:    4.3,
			RuntimeMinutes: 120,
			Genres:         []string{"Drama", "Crime"},
		},
	}
	r.Focus = &model.FilmHistory{
		FilmID: "11",
		Title:  "Film A",
		Points: []model.FilmRankPoint{
			{Date: "2024-01-01", Rank: 1},
			{Date: "2024-01-02", Rank: 1},
		},
	}
	return r
}

func TestSimpleWriter_WriteSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("renders summary and ranked films", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		n, err := w.WriteSnapshot(sampleSnapshot())
		if err != nil {
			t.Fatalf("WriteSnapshot() error = %v", err)
		}
		if n != buf.Len() {
			t.Errorf("WriteSnapshot() bytes = %d, buffer has %d", n, buf.Len())
		}

		got := buf.String()
		for _, want := range []string{
			"=== Snapshot ===",
			"Date:          2024-01-01",
			"Films:         3",
			"Rows appended: 3",
			"History file:  /data/history.csv",
			"1. Film A",
			"3. Film C",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("topN bounds the film list", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithTopN(2))

		if _, err := w.WriteSnapshot(sampleSnapshot()); err != nil {
			t.Fatalf("WriteSnapshot() error = %v", err)
		}

		got := buf.String()
		if !strings.Contains(got, "Film B") {
			t.Errorf("output missing second film:\n%s", got)
		}
		if strings.Contains(got, "Film C") {
			t.Errorf("output should not list third film with topN=2:\n%s", got)
		}
	})
}

func TestSimpleWriter_WriteTrends(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf)

	if _, err := w.WriteTrends(sampleTrendReport()); err != nil {
		t.Fatalf("WriteTrends() error = %v", err)
	}

	got := buf.String()
	for _, want := range []string{
		"=== Trend Report ===",
		"Snapshots:    2",
		"Date range:   2024-01-01 to 2024-01-02",
		"Most consistent films:",
		"Film A (2 appearances)",
		"Best average rank:",
		"avg 2.5 over 2 appearances",
		"2024-01-02: +1 entered, -1 exited",
		"Latest snapshot (2024-01-02) top films:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestSimpleWriter_WriteTrends_MirrorDetails(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf)

	if _, err := w.WriteTrends(enrichedTrendReport()); err != nil {
		t.Fatalf("WriteTrends() error = %v", err)
	}

	got := buf.String()
	for _, want := range []string{
		"Film A (4.3/5, 120 min, Drama/Crime)",
		"Rank history for Film A:",
		"2024-01-01: #1",
		"2024-01-02: #1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	// Film D has no detail row and must render plain.
	if !strings.Contains(got, "2. Film D\n") {
		t.Errorf("film without detail should render without a suffix:\n%s", got)
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("snapshot round-trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.WriteSnapshot(sampleSnapshot()); err != nil {
			t.Fatalf("WriteSnapshot() error = %v", err)
		}

		var got model.Snapshot
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.Date != "2024-01-01" {
			t.Errorf("Date = %q, want %q", got.Date, "2024-01-01")
		}
		if len(got.Films) != 3 {
			t.Errorf("Films = %d, want 3", len(got.Films))
		}
	})

	t.Run("indent option pretty-prints", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithIndent("", "  "))

		if _, err := w.WriteTrends(sampleTrendReport()); err != nil {
			t.Fatalf("WriteTrends() error = %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Errorf("indented output expected, got:\n%s", buf.String())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("snapshot report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		n, err := w.WriteSnapshot(sampleSnapshot())
		if err != nil {
			t.Fatalf("WriteSnapshot() error = %v", err)
		}
		if n == 0 {
			t.Error("WriteSnapshot() wrote zero bytes")
		}

		got := buf.String()
		for _, want := range []string{
			"# Snapshot Report",
			"| Date",
			"2024-01-01",
			"## Top Films",
			"Film A",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("trend report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.WriteTrends(sampleTrendReport()); err != nil {
			t.Fatalf("WriteTrends() error = %v", err)
		}

		got := buf.String()
		for _, want := range []string{
			"# Trend Report",
			"## Most Consistent Films",
			"## Best Average Rank",
			"## Listing Churn",
			"## Latest Top Films",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("trend report with mirror details", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.WriteTrends(enrichedTrendReport()); err != nil {
			t.Fatalf("WriteTrends() error = %v", err)
		}

		got := buf.String()
		for _, want := range []string{
			"| Rating",
			"4.3/5",
			"120 min",
			"Drama, Crime",
			"## Rank History: Film A",
			"2024-01-01",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q:\n%s", want, got)
			}
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, jsonBuf bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&jsonBuf))

	n, err := mw.WriteSnapshot(sampleSnapshot())
	if err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}
	if n != text.Len()+jsonBuf.Len() {
		t.Errorf("WriteSnapshot() bytes = %d, want %d", n, text.Len()+jsonBuf.Len())
	}
	if text.Len() == 0 || jsonBuf.Len() == 0 {
		t.Error("expected both writers to receive output")
	}
}
