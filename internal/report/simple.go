package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/popcult/boxdtrend/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because the output is usually read in CI logs, where
// escape sequences only add noise.
type SimpleWriter struct {
	baseWriter

	// topN bounds list sections in trend output.
	topN int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithTopN bounds the list sections of trend output. Default is 10.
func WithTopN(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		if n > 0 {
			w.topN = n
		}
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		topN:       10,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteSnapshot outputs the run summary in human-readable format.
func (w *SimpleWriter) WriteSnapshot(snapshot *model.Snapshot) (int, error) {
	var sb strings.Builder

	sb.WriteString("=== Snapshot ===\n")
	fmt.Fprintf(&sb, "Date:          %s\n", snapshot.Date)
	fmt.Fprintf(&sb, "Source:        %s\n", snapshot.Source)
	fmt.Fprintf(&sb, "Pages fetched: %d\n", snapshot.PagesFetched)
	fmt.Fprintf(&sb, "Films:         %d\n", len(snapshot.Films))
	fmt.Fprintf(&sb, "Rows appended: %d\n", snapshot.RowsAppended)
	if snapshot.HistoryPath != "" {
		fmt.Fprintf(&sb, "History file:  %s\n", snapshot.HistoryPath)
	}
	if len(snapshot.Details) > 0 {
		fmt.Fprintf(&sb, "Details:       %d\n", len(snapshot.Details))
	}
	if snapshot.ErrorMessage != "" {
		fmt.Fprintf(&sb, "Error:         %s\n", snapshot.ErrorMessage)
	}

	if len(snapshot.Films) > 0 {
		sb.WriteString("\nTop of the listing:\n")
		limit := w.topN
		if limit > len(snapshot.Films) {
			limit = len(snapshot.Films)
		}
		for _, film := range snapshot.Films[:limit] {
			fmt.Fprintf(&sb, "  %3d. %s\n", film.Rank, film.Title)
		}
	}

	return io.WriteString(w.output, sb.String())
}

// WriteTrends outputs the trend report in human-readable format.
func (w *SimpleWriter) WriteTrends(report *model.TrendReport) (int, error) {
	var sb strings.Builder

	sb.WriteString("=== Trend Report ===\n")
	fmt.Fprintf(&sb, "Snapshots:    %d\n", report.SnapshotCount)
	if report.FirstDate != "" {
		fmt.Fprintf(&sb, "Date range:   %s to %s\n", report.FirstDate, report.LastDate)
	}
	fmt.Fprintf(&sb, "Total rows:   %d\n", report.TotalRows)
	fmt.Fprintf(&sb, "Unique films: %d\n", report.UniqueFilms)

	if len(report.MostConsistent) > 0 {
		sb.WriteString("\nMost consistent films:\n")
		for i, fc := range report.MostConsistent {
			fmt.Fprintf(&sb, "  %2d. %s (%d appearances)\n", i+1, fc.Title, fc.Appearances)
		}
	}

	if len(report.BestAverage) > 0 {
		sb.WriteString("\nBest average rank:\n")
		for i, fa := range report.BestAverage {
			fmt.Fprintf(&sb, "  %2d. %s (avg %.1f over %d appearances)\n",
				i+1, fa.Title, fa.AverageRank, fa.Appearances)
		}
	}

	if len(report.Flow) > 0 {
		sb.WriteString("\nListing churn:\n")
		for _, f := range report.Flow {
			fmt.Fprintf(&sb, "  %s: +%d entered, -%d exited\n", f.Date, f.Entries, f.Exits)
		}
	}

	if len(report.LatestTop) > 0 {
		fmt.Fprintf(&sb, "\nLatest snapshot (%s) top films:\n", report.LastDate)
		for _, film := range report.LatestTop {
			fmt.Fprintf(&sb, "  %3d. %s%s\n", film.Rank, film.Title, detailSuffix(report.Details[film.ID]))
		}
	}

	if report.Focus != nil {
		name := report.Focus.Title
		if name == "" {
			name = "film " + report.Focus.FilmID
		}
		fmt.Fprintf(&sb, "\nRank history for %s:\n", name)
		for _, p := range report.Focus.Points {
			fmt.Fprintf(&sb, "  %s: #%d\n", p.Date, p.Rank)
		}
	}

	return io.WriteString(w.output, sb.String())
}

// detailSuffix formats stored film metadata as a compact parenthetical.
// Returns an empty string when there is nothing to show.
func detailSuffix(d *model.FilmDetail) string {
	if d == nil {
		return ""
	}

	parts := make([]string, 0, 3)
	if d.RatingValue > 0 {
		parts = append(parts, fmt.Sprintf("%.1f/5", d.RatingValue))
	}
	if d.RuntimeMinutes > 0 {
		parts = append(parts, fmt.Sprintf("%d min", d.RuntimeMinutes))
	}
	if len(d.Genres) > 0 {
		parts = append(parts, strings.Join(d.Genres, "/"))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
