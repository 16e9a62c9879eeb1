package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/popcult/boxdtrend/internal/model"
)

// MarkdownWriter outputs reports in Markdown format, suitable for
// committing alongside the CSV or posting in a job summary.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation because it gives type-safe tables and headers
// instead of hand-concatenated pipes.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteSnapshot outputs the run summary in Markdown format.
func (w *MarkdownWriter) WriteSnapshot(snapshot *model.Snapshot) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Snapshot Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Date", snapshot.Date},
			{"Source", "`" + snapshot.Source + "`"},
			{"Pages fetched", strconv.Itoa(snapshot.PagesFetched)},
			{"Films", strconv.Itoa(len(snapshot.Films))},
			{"Rows appended", strconv.Itoa(snapshot.RowsAppended)},
		},
	})
	md.PlainText("")

	if len(snapshot.Films) > 0 {
		md.H2("Top Films")
		rows := make([][]string, 0, 10)
		for i, film := range snapshot.Films {
			if i == 10 {
				break
			}
			rows = append(rows, []string{strconv.Itoa(film.Rank), film.Title})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Rank", "Title"},
			Rows:   rows,
		})
	}

	return len(md.String()), md.Build()
}

// WriteTrends outputs the trend report in Markdown format.
func (w *MarkdownWriter) WriteTrends(report *model.TrendReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Trend Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Snapshots", strconv.Itoa(report.SnapshotCount)},
			{"Date range", report.FirstDate + " to " + report.LastDate},
			{"Total rows", strconv.Itoa(report.TotalRows)},
			{"Unique films", strconv.Itoa(report.UniqueFilms)},
		},
	})
	md.PlainText("")

	if len(report.MostConsistent) > 0 {
		md.H2("Most Consistent Films")
		rows := make([][]string, 0, len(report.MostConsistent))
		for _, fc := range report.MostConsistent {
			rows = append(rows, []string{fc.Title, strconv.Itoa(fc.Appearances)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Title", "Appearances"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(report.BestAverage) > 0 {
		md.H2("Best Average Rank")
		rows := make([][]string, 0, len(report.BestAverage))
		for _, fa := range report.BestAverage {
			rows = append(rows, []string{
				fa.Title,
				fmt.Sprintf("%.1f", fa.AverageRank),
				strconv.Itoa(fa.Appearances),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Title", "Average Rank", "Appearances"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(report.Flow) > 0 {
		md.H2("Listing Churn")
		rows := make([][]string, 0, len(report.Flow))
		for _, f := range report.Flow {
			rows = append(rows, []string{f.Date, strconv.Itoa(f.Entries), strconv.Itoa(f.Exits)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Date", "Entries", "Exits"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(report.LatestTop) > 0 {
		md.H2("Latest Top Films")
		if len(report.Details) > 0 {
			rows := make([][]string, 0, len(report.LatestTop))
			for _, film := range report.LatestTop {
				rating, runtime, genres := detailCells(report.Details[film.ID])
				rows = append(rows, []string{
					strconv.Itoa(film.Rank), film.Title, rating, runtime, genres,
				})
			}
			md.Table(markdown.TableSet{
				Header: []string{"Rank", "Title", "Rating", "Runtime", "Genres"},
				Rows:   rows,
			})
		} else {
			rows := make([][]string, 0, len(report.LatestTop))
			for _, film := range report.LatestTop {
				rows = append(rows, []string{strconv.Itoa(film.Rank), film.Title})
			}
			md.Table(markdown.TableSet{
				Header: []string{"Rank", "Title"},
				Rows:   rows,
			})
		}
		md.PlainText("")
	}

	if report.Focus != nil {
		name := report.Focus.Title
		if name == "" {
			name = "Film " + report.Focus.FilmID
		}
		md.H2("Rank History: " + name)
		rows := make([][]string, 0, len(report.Focus.Points))
		for _, p := range report.Focus.Points {
			rows = append(rows, []string{p.Date, strconv.Itoa(p.Rank)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Date", "Rank"},
			Rows:   rows,
		})
	}

	return len(md.String()), md.Build()
}

// detailCells formats stored film metadata as table cells, empty when
// no detail row exists for the film.
func detailCells(d *model.FilmDetail) (rating, runtime, genres string) {
	if d == nil {
		return "", "", ""
	}
	if d.RatingValue > 0 {
		rating = fmt.Sprintf("%.1f/5", d.RatingValue)
	}
	if d.RuntimeMinutes > 0 {
		runtime = strconv.Itoa(d.RuntimeMinutes) + " min"
	}
	genres = strings.Join(d.Genres, ", ")
	return rating, runtime, genres
}
