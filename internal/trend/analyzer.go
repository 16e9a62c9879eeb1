package trend

import (
	"sort"

	"github.com/popcult/boxdtrend/internal/history"
	"github.com/popcult/boxdtrend/internal/model"
)

// Analyzer computes a TrendReport from history rows.
//
// Films are keyed by their site ID when present and fall back to the
// title for legacy rows, so pre-ID history still aggregates correctly.
type Analyzer struct {
	// topN bounds the most-consistent and best-average lists.
	topN int
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithTopN bounds the ranked lists in the report. Default is 10.
func WithTopN(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.topN = n
		}
	}
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{topN: 10}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// filmStats accumulates one film's appearances across snapshots.
type filmStats struct {
	title    string
	dates    map[string]bool
	rankSum  int
	rankRows int
}

// Analyze computes the trend report for the given rows. Rows are
// expected in file order (append order); the analyzer groups them by
// date internally. An empty history produces an empty report.
func (a *Analyzer) Analyze(rows []history.Row) *model.TrendReport {
	report := &model.TrendReport{TotalRows: len(rows)}
	if len(rows) == 0 {
		return report
	}

	// Group rows by date, preserving append order within a date.
	byDate := make(map[string][]history.Row)
	for _, row := range rows {
		byDate[row.Date] = append(byDate[row.Date], row)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	report.SnapshotCount = len(dates)
	report.FirstDate = dates[0]
	report.LastDate = dates[len(dates)-1]

	// Per-film aggregates.
	stats := make(map[string]*filmStats)
	for _, row := range rows {
		key := filmKey(row)
		fs, ok := stats[key]
		if !ok {
			fs = &filmStats{title: row.Title, dates: make(map[string]bool)}
			stats[key] = fs
		}
		fs.dates[row.Date] = true
		fs.rankSum += row.Rank
		fs.rankRows++
	}
	report.UniqueFilms = len(stats)

	report.MostConsistent = a.mostConsistent(stats)
	report.BestAverage = a.bestAverage(stats)
	report.Flow = listingFlow(dates, byDate)
	report.LatestTop = latestTop(byDate[report.LastDate], a.topN)

	return report
}

// filmKey identifies a film across snapshots.
func filmKey(row history.Row) string {
	if row.FilmID != "" {
		return "id:" + row.FilmID
	}
	return "title:" + row.Title
}

// mostConsistent ranks films by distinct snapshot appearances.
// Ties break alphabetically by title so the report is deterministic.
func (a *Analyzer) mostConsistent(stats map[string]*filmStats) []model.FilmConsistency {
	out := make([]model.FilmConsistency, 0, len(stats))
	for _, fs := range stats {
		out = append(out, model.FilmConsistency{
			Title:       fs.title,
			Appearances: len(fs.dates),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Appearances != out[j].Appearances {
			return out[i].Appearances > out[j].Appearances
		}
		return out[i].Title < out[j].Title
	})

	if len(out) > a.topN {
		out = out[:a.topN]
	}
	return out
}

// bestAverage ranks films by mean rank, best (lowest) first.
func (a *Analyzer) bestAverage(stats map[string]*filmStats) []model.FilmAverageRank {
	out := make([]model.FilmAverageRank, 0, len(stats))
	for _, fs := range stats {
		out = append(out, model.FilmAverageRank{
			Title:       fs.title,
			AverageRank: float64(fs.rankSum) / float64(fs.rankRows),
			Appearances: len(fs.dates),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageRank != out[j].AverageRank {
			return out[i].AverageRank < out[j].AverageRank
		}
		return out[i].Title < out[j].Title
	})

	if len(out) > a.topN {
		out = out[:a.topN]
	}
	return out
}

// listingFlow computes per-date entries and exits relative to the
// previous snapshot date. The first date has no predecessor and is
// omitted, matching how churn is defined.
func listingFlow(dates []string, byDate map[string][]history.Row) []model.SnapshotFlow {
	flow := make([]model.SnapshotFlow, 0, len(dates))

	var prev map[string]bool
	for i, date := range dates {
		current := make(map[string]bool, len(byDate[date]))
		for _, row := range byDate[date] {
			current[filmKey(row)] = true
		}

		if i > 0 {
			entries, exits := 0, 0
			for key := range current {
				if !prev[key] {
					entries++
				}
			}
			for key := range prev {
				if !current[key] {
					exits++
				}
			}
			flow = append(flow, model.SnapshotFlow{Date: date, Entries: entries, Exits: exits})
		}

		prev = current
	}

	return flow
}

// latestTop returns the lowest-ranked rows of the latest snapshot as
// films, rank ascending. Duplicate same-date runs may repeat ranks; the
// first occurrence wins.
func latestTop(rows []history.Row, n int) []model.Film {
	seen := make(map[int]bool, n)
	films := make([]model.Film, 0, n)

	sorted := make([]history.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })

	for _, row := range sorted {
		if seen[row.Rank] {
			continue
		}
		seen[row.Rank] = true
		films = append(films, model.Film{
			Rank:  row.Rank,
			ID:    row.FilmID,
			Title: row.Title,
			URL:   row.URL,
		})
		if len(films) == n {
			break
		}
	}

	return films
}
