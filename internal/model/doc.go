// Package model defines the core data structures used throughout boxdtrend.
//
// This package contains the following main types:
//   - Film: A single ranked entry scraped from the popular listing
//   - FilmDetail: Metadata enriched from a film's own page
//   - Snapshot: One scrape cycle's result, stamped with the run date
//   - TrendReport: Statistics computed over the accumulated history
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (scrape, history, database, report) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
