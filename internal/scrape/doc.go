// Package scrape fetches and parses the popular films listing.
//
// The package is split into three concerns:
//   - Fetcher: a single HTTP GET with a bounded timeout and a short,
//     fixed-backoff retry loop for transient failures
//   - Parser: structural extraction of ranked entries from listing
//     markup and of metadata from individual film pages
//   - Scraper: pagination over the listing's AJAX pages plus optional
//     concurrent detail enrichment
//
// Every failure is typed: transport and HTTP status problems surface as
// *FetchError, structural mismatches (including an empty listing) as
// *ParseError. Callers rely on this split to decide whether a failure is
// transient or signals an upstream layout change.
package scrape
