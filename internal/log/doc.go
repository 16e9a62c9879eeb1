// Package log provides logging for the scraper built on top of the
// standard slog package, with automatic masking of credential values.
//
// Scrape sources can be configured with session cookies and extra HTTP
// headers. Those values must never appear in log output, even in
// verbose mode, because logs are routinely attached to bug reports and
// CI job summaries. The RedactHandler masks attribute values whose key
// or shape indicates a credential before the record reaches the
// underlying handler.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("request sent",
//	    "cookie", "session=abc123", // masked in output
//	    "url", "https://letterboxd.com/films/",
//	)
package log
