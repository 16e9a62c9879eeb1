// Package main provides the entry point for the boxdtrend CLI.
//
// boxdtrend tracks the Letterboxd popular-films listing over time.
// Each run appends the current ranking to an append-only history CSV,
// and the accumulated history can be analyzed for trends.
//
// Usage:
//
//	boxdtrend snapshot
//	boxdtrend trends
//
// See --help for all available options.
package main

// main is the entry point for boxdtrend.
func main() {
	Execute()
}
