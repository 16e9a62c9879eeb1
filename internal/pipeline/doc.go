// Package pipeline orchestrates one scrape cycle as an ordered sequence
// of steps: fetch the listing, optionally enrich details, append to the
// history CSV, and mirror into the snapshot database.
//
// The pipeline stops on the first step error by default. That ordering
// is what keeps a failed day out of the history file: the append step
// is only reached after fetch and parse have succeeded.
package pipeline
