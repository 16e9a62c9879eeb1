// Package database provides SQLite-based storage mirroring each snapshot.
//
// The CSV history file remains the artifact of record; the database is a
// queryable mirror used by the trends command for per-film detail lookups
// and by the snapshot command to detect same-date reruns. Losing the
// database loses nothing that cannot be rebuilt from the CSV.
package database
