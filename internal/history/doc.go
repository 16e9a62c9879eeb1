// Package history maintains the append-only CSV record of snapshots.
//
// The file is the artifact of record: rows are never mutated or deleted,
// the header is written exactly once when the file is created, and an
// append is only reported as successful after the data has been flushed
// and fsynced. The daily job is the file's only writer; the external
// scheduler guarantees at most one run at a time.
package history
