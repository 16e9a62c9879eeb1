package report

import (
	"io"

	"github.com/popcult/boxdtrend/internal/model"
)

// Writer defines the interface for report output.
// Implementations render results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or buffers
// with the same API.
type Writer interface {
	// WriteSnapshot outputs a run summary for one scrape cycle.
	// Returns the number of bytes written and any error encountered.
	WriteSnapshot(snapshot *model.Snapshot) (int, error)

	// WriteTrends outputs a trend report over the accumulated history.
	WriteTrends(report *model.TrendReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// Useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteSnapshot outputs the run summary to all configured Writers.
// Returns the total bytes written; stops on first error encountered.
func (m *MultiWriter) WriteSnapshot(snapshot *model.Snapshot) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSnapshot(snapshot)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteTrends outputs the trend report to all configured Writers.
func (m *MultiWriter) WriteTrends(report *model.TrendReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteTrends(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
