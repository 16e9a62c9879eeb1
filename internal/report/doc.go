// Package report renders run summaries and trend reports in
// human-readable text, JSON, and Markdown.
package report
