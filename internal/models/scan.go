// Package models defines the scan events and totals shared between the scan
// driver and its loggers.
package models

import "time"

// SkipReason explains why a selected file was not analyzed
type SkipReason string

const (
	// SkipEmpty marks an empty or whitespace-only file
	SkipEmpty SkipReason = "empty"
	// SkipBudget marks a file refused by the character budget pre-check
	SkipBudget SkipReason = "budget"
	// SkipReadError marks a file that could not be read
	SkipReadError SkipReason = "read-error"
)

// ScanStart describes a scan about to analyze files
type ScanStart struct {
	ScanID    string
	Root      string
	Provider  string
	Model     string
	Files     int
	ChunkSize int
	CharLimit int
}

// ScanSummary holds the totals of a finished scan
type ScanSummary struct {
	ScanID         string
	FilesTotal     int
	FilesAnalyzed  int
	FilesSkipped   int
	FilesFailed    int
	ChunksSent     int
	ChunkErrors    int
	CharsProcessed int
	CharLimit      int
	LimitReached   bool
	Duration       time.Duration
}

// FilesUntouched returns the selected files the scan never reached because
// the character limit stopped it early
func (s ScanSummary) FilesUntouched() int {
	n := s.FilesTotal - s.FilesAnalyzed - s.FilesSkipped - s.FilesFailed
	if n < 0 {
		return 0
	}
	return n
}
