// Package scan drives one security review over a list of selected files:
// it reads each file, splits it into chunks, enforces the character budget
// and collects the analyzer's findings in order.
package scan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/secrev/internal/analyzer"
	"github.com/harrison/secrev/internal/budget"
	"github.com/harrison/secrev/internal/chunk"
	"github.com/harrison/secrev/internal/fileutil"
	"github.com/harrison/secrev/internal/models"
	"github.com/harrison/secrev/internal/report"
)

// Logger receives scan progress
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogScanStart(start models.ScanStart)
	LogFileStart(index, total int, relPath string)
	LogChunk(index, total, size int)
	LogFileSkipped(relPath string, reason models.SkipReason, detail string)
	LogSummary(summary models.ScanSummary)
}

// ReadFunc loads the text of a file
type ReadFunc func(path string) (string, error)

// Session holds the state of one scan
type Session struct {
	ID        string
	Root      string
	Provider  string
	Model     string
	ChunkSize int

	Analyzer analyzer.Analyzer
	Budget   *budget.CharBudget
	Logger   Logger

	// Read defaults to fileutil.ReadText
	Read ReadFunc
}

// Result is the outcome of Run
type Result struct {
	Findings []report.Finding
	Summary  models.ScanSummary
	// Unreached lists the selected files never looked at because the
	// character limit stopped the scan
	Unreached []string
}

// NewSession creates a session with a fresh budget of maxTotalChars
// (0 means unlimited)
func NewSession(id, root string, a analyzer.Analyzer, chunkSize, maxTotalChars int, logger Logger) *Session {
	return &Session{
		ID:        id,
		Root:      root,
		ChunkSize: chunkSize,
		Analyzer:  a,
		Budget:    budget.NewCharBudget(maxTotalChars),
		Logger:    logger,
		Read:      fileutil.ReadText,
	}
}

// Run analyzes files in order. Read and analysis failures become error
// findings and the scan continues. If ctx is cancelled the scan stops and
// the findings gathered so far are returned together with ctx's error.
func (s *Session) Run(ctx context.Context, files []fileutil.CandidateFile) (*Result, error) {
	start := time.Now()
	read := s.Read
	if read == nil {
		read = fileutil.ReadText
	}

	result := &Result{Findings: make([]report.Finding, 0)}
	sum := &result.Summary
	sum.ScanID = s.ID
	sum.FilesTotal = len(files)
	sum.CharLimit = s.Budget.Limit

	s.Logger.LogScanStart(models.ScanStart{
		ScanID:    s.ID,
		Root:      s.Root,
		Provider:  s.Provider,
		Model:     s.Model,
		Files:     len(files),
		ChunkSize: s.ChunkSize,
		CharLimit: s.Budget.Limit,
	})

	var runErr error
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		stop, err := s.processFile(ctx, read, i, len(files), file, result)
		if err != nil {
			runErr = err
			break
		}
		if stop {
			sum.LimitReached = true
			for _, rest := range files[i+1:] {
				result.Unreached = append(result.Unreached, rest.RelPath)
			}
			break
		}
	}

	sum.CharsProcessed = s.Budget.Used()
	sum.Duration = time.Since(start)
	s.Logger.LogSummary(*sum)
	return result, runErr
}

// processFile handles files[index]. It returns stop=true once the budget is
// exhausted, and an error only when ctx was cancelled.
func (s *Session) processFile(ctx context.Context, read ReadFunc, index, total int, file fileutil.CandidateFile, result *Result) (bool, error) {
	sum := &result.Summary
	rel := file.RelPath
	s.Logger.LogFileStart(index+1, total, rel)

	content, err := read(file.AbsPath)
	if err != nil {
		f := report.NewError(fmt.Sprintf("Could not read file %s. Reason: %v", rel, err))
		result.Findings = append(result.Findings, f)
		sum.FilesFailed++
		s.Logger.LogFileSkipped(rel, models.SkipReadError, f.Text)
		return false, nil
	}

	if chunk.IsBlank(content) {
		sum.FilesSkipped++
		s.Logger.LogFileSkipped(rel, models.SkipEmpty, "")
		return false, nil
	}

	size := chunk.Len(content)
	if !s.Budget.AllowFile(size) {
		sum.FilesSkipped++
		s.Logger.LogFileSkipped(rel, models.SkipBudget, fmt.Sprintf(
			"Max total characters limit (%d) would be exceeded by this file's content (%d chars). Skipping file.",
			s.Budget.Limit, size))
		return false, nil
	}

	s.Budget.BeginFile()
	chunks := chunk.Split(content, s.ChunkSize)
	sent := 0

	for ci, c := range chunks {
		if chunk.IsBlank(c) {
			continue
		}
		n := chunk.Len(c)
		if !s.Budget.AllowChunk(n) {
			s.Logger.LogInfo(fmt.Sprintf(
				"Max total characters limit (%d) would be exceeded by this chunk. Stopping analysis for this file.",
				s.Budget.Limit))
			break
		}

		s.Logger.LogChunk(ci+1, len(chunks), n)
		display := chunk.DisplayPath(rel, ci, len(chunks))

		resp, err := s.Analyzer.Analyze(ctx, display, c)
		if err != nil && ctx.Err() != nil {
			s.countFile(sent, sum)
			return false, ctx.Err()
		}
		if err != nil {
			f := report.NewError(fmt.Sprintf("Analysis failed for %s: %v", display, err))
			result.Findings = append(result.Findings, f)
			sum.ChunkErrors++
			s.Logger.LogError(f.Text)
		} else if strings.TrimSpace(resp) == "" {
			f := report.NewError(fmt.Sprintf("Received an empty response for %s", display))
			result.Findings = append(result.Findings, f)
			sum.ChunkErrors++
			s.Logger.LogWarn(f.Text)
		} else {
			result.Findings = append(result.Findings, report.Classify(resp))
		}

		s.Budget.Consume(n)
		sum.ChunksSent++
		sent++

		if s.Budget.Reached() {
			if index < total-1 || ci < len(chunks)-1 {
				s.Logger.LogInfo(fmt.Sprintf(
					"Max total characters limit (%d) reached. Moving to report generation.", s.Budget.Limit))
			}
			s.countFile(sent, sum)
			return true, nil
		}
	}

	s.countFile(sent, sum)
	return false, nil
}

func (s *Session) countFile(sent int, sum *models.ScanSummary) {
	if sent > 0 {
		sum.FilesAnalyzed++
	} else {
		sum.FilesSkipped++
	}
}
