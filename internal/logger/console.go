// Package logger provides logging implementations for secrev scans.
//
// Loggers report scan progress per file and chunk plus a closing summary.
// Implementations are thread-safe and write to the console or to a per-scan
// log file.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/harrison/secrev/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs scan progress to a writer with timestamps.
// All output is prefixed with [HH:MM:SS]. Messages below the configured
// level are dropped. Color is enabled for terminal output only.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to writer.
// A nil writer discards everything. Valid levels are trace, debug, info,
// warn and error (case-insensitive); anything else means info.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether w is stdout or stderr attached to a TTY.
// fatih/color already folds in NO_COLOR and TTY detection.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		return !color.NoColor
	}
	return false
}

// normalizeLogLevel lowercases and validates a level, defaulting to info
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	default:
		return "info"
	}
}

// logLevelToInt converts a log level string to its numeric value
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel writes "[HH:MM:SS] [LEVEL] message" if filtering allows it
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	label := level
	if cl.colorOutput {
		label = levelColor(level).Sprint(level)
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", timestamp(), label, message)
}

func levelColor(level string) *color.Color {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.FgBlue)
	}
}

// write emits a raw line at info level
func (cl *ConsoleLogger) write(line string) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	io.WriteString(cl.writer, line)
}

// LogScanStart announces the scan configuration
func (cl *ConsoleLogger) LogScanStart(start models.ScanStart) {
	cl.LogInfo(fmt.Sprintf("Scan %s: %s selected file(s) under %s", start.ScanID, humanize.Comma(int64(start.Files)), start.Root))
	cl.LogInfo(fmt.Sprintf("Using %s model: %s", start.Provider, start.Model))
	limit := "unlimited"
	if start.CharLimit > 0 {
		limit = humanize.Comma(int64(start.CharLimit)) + " chars"
	}
	cl.LogDebug(fmt.Sprintf("Chunk size: %s chars, total limit: %s", humanize.Comma(int64(start.ChunkSize)), limit))
}

// LogFileStart logs the start of file index of total (1-based) with a
// progress bar over the files done so far.
// Format: "[HH:MM:SS] Processing file 3/10: path  [==        ] 2/10 (20%)"
func (cl *ConsoleLogger) LogFileStart(index, total int, relPath string) {
	pb := NewProgressBar(total, 10, cl.colorOutput)
	pb.Update(index - 1)

	name := relPath
	if cl.colorOutput {
		name = color.New(color.Bold).Sprint(relPath)
	}
	cl.write(fmt.Sprintf("\n[%s] Processing file %d/%d: %s  %s\n", timestamp(), index, total, name, pb.Render()))
}

// LogChunk logs a chunk about to be analyzed
func (cl *ConsoleLogger) LogChunk(index, total, size int) {
	cl.write(fmt.Sprintf("[%s]     Analyzing chunk %d/%d (size: %s chars)...\n", timestamp(), index, total, humanize.Comma(int64(size))))
}

// LogFileSkipped logs a file the scan did not analyze
func (cl *ConsoleLogger) LogFileSkipped(relPath string, reason models.SkipReason, detail string) {
	switch reason {
	case models.SkipEmpty:
		cl.LogInfo("Skipping empty file: " + relPath)
	case models.SkipReadError:
		cl.LogError(detail)
	default:
		cl.LogWarn(detail)
	}
}

// LogRateLimitCountdown reports time left before analysis resumes
func (cl *ConsoleLogger) LogRateLimitCountdown(remaining, total time.Duration) {
	cl.LogWarn(fmt.Sprintf("Rate limited by the analysis provider. Resuming in %s (of %s)", formatDuration(remaining), formatDuration(total)))
}

// LogSummary logs the scan totals
func (cl *ConsoleLogger) LogSummary(summary models.ScanSummary) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	scheme := newColorScheme(cl.colorOutput)

	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s] === Scan Summary ===\n", timestamp())
	fmt.Fprintf(&b, "  %s\n", formatMetric("Scan ID", summary.ScanID, scheme.label, scheme.value))
	fmt.Fprintf(&b, "  %s\n", formatMetric("Files analyzed", fmt.Sprintf("%d/%d", summary.FilesAnalyzed, summary.FilesTotal), scheme.label, scheme.success))
	if summary.FilesSkipped > 0 {
		fmt.Fprintf(&b, "  %s\n", formatMetric("Files skipped", summary.FilesSkipped, scheme.label, scheme.warn))
	}
	if summary.FilesFailed > 0 {
		fmt.Fprintf(&b, "  %s\n", formatMetric("Files failed", summary.FilesFailed, scheme.label, scheme.fail))
	}
	if n := summary.FilesUntouched(); n > 0 {
		fmt.Fprintf(&b, "  %s\n", formatMetric("Files not reached", n, scheme.label, scheme.warn))
	}
	fmt.Fprintf(&b, "  %s\n", formatMetric("Chunks analyzed", summary.ChunksSent, scheme.label, scheme.value))
	if summary.ChunkErrors > 0 {
		fmt.Fprintf(&b, "  %s\n", formatMetric("Chunk errors", summary.ChunkErrors, scheme.label, scheme.fail))
	}
	fmt.Fprintf(&b, "  %s\n", formatMetric("Characters processed", humanize.Comma(int64(summary.CharsProcessed)), scheme.label, scheme.value))
	if summary.LimitReached {
		fmt.Fprintf(&b, "  %s\n", scheme.warn.Sprintf("Max total characters limit (%s) reached", humanize.Comma(int64(summary.CharLimit))))
	}
	fmt.Fprintf(&b, "  %s\n", formatMetric("Duration", formatDuration(summary.Duration), scheme.label, scheme.value))

	cl.write(b.String())
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS)
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a duration to a short form such as "5s", "1m30s"
// or "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		minutes := remainder / time.Minute
		seconds := (remainder % time.Minute) / time.Second
		switch {
		case remainder == 0:
			return fmt.Sprintf("%dh", hours)
		case seconds == 0:
			return fmt.Sprintf("%dh%dm", hours, minutes)
		default:
			return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
		}
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	}
}

// NoOpLogger discards all log messages. Useful for testing or when logging
// is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(message string) {}
func (n *NoOpLogger) LogDebug(message string) {}
func (n *NoOpLogger) LogInfo(message string) {}
func (n *NoOpLogger) LogWarn(message string) {}
func (n *NoOpLogger) LogError(message string) {}
func (n *NoOpLogger) LogScanStart(start models.ScanStart) {}
func (n *NoOpLogger) LogFileStart(index, total int, relPath string) {}
func (n *NoOpLogger) LogChunk(index, total, size int) {}
func (n *NoOpLogger) LogFileSkipped(relPath string, reason models.SkipReason, detail string) {}
func (n *NoOpLogger) LogRateLimitCountdown(remaining, total time.Duration) {}
func (n *NoOpLogger) LogSummary(summary models.ScanSummary) {}
