package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/harrison/secrev/internal/models"
)

// LatestLogName is the symlink that always points at the newest scan log
const LatestLogName = "latest.log"

// FileLogger writes scan events to a timestamped log file per scan and keeps
// a latest.log symlink pointing at it. It is thread-safe.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger in logDir at the given level. The
// directory is created if needed.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// scan-YYYYMMDD-HHMMSS.log
	runFile := filepath.Join(logDir, fmt.Sprintf("scan-%s.log", time.Now().Format("20060102-150405")))
	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, LatestLogName)
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== Secrev Scan Log ===\n")
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// Path returns the log file of this scan
func (fl *FileLogger) Path() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogTrace logs a trace-level message
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogScanStart records the scan configuration
func (fl *FileLogger) LogScanStart(start models.ScanStart) {
	fl.LogInfo(fmt.Sprintf("Scan ID: %s", start.ScanID))
	fl.LogInfo(fmt.Sprintf("Root: %s", start.Root))
	fl.LogInfo(fmt.Sprintf("Provider: %s, model: %s", start.Provider, start.Model))
	fl.LogInfo(fmt.Sprintf("Files: %d, chunk size: %d, character limit: %d", start.Files, start.ChunkSize, start.CharLimit))
}

// LogFileStart records the start of a file
func (fl *FileLogger) LogFileStart(index, total int, relPath string) {
	fl.LogInfo(fmt.Sprintf("Processing file %d/%d: %s", index, total, relPath))
}

// LogChunk records a chunk about to be analyzed
func (fl *FileLogger) LogChunk(index, total, size int) {
	fl.LogDebug(fmt.Sprintf("Analyzing chunk %d/%d (size: %d chars)", index, total, size))
}

// LogFileSkipped records a file the scan did not analyze
func (fl *FileLogger) LogFileSkipped(relPath string, reason models.SkipReason, detail string) {
	if detail == "" {
		detail = "skipped"
	}
	level := "WARN"
	if reason == models.SkipReadError {
		level = "ERROR"
	}
	fl.logWithLevel(level, fmt.Sprintf("Skipped %s (%s): %s", relPath, reason, detail))
}

// LogRateLimitCountdown records rate limit waits at debug level
func (fl *FileLogger) LogRateLimitCountdown(remaining, total time.Duration) {
	fl.LogDebug(fmt.Sprintf("Rate limited, %s of %s remaining", formatDuration(remaining), formatDuration(total)))
}

// LogSummary records the scan totals
func (fl *FileLogger) LogSummary(summary models.ScanSummary) {
	if !fl.shouldLog("info") {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s] === Scan Summary ===\n", timestamp())
	fmt.Fprintf(&b, "Scan ID: %s\n", summary.ScanID)
	fmt.Fprintf(&b, "Files: %d total, %d analyzed, %d skipped, %d failed, %d not reached\n",
		summary.FilesTotal, summary.FilesAnalyzed, summary.FilesSkipped, summary.FilesFailed, summary.FilesUntouched())
	fmt.Fprintf(&b, "Chunks: %d analyzed, %d errors\n", summary.ChunksSent, summary.ChunkErrors)
	fmt.Fprintf(&b, "Characters processed: %s\n", humanize.Comma(int64(summary.CharsProcessed)))
	if summary.LimitReached {
		fmt.Fprintf(&b, "Character limit reached: %s\n", humanize.Comma(int64(summary.CharLimit)))
	}
	fmt.Fprintf(&b, "Duration: %s\n", formatDuration(summary.Duration))
	fl.writeRunLog(b.String())
}

// Close flushes and closes the log file
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return nil
	}
	if err := fl.runLog.Sync(); err != nil {
		return fmt.Errorf("failed to sync scan log: %w", err)
	}
	if err := fl.runLog.Close(); err != nil {
		return fmt.Errorf("failed to close scan log: %w", err)
	}
	fl.runLog = nil
	return nil
}

// writeRunLog writes message and flushes so the log is readable while the
// scan runs
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}
