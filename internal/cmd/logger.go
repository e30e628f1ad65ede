package cmd

import (
	"time"

	"github.com/harrison/secrev/internal/models"
	"github.com/harrison/secrev/internal/scan"
)

// scanLogger is what both console and file loggers provide
type scanLogger interface {
	scan.Logger
	LogRateLimitCountdown(remaining, total time.Duration)
}

// multiLogger implements scanLogger by delegating to multiple loggers
type multiLogger struct {
	loggers []scanLogger
}

// LogDebug forwards to all loggers
func (ml *multiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

// LogInfo forwards to all loggers
func (ml *multiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

// LogWarn forwards to all loggers
func (ml *multiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

// LogError forwards to all loggers
func (ml *multiLogger) LogError(message string) {
	for _, l := range ml.loggers {
		l.LogError(message)
	}
}

// LogScanStart forwards to all loggers
func (ml *multiLogger) LogScanStart(start models.ScanStart) {
	for _, l := range ml.loggers {
		l.LogScanStart(start)
	}
}

// LogFileStart forwards to all loggers
func (ml *multiLogger) LogFileStart(index, total int, relPath string) {
	for _, l := range ml.loggers {
		l.LogFileStart(index, total, relPath)
	}
}

// LogChunk forwards to all loggers
func (ml *multiLogger) LogChunk(index, total, size int) {
	for _, l := range ml.loggers {
		l.LogChunk(index, total, size)
	}
}

// LogFileSkipped forwards to all loggers
func (ml *multiLogger) LogFileSkipped(relPath string, reason models.SkipReason, detail string) {
	for _, l := range ml.loggers {
		l.LogFileSkipped(relPath, reason, detail)
	}
}

// LogRateLimitCountdown forwards to all loggers
func (ml *multiLogger) LogRateLimitCountdown(remaining, total time.Duration) {
	for _, l := range ml.loggers {
		l.LogRateLimitCountdown(remaining, total)
	}
}

// LogSummary forwards to all loggers
func (ml *multiLogger) LogSummary(summary models.ScanSummary) {
	for _, l := range ml.loggers {
		l.LogSummary(summary)
	}
}
