package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/harrison/secrev/internal/models"
)

func TestNewConsoleLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, " DEBUG ")
	if logger.writer != buf {
		t.Error("writer not set correctly")
	}
	if logger.logLevel != "debug" {
		t.Errorf("expected log level %q, got %q", "debug", logger.logLevel)
	}
	if logger.colorOutput {
		t.Error("color should be disabled for non-terminal writers")
	}

	if l := NewConsoleLogger(buf, "verbose"); l.logLevel != "info" {
		t.Errorf("invalid level should default to info, got %q", l.logLevel)
	}
}

func TestNilWriterDiscards(t *testing.T) {
	logger := NewConsoleLogger(nil, "trace")
	logger.LogInfo("x")
	logger.LogFileStart(1, 1, "a.go")
	logger.LogSummary(models.ScanSummary{})
}

func TestLogLevelFiltering(t *testing.T) {
	levels := []string{"trace", "debug", "info", "warn", "error"}
	emit := map[string]func(*ConsoleLogger, string){
		"trace": (*ConsoleLogger).LogTrace,
		"debug": (*ConsoleLogger).LogDebug,
		"info":  (*ConsoleLogger).LogInfo,
		"warn":  (*ConsoleLogger).LogWarn,
		"error": (*ConsoleLogger).LogError,
	}

	for ci, configured := range levels {
		for mi, message := range levels {
			buf := &bytes.Buffer{}
			logger := NewConsoleLogger(buf, configured)
			emit[message](logger, message+" msg")

			shouldAppear := mi >= ci
			appeared := strings.Contains(buf.String(), message+" msg")
			if appeared != shouldAppear {
				t.Errorf("level %s, message %s: appeared=%v, want %v", configured, message, appeared, shouldAppear)
			}
			if appeared && !strings.Contains(buf.String(), "["+strings.ToUpper(message)+"]") {
				t.Errorf("missing level tag in %q", buf.String())
			}
		}
	}
}

func TestLogScanEvents(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogScanStart(models.ScanStart{ScanID: "id-1", Root: "/src", Provider: "gemini", Model: "gemini-1.5-flash-latest", Files: 1200})
	logger.LogFileStart(3, 10, "pkg/a.go")
	logger.LogChunk(1, 2, 200000)
	logger.LogFileSkipped("empty.go", models.SkipEmpty, "")
	logger.LogFileSkipped("big.go", models.SkipBudget, "would exceed the limit")
	logger.LogFileSkipped("locked.go", models.SkipReadError, "Error: Could not read file locked.go")

	out := buf.String()
	for _, want := range []string{
		"Scan id-1: 1,200 selected file(s) under /src",
		"Using gemini model: gemini-1.5-flash-latest",
		"Processing file 3/10: pkg/a.go  [==        ] 2/10 (20%)",
		"Analyzing chunk 1/2 (size: 200,000 chars)...",
		"[INFO] Skipping empty file: empty.go",
		"[WARN] would exceed the limit",
		"[ERROR] Error: Could not read file locked.go",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLogScanEventsFilteredAtWarn(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "warn")

	logger.LogFileStart(1, 2, "a.go")
	logger.LogChunk(1, 1, 10)
	logger.LogSummary(models.ScanSummary{FilesTotal: 2})
	if buf.Len() != 0 {
		t.Errorf("expected info-level events to be filtered, got %q", buf.String())
	}

	logger.LogRateLimitCountdown(90*time.Second, 2*time.Minute)
	if !strings.Contains(buf.String(), "Resuming in 1m30s (of 2m)") {
		t.Errorf("unexpected countdown output %q", buf.String())
	}
}

func TestLogSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogSummary(models.ScanSummary{
		ScanID:         "id-9",
		FilesTotal:     5,
		FilesAnalyzed:  2,
		FilesSkipped:   1,
		FilesFailed:    1,
		ChunksSent:     4,
		ChunkErrors:    1,
		CharsProcessed: 1234567,
		CharLimit:      1000000,
		LimitReached:   true,
		Duration:       75 * time.Second,
	})

	out := buf.String()
	for _, want := range []string{
		"=== Scan Summary ===",
		"Scan ID: id-9",
		"Files analyzed: 2/5",
		"Files skipped: 1",
		"Files failed: 1",
		"Files not reached: 1",
		"Chunks analyzed: 4",
		"Chunk errors: 1",
		"Characters processed: 1,234,567",
		"Max total characters limit (1,000,000) reached",
		"Duration: 1m15s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("summary to a buffer should not be colored")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{5 * time.Second, "5s"},
		{time.Minute, "1m"},
		{90 * time.Second, "1m30s"},
		{2 * time.Hour, "2h"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
		{time.Hour + time.Minute + time.Second, "1h1m1s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestNoOpLogger(t *testing.T) {
	n := NewNoOpLogger()
	n.LogInfo("x")
	n.LogScanStart(models.ScanStart{})
	n.LogFileStart(1, 1, "a")
	n.LogChunk(1, 1, 1)
	n.LogFileSkipped("a", models.SkipEmpty, "")
	n.LogRateLimitCountdown(time.Second, time.Second)
	n.LogSummary(models.ScanSummary{})
}
