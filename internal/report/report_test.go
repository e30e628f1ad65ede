package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 4, 2, 13, 4, 5, 0, time.UTC)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Kind
	}{
		{"SQL Injection in login()", Actionable},
		{"No critical security vulnerabilities identified in this snippet.", NoFinding},
		{"Error: Content generation blocked for a.py. Reason: SAFETY", Error},
		{"Error: No critical security vulnerabilities identified", Error},
		{"", Actionable},
	}
	for _, tt := range tests {
		got := Classify(tt.text)
		assert.Equal(t, tt.want, got.Kind, "Classify(%q)", tt.text)
		assert.Equal(t, tt.text, got.Text)
	}
}

func TestNewError(t *testing.T) {
	assert.Equal(t, Finding{Text: "Error: boom", Kind: Error}, NewError("boom"))
	assert.Equal(t, "Error: already", NewError("Error: already").Text)
}

func TestRenderEmpty(t *testing.T) {
	r := Build(nil, fixedTime, "")

	md := r.RenderMarkdown()
	txt := r.RenderText()

	for _, out := range []string{md, txt} {
		assert.Contains(t, out, "Secrev Report - 2025-04-02 13:04:05")
		assert.Contains(t, out, Disclaimer)
		assert.Contains(t, out, NoFindingsMessage)
		assert.NotContains(t, out, NothingCriticalMessage)
		assert.NotContains(t, out, "Analysis Issue")
		assert.NotContains(t, out, "ANALYSIS ISSUE")
	}
	assert.NotContains(t, md, "---\n")
	assert.NotContains(t, txt, textSeparator)
}

func TestRenderMixedFindings(t *testing.T) {
	findings := []Finding{
		Classify("Hardcoded secret in config.py"),
		Classify("No critical security vulnerabilities identified in this snippet."),
		NewError("Could not read file b.py. Reason: permission denied"),
		Classify("XSS in template.html"),
	}
	r := Build(findings, fixedTime, "scan-123")

	md := r.RenderMarkdown()
	assert.Contains(t, md, "# Secrev Report - 2025-04-02 13:04:05\n\n")
	assert.Contains(t, md, "_Scan ID: scan-123_")
	assert.Contains(t, md, "---\nHardcoded secret in config.py\n\n")
	assert.Contains(t, md, "---\n**Analysis Issue:**\nError: Could not read file b.py. Reason: permission denied\n\n")
	assert.NotContains(t, md, "No critical security vulnerabilities identified in this snippet.")
	assert.NotContains(t, md, NothingCriticalMessage)
	assert.Less(t, strings.Index(md, "Hardcoded secret"), strings.Index(md, "Could not read file"))
	assert.Less(t, strings.Index(md, "Could not read file"), strings.Index(md, "XSS in template"))

	txt := r.RenderText()
	assert.Contains(t, txt, "Findings:\n====================\n\n")
	assert.Contains(t, txt, "------------------------\nXSS in template.html\n\n")
	assert.Contains(t, txt, "--- ANALYSIS ISSUE ---\nError: Could not read file b.py.")
	assert.Contains(t, txt, "Scan ID: scan-123")

	assert.Equal(t, Counts{Actionable: 2, NoFinding: 1, Errors: 1}, r.Counts())
}

func TestRenderNothingCritical(t *testing.T) {
	t.Run("reviewed with no actionable entries", func(t *testing.T) {
		r := Build([]Finding{
			Classify("No critical security vulnerabilities identified in this snippet."),
			NewError("Received an empty response from Gemini for a.py."),
		}, fixedTime, "")
		assert.Contains(t, r.RenderMarkdown(), NothingCriticalMessage)
		assert.Contains(t, r.RenderText(), NothingCriticalMessage)
	})

	t.Run("errors only", func(t *testing.T) {
		r := Build([]Finding{NewError("boom")}, fixedTime, "")
		assert.NotContains(t, r.RenderMarkdown(), NothingCriticalMessage)
		assert.NotContains(t, r.RenderMarkdown(), NoFindingsMessage)
	})
}

func TestBuildCopiesFindings(t *testing.T) {
	findings := []Finding{Classify("a")}
	r := Build(findings, fixedTime, "")
	findings[0].Text = "changed"
	assert.Equal(t, "a", r.Findings[0].Text)
}

func TestRenderHTML(t *testing.T) {
	r := Build([]Finding{Classify("**Vulnerability Type:** SQL Injection")}, fixedTime, "")

	page, err := r.RenderHTML()
	require.NoError(t, err)
	assert.Contains(t, page, "<title>Secrev Report - 2025-04-02 13:04:05</title>")
	assert.Contains(t, page, "<h1>Secrev Report - 2025-04-02 13:04:05</h1>")
	assert.Contains(t, page, "<strong>Vulnerability Type:</strong>")
}

func TestSummary(t *testing.T) {
	short := Build([]Finding{Classify("short")}, fixedTime, "")
	assert.Equal(t, short.RenderMarkdown(), short.Summary())

	long := Build([]Finding{Classify(strings.Repeat("é", 5000))}, fixedTime, "")
	summary := long.Summary()
	assert.True(t, strings.HasSuffix(summary, "\n... (Full report saved to file)"))
	assert.Equal(t, SummaryLimit+len([]rune(truncationNote)), len([]rune(summary)))
}

func TestPrintSummaryPlain(t *testing.T) {
	var out bytes.Buffer
	PrintSummary(&out, Build(nil, fixedTime, ""))
	assert.Contains(t, out.String(), "==================== Secrev Report Summary ====================")
	assert.Contains(t, out.String(), NoFindingsMessage)
}

func TestBaseNameFrom(t *testing.T) {
	tests := []struct {
		arg  string
		want string
	}{
		{"", "secrev_scan"},
		{"  ", "secrev_scan"},
		{"audit", "audit"},
		{"out/audit.md", "audit"},
		{"archive.tar.gz", "archive.tar"},
		{"/", "secrev_scan"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BaseNameFrom(tt.arg, "secrev_scan"), "BaseNameFrom(%q)", tt.arg)
	}
}

func TestWriterWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	w := &Writer{Dir: dir, BaseName: "audit", HTML: true}
	r := Build([]Finding{Classify("finding")}, fixedTime, "")

	paths, err := w.Write(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "audit_20250402_130405.md"), paths.Markdown)
	assert.Equal(t, filepath.Join(dir, "audit_20250402_130405.txt"), paths.Text)
	assert.Equal(t, filepath.Join(dir, "audit_20250402_130405.html"), paths.HTML)

	md, err := os.ReadFile(paths.Markdown)
	require.NoError(t, err)
	assert.Equal(t, r.RenderMarkdown(), string(md))

	txt, err := os.ReadFile(paths.Text)
	require.NoError(t, err)
	assert.Equal(t, r.RenderText(), string(txt))

	_, err = os.Stat(paths.HTML)
	assert.NoError(t, err)
}

func TestWriterWithoutHTML(t *testing.T) {
	w := &Writer{Dir: t.TempDir(), BaseName: "scan"}
	paths, err := w.Write(context.Background(), Build(nil, fixedTime, ""))
	require.NoError(t, err)
	assert.Empty(t, paths.HTML)
	assert.NotEmpty(t, paths.Markdown)
}

func TestWriterPartialFailure(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir, BaseName: "scan"}
	names := w.FileNames(fixedTime)

	// occupy the Markdown path with a non-empty directory so the rename fails
	require.NoError(t, os.MkdirAll(filepath.Join(names.Markdown, "x"), 0o755))

	paths, err := w.Write(context.Background(), Build(nil, fixedTime, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not write Markdown report")
	assert.Empty(t, paths.Markdown)
	assert.Equal(t, names.Text, paths.Text)
}

func TestWriterUnusableDirectory(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	w := &Writer{Dir: filepath.Join(blocker, "reports"), BaseName: "scan"}
	paths, err := w.Write(context.Background(), Build(nil, fixedTime, ""))
	require.Error(t, err)
	assert.Equal(t, Paths{}, paths)
}
