package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Disclaimer is attached to every rendering
const Disclaimer = "This report was generated by an AI-assisted security review tool (Secrev). " +
	"The findings are potential vulnerabilities and **require human verification and contextual understanding.** " +
	"This tool is an aid and not a replacement for thorough manual code review, dedicated SAST/DAST tools, or professional security audits."

const (
	// NoFindingsMessage is used when the scan produced no findings at all
	NoFindingsMessage = "No potential vulnerabilities were reported by the LLM across the scanned files."
	// NothingCriticalMessage is used when content was reviewed but nothing
	// actionable came back
	NothingCriticalMessage = "The LLM reviewed the content but did not identify any critical security vulnerabilities."
)

const (
	titleTimeFormat = "2006-01-02 15:04:05"
	textRule        = "===================="
	textSeparator   = "------------------------"
	textIssueHeader = "--- ANALYSIS ISSUE ---"
)

// Report is the aggregated result of one scan
type Report struct {
	Findings    []Finding
	GeneratedAt time.Time
	ScanID      string
}

// Counts summarizes findings per bucket
type Counts struct {
	Actionable int
	NoFinding  int
	Errors     int
}

// Build aggregates findings in analysis order
func Build(findings []Finding, generatedAt time.Time, scanID string) *Report {
	copied := make([]Finding, len(findings))
	copy(copied, findings)
	return &Report{Findings: copied, GeneratedAt: generatedAt, ScanID: scanID}
}

// Title returns the report heading
func (r *Report) Title() string {
	return "Secrev Report - " + r.GeneratedAt.Format(titleTimeFormat)
}

// Counts tallies the findings by kind
func (r *Report) Counts() Counts {
	var c Counts
	for _, f := range r.Findings {
		switch f.Kind {
		case Actionable:
			c.Actionable++
		case NoFinding:
			c.NoFinding++
		case Error:
			c.Errors++
		}
	}
	return c
}

// summaryMessage returns the closing statement, if any. An empty report
// says so; a report with no actionable entry but at least one non-error
// entry says the content was reviewed without critical findings.
func (r *Report) summaryMessage() string {
	if len(r.Findings) == 0 {
		return NoFindingsMessage
	}
	c := r.Counts()
	if c.Actionable == 0 && c.NoFinding > 0 {
		return NothingCriticalMessage
	}
	return ""
}

// RenderMarkdown renders the report as Markdown
func (r *Report) RenderMarkdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title())
	if r.ScanID != "" {
		fmt.Fprintf(&b, "_Scan ID: %s_\n\n", r.ScanID)
	}
	b.WriteString("## Disclaimer\n")
	b.WriteString(Disclaimer + "\n\n")
	b.WriteString("## Findings\n")

	for _, f := range r.Findings {
		switch f.Kind {
		case Actionable:
			fmt.Fprintf(&b, "---\n%s\n\n", f.Text)
		case Error:
			fmt.Fprintf(&b, "---\n**Analysis Issue:**\n%s\n\n", f.Text)
		}
	}

	if msg := r.summaryMessage(); msg != "" {
		b.WriteString(msg + "\n")
	}
	return b.String()
}

// RenderText renders the report as plain text
func (r *Report) RenderText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", r.Title())
	if r.ScanID != "" {
		fmt.Fprintf(&b, "Scan ID: %s\n\n", r.ScanID)
	}
	b.WriteString("Disclaimer:\n")
	b.WriteString(Disclaimer + "\n\n")
	b.WriteString("Findings:\n")
	b.WriteString(textRule + "\n\n")

	for _, f := range r.Findings {
		switch f.Kind {
		case Actionable:
			fmt.Fprintf(&b, "%s\n%s\n\n", textSeparator, f.Text)
		case Error:
			fmt.Fprintf(&b, "%s\n%s\n\n", textIssueHeader, f.Text)
		}
	}

	if msg := r.summaryMessage(); msg != "" {
		b.WriteString(msg + "\n")
	}
	return b.String()
}

// RenderHTML converts the Markdown rendering into a standalone HTML page
func (r *Report) RenderHTML() (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert([]byte(r.RenderMarkdown()), &body); err != nil {
		return "", fmt.Errorf("failed to render HTML report: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(r.Title()))
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}
