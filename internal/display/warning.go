package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// maxListedFiles caps how many files a warning lists before summarizing
const maxListedFiles = 20

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display writes the warning to out, colored when out is a terminal
func (w Warning) Display(out io.Writer) {
	c := color.New(color.FgYellow)
	if !colorEnabled(out) {
		c.DisableColor()
	}
	fmt.Fprint(out, c.Sprint(w.String()))
}

// String renders the warning without color
func (w Warning) String() string {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		if len(w.Files) == 1 {
			b.WriteString("    Affected file:\n")
		} else {
			b.WriteString("    Affected files:\n")
		}
		for i, file := range w.Files {
			if i == maxListedFiles {
				fmt.Fprintf(&b, "      ... and %d more\n", len(w.Files)-maxListedFiles)
				break
			}
			fmt.Fprintf(&b, "      %d. %s\n", i+1, file)
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	return b.String()
}

func colorEnabled(out io.Writer) bool {
	if out != os.Stdout && out != os.Stderr {
		return false
	}
	return !color.NoColor
}

// WarnUnreachedFiles creates the warning shown when the character limit
// stopped a scan before every selected file was analyzed
func WarnUnreachedFiles(limit int, files []string) Warning {
	return Warning{
		Title:      "Max total characters limit reached",
		Message:    fmt.Sprintf("%d selected file(s) were not analyzed (limit: %d chars)", len(files), limit),
		Files:      files,
		Suggestion: "Raise --max-total-chars, or use 0 for no limit",
	}
}

// WarnReportWrite creates the warning shown when a report file could not
// be saved. The summary is still printed to the terminal.
func WarnReportWrite(err error, paths []string) Warning {
	return Warning{
		Title:      "Could not save all report files",
		Message:    err.Error(),
		Files:      paths,
		Suggestion: "Check that --output-dir is writable",
	}
}
