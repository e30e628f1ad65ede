package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
)

// SummaryLimit caps the console summary in characters
const SummaryLimit = 3000

const truncationNote = "\n... (Full report saved to file)"

// Summary returns the Markdown rendering truncated for the console
func (r *Report) Summary() string {
	md := r.RenderMarkdown()
	if utf8.RuneCountInString(md) <= SummaryLimit {
		return md
	}
	return string([]rune(md)[:SummaryLimit]) + truncationNote
}

// PrintSummary writes the console summary to out. When out is a terminal
// the Markdown is styled with glamour; otherwise it is printed as is.
func PrintSummary(out io.Writer, r *Report) {
	header := strings.Repeat("=", 20)
	fmt.Fprintf(out, "\n%s Secrev Report Summary %s\n\n", header, header)

	summary := r.Summary()
	if isTerminal(out) {
		if styled, err := renderStyled(summary); err == nil {
			fmt.Fprint(out, styled)
			return
		}
	}
	fmt.Fprintln(out, summary)
}

func renderStyled(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
