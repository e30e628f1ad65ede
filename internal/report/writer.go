package report

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/secrev/internal/filelock"
	"github.com/hashicorp/go-multierror"
)

const fileTimeFormat = "20060102_150405"

// Paths lists the artifacts a Writer produced. Empty fields were not written.
type Paths struct {
	Markdown string
	Text     string
	HTML     string
}

// Writer persists reports under Dir
type Writer struct {
	Dir      string
	BaseName string
	HTML     bool
}

// BaseNameFrom returns the stem of an output base argument, or fallback
// when the argument is empty. "out/scan.md" yields "scan".
func BaseNameFrom(arg, fallback string) string {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return fallback
	}
	base := filepath.Base(arg)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return fallback
	}
	return stem
}

// FileNames returns the artifact names for a report generated at t
func (w *Writer) FileNames(t time.Time) Paths {
	prefix := fmt.Sprintf("%s_%s", w.BaseName, t.Format(fileTimeFormat))
	p := Paths{
		Markdown: filepath.Join(w.Dir, prefix+".md"),
		Text:     filepath.Join(w.Dir, prefix+".txt"),
	}
	if w.HTML {
		p.HTML = filepath.Join(w.Dir, prefix+".html")
	}
	return p
}

// Write renders r and writes every artifact while holding the directory
// lock. Each artifact is attempted independently; the returned Paths only
// lists the ones written, and the error aggregates the failures.
func (w *Writer) Write(ctx context.Context, r *Report) (Paths, error) {
	names := w.FileNames(r.GeneratedAt)
	var written Paths
	var result *multierror.Error

	lockErr := filelock.WithDirLock(ctx, w.Dir, func() error {
		if err := filelock.AtomicWrite(names.Markdown, []byte(r.RenderMarkdown()), 0o644); err != nil {
			result = multierror.Append(result, fmt.Errorf("could not write Markdown report to file %s: %w", names.Markdown, err))
		} else {
			written.Markdown = names.Markdown
		}

		if err := filelock.AtomicWrite(names.Text, []byte(r.RenderText()), 0o644); err != nil {
			result = multierror.Append(result, fmt.Errorf("could not write Text report to file %s: %w", names.Text, err))
		} else {
			written.Text = names.Text
		}

		if names.HTML == "" {
			return nil
		}
		page, err := r.RenderHTML()
		if err == nil {
			err = filelock.AtomicWrite(names.HTML, []byte(page), 0o644)
		}
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("could not write HTML report to file %s: %w", names.HTML, err))
		} else {
			written.HTML = names.HTML
		}
		return nil
	})
	if lockErr != nil {
		result = multierror.Append(result, lockErr)
	}

	return written, result.ErrorOrNil()
}
