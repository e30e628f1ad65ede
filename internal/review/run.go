package review

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/harrison/secrev/internal/fileutil"
)

// LineReader supplies operator input one line at a time
type LineReader interface {
	ReadString(delim byte) (string, error)
}

// Result is what a review hands back to the scan driver
type Result struct {
	Outcome Outcome
	Files   []fileutil.CandidateFile
}

type readResult struct {
	line string
	err  error
}

// Run drives the review loop until the operator confirms or cancels.
// Cancelling ctx (for example on an interrupt signal) while waiting for input
// ends the loop as Cancelled without further prompting, as does end of input.
// An empty candidate list is confirmed immediately without prompting.
func Run(ctx context.Context, candidates []fileutil.CandidateFile, in LineReader, out io.Writer) (Result, error) {
	if out == nil {
		out = io.Discard
	}
	if len(candidates) == 0 {
		return Result{Outcome: Confirmed, Files: []fileutil.CandidateFile{}}, nil
	}

	color.New(color.Bold).Fprintln(out, "\n--- File Review Stage ---")
	s := NewSession(candidates, out)
	prompt := color.New(color.FgCyan)

	for {
		printOptions(out)
		prompt.Fprint(out, "Your choice: ")

		line, err := readLine(ctx, in)
		if ctx.Err() != nil {
			fmt.Fprintln(out, "\n[*] Scan aborted by user (Ctrl+C).")
			return Result{Outcome: Cancelled}, nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return Result{}, fmt.Errorf("failed to read input: %w", err)
		}

		eof := errors.Is(err, io.EOF)
		if eof && line == "" {
			fmt.Fprintln(out, "\n[*] Scan aborted: end of input.")
			return Result{Outcome: Cancelled}, nil
		}

		if outcome, done := s.Apply(line); done {
			if outcome == Cancelled {
				return Result{Outcome: Cancelled}, nil
			}
			files := s.Selected()
			if len(files) == 0 {
				fmt.Fprintln(out, "[*] No files selected for analysis.")
			} else {
				fmt.Fprintf(out, "\n[*] Proceeding with %d selected file(s).\n", len(files))
			}
			return Result{Outcome: Confirmed, Files: files}, nil
		}

		if eof {
			fmt.Fprintln(out, "\n[*] Scan aborted: end of input.")
			return Result{Outcome: Cancelled}, nil
		}
	}
}

// readLine waits for one line of input or for ctx to be done. A read that is
// still blocked when ctx ends is abandoned.
func readLine(ctx context.Context, in LineReader) (string, error) {
	ch := make(chan readResult, 1)
	go func() {
		line, err := in.ReadString('\n')
		ch <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}

func printOptions(out io.Writer) {
	fmt.Fprintln(out, "\nOptions:")
	fmt.Fprintln(out, "  - Enter number(s) to toggle selection (e.g., '1 3 5').")
	fmt.Fprintln(out, "  - Type 'all' to select all, 'none' to deselect all.")
	fmt.Fprintln(out, "  - Type 'list' to show current selections and excluded extensions.")
	fmt.Fprintln(out, "  - Type 'exclude .ext1 .ext2 ...' to exclude files with these extensions from the list.")
	fmt.Fprintln(out, "  - Type 'done' or press Enter (if no input) to proceed.")
	fmt.Fprintln(out, "  - Type 'cancel' or press Ctrl+C to abort the scan.")
}
