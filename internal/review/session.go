// Package review implements the interactive file review loop that runs
// between discovery and analysis.
package review

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/harrison/secrev/internal/fileutil"
)

// Outcome is the terminal state of a review session
type Outcome int

const (
	// Pending means the loop should keep prompting
	Pending Outcome = iota
	// Confirmed means the operator accepted the current selection
	Confirmed
	// Cancelled means the operator aborted the scan
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

const invalidInputMessage = "Invalid input. Please enter numbers, 'all', 'none', 'list', 'exclude ...', 'done', or 'cancel'."

// Entry is one row of the displayed list. IDs are 1-based and reassigned on
// every rebuild; index points into the session's candidate list.
type Entry struct {
	ID       int
	Selected bool
	index    int
}

// Session holds the state of one review loop. The candidate list is never
// modified; the displayed entries are a projection of it that is rebuilt
// whenever the exclusion set grows.
type Session struct {
	candidates []fileutil.CandidateFile
	excluded   map[string]bool
	order      []string
	entries    []Entry
	out        io.Writer
}

// NewSession creates a session over candidates and prints the initial list
func NewSession(candidates []fileutil.CandidateFile, out io.Writer) *Session {
	if out == nil {
		out = io.Discard
	}
	s := &Session{
		candidates: candidates,
		excluded:   make(map[string]bool),
		out:        out,
	}
	s.rebuild()
	return s
}

// Entries returns a copy of the displayed entries
func (s *Session) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// File returns the candidate an entry refers to
func (s *Session) File(e Entry) fileutil.CandidateFile {
	return s.candidates[e.index]
}

// Excluded returns the interactively excluded extensions in the order they
// were added
func (s *Session) Excluded() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Selected returns the selected files in display order
func (s *Session) Selected() []fileutil.CandidateFile {
	files := make([]fileutil.CandidateFile, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Selected {
			files = append(files, s.candidates[e.index])
		}
	}
	return files
}

// rebuild re-derives the displayed entries from the full candidate list.
// Every rebuilt entry starts selected.
func (s *Session) rebuild() {
	s.entries = s.entries[:0]
	for i, f := range s.candidates {
		if s.excluded[f.Ext] {
			continue
		}
		s.entries = append(s.entries, Entry{ID: len(s.entries) + 1, Selected: true, index: i})
	}

	color.New(color.Bold).Fprintln(s.out, "\n--- Updated File List ---")
	if len(s.entries) == 0 {
		fmt.Fprintln(s.out, "No files remaining after applying exclusions.")
		return
	}
	fmt.Fprintf(s.out, "Found %d files matching current criteria:\n", len(s.entries))
	for _, e := range s.entries {
		fmt.Fprintf(s.out, "  %d. %s\n", e.ID, s.candidates[e.index].RelPath)
	}
}

// Apply executes one command line. It returns the resulting outcome and
// whether the loop is finished.
func (s *Session) Apply(input string) (Outcome, bool) {
	input = strings.ToLower(strings.TrimSpace(input))

	switch {
	case input == "" || input == "done":
		return Confirmed, true
	case input == "cancel":
		fmt.Fprintln(s.out, "[*] Scan aborted by user.")
		return Cancelled, true
	case input == "exclude" || strings.HasPrefix(input, "exclude "):
		s.exclude(strings.Fields(input)[1:])
	case input == "list":
		s.list()
	case input == "all":
		s.setAll(true)
	case input == "none":
		s.setAll(false)
	default:
		s.toggle(input)
	}
	return Pending, false
}

func (s *Session) exclude(tokens []string) {
	if len(tokens) == 0 {
		fmt.Fprintln(s.out, "Usage: exclude .ext1 .ext2 ...")
		return
	}

	exts := fileutil.NormalizeExtensions(tokens)
	added := make([]string, 0, len(exts))
	for _, ext := range exts {
		if !s.excluded[ext] {
			s.excluded[ext] = true
			s.order = append(s.order, ext)
			added = append(added, ext)
		}
	}

	if len(added) == 0 {
		fmt.Fprintf(s.out, "[*] Extensions %s were already excluded or invalid.\n", formatSet(exts))
		return
	}

	fmt.Fprintf(s.out, "[*] Added %s to interactive exclusion list.\n", formatSet(added))
	s.rebuild()
	if len(s.entries) == 0 {
		color.New(color.FgYellow).Fprintln(s.out, "All files have been excluded. Type 'done' to proceed with no files, or 'cancel'.")
	}
}

func (s *Session) list() {
	fmt.Fprintln(s.out, "\nCurrent Selections (* indicates selected):")
	if len(s.entries) == 0 {
		fmt.Fprintln(s.out, "  No files currently in the list.")
	}
	for _, e := range s.entries {
		marker := " "
		if e.Selected {
			marker = "*"
		}
		fmt.Fprintf(s.out, "  %s %d. %s\n", marker, e.ID, s.candidates[e.index].RelPath)
	}

	excluded := "None"
	if len(s.order) > 0 {
		excluded = formatSet(s.order)
	}
	fmt.Fprintf(s.out, "Currently excluded extensions (interactive): %s\n", excluded)
}

func (s *Session) setAll(selected bool) {
	for i := range s.entries {
		s.entries[i].Selected = selected
	}

	switch {
	case len(s.entries) == 0 && selected:
		fmt.Fprintln(s.out, "No files to select.")
	case len(s.entries) == 0:
		fmt.Fprintln(s.out, "No files to deselect.")
	case selected:
		fmt.Fprintln(s.out, "All currently listed files selected.")
	default:
		fmt.Fprintln(s.out, "All currently listed files deselected.")
	}
}

// toggle flips each listed id once. The whole line is rejected if any token
// is not an integer.
func (s *Session) toggle(input string) {
	ids := make(map[int]bool)
	for _, tok := range strings.Fields(input) {
		id, err := strconv.Atoi(tok)
		if err != nil {
			color.New(color.FgRed).Fprintln(s.out, invalidInputMessage)
			return
		}
		ids[id] = true
	}

	seen := make(map[int]bool, len(ids))
	for i := range s.entries {
		e := &s.entries[i]
		if !ids[e.ID] {
			continue
		}
		e.Selected = !e.Selected
		seen[e.ID] = true
		state := "DESELECTED"
		if e.Selected {
			state = "SELECTED"
		}
		fmt.Fprintf(s.out, "File '%s' is now %s.\n", s.candidates[e.index].RelPath, state)
	}

	missing := make([]int, 0)
	for id := range ids {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	sort.Ints(missing)
	warn := color.New(color.FgYellow)
	for _, id := range missing {
		warn.Fprintf(s.out, "Warning: File number %d not found in the list.\n", id)
	}
}

func formatSet(items []string) string {
	return "{" + strings.Join(items, ", ") + "}"
}
