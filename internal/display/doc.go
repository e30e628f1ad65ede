// Package display formats multi-line warnings for the terminal.
//
// A Warning has a title, an optional message, the files it concerns and an
// optional suggestion:
//
//	w := display.Warning{
//	    Title:      "Character limit reached",
//	    Message:    "2 file(s) were not analyzed",
//	    Files:      []string{"a.py", "b.py"},
//	    Suggestion: "Raise --max-total-chars or narrow the file selection",
//	}
//	w.Display(os.Stderr)
//
// Output is yellow when the writer is a color-capable terminal and plain
// otherwise.
package display
