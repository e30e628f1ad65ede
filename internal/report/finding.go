// Package report classifies analysis results and renders the scan report.
package report

import "strings"

const (
	// ErrorMarker identifies a finding that records a failure
	ErrorMarker = "Error:"
	// NoFindingMarker identifies an analysis that found nothing critical
	NoFindingMarker = "No critical security vulnerabilities identified"
)

// Kind is the bucket a finding is reported under
type Kind int

const (
	Actionable Kind = iota
	NoFinding
	Error
)

func (k Kind) String() string {
	switch k {
	case NoFinding:
		return "no-finding"
	case Error:
		return "error"
	default:
		return "actionable"
	}
}

// Finding is the result of analyzing one chunk, or a failure recorded in
// its place
type Finding struct {
	Text string
	Kind Kind
}

// Classify tags analyzer output by marker substrings. The error marker is
// checked first.
func Classify(text string) Finding {
	switch {
	case strings.Contains(text, ErrorMarker):
		return Finding{Text: text, Kind: Error}
	case strings.Contains(text, NoFindingMarker):
		return Finding{Text: text, Kind: NoFinding}
	default:
		return Finding{Text: text, Kind: Actionable}
	}
}

// NewError records a failure raised by the scan itself. The text always
// starts with the error marker.
func NewError(message string) Finding {
	if !strings.HasPrefix(message, ErrorMarker) {
		message = ErrorMarker + " " + message
	}
	return Finding{Text: message, Kind: Error}
}
