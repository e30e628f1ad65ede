package logger

import (
	"fmt"

	"github.com/fatih/color"
)

// colorScheme defines consistent colors for summary metrics.
// Green: success, red: failure, yellow: warning, cyan: labels.
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

// newColorScheme creates the standard scheme. When enabled is false every
// color renders as plain text.
func newColorScheme(enabled bool) *colorScheme {
	s := &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
	if !enabled {
		for _, c := range []*color.Color{s.success, s.fail, s.warn, s.label, s.value} {
			c.DisableColor()
		}
	}
	return s
}

// formatMetric renders "label: value" with the given colors
func formatMetric(label string, value interface{}, labelColor, valueColor *color.Color) string {
	return fmt.Sprintf("%s: %s", labelColor.Sprint(label), valueColor.Sprintf("%v", value))
}
