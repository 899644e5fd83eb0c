package ui

import (
	"github.com/pterm/pterm"
)

// Signed colours a formatted balance by its sign: green for credit, red for
// deficit, unstyled for zero.
func Signed(value int64, formatted string) string {
	switch {
	case value > 0:
		return pterm.Green(formatted)
	case value < 0:
		return pterm.Red(formatted)
	default:
		return formatted
	}
}
