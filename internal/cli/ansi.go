// pattern: Functional Core
package cli

import "github.com/charmbracelet/x/ansi"

// StripANSI removes ANSI escape sequences from the given string.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// truncate shortens s to at most width display cells, ending in an
// ellipsis when cut. Zero or negative width leaves s untouched.
func truncate(s string, width int) string {
	if width <= 0 || ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
