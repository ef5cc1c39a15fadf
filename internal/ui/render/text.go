// Package render provides text layout helpers for the settings screen.
package render

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// clean drops control characters other than tab and invalid UTF-8, and
// turns non-breaking spaces into plain ones. Push payloads and server errors
// are external text and pass through here before reaching the terminal.
func clean(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\u00a0':
			return ' '
		case r != '\t' && unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.ToValidUTF8(s, ""))
}

// Truncate cleans s and cuts it to maxWidth cells, ending in "..." when
// anything was dropped.
func Truncate(s string, maxWidth int) string {
	return runewidth.Truncate(clean(s), maxWidth, "...")
}

// Pad right-fills s with blanks up to width cells. It never truncates.
func Pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Row puts left and right at opposite ends of a width-cell line, keeping
// at least one blank between them.
func Row(left, right string, width int) string {
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	gap := max(width-leftWidth-rightWidth, 1)
	return left + strings.Repeat(" ", gap) + right
}

// Separator is a horizontal rule.
func Separator(width int) string {
	return strings.Repeat("─", width)
}
