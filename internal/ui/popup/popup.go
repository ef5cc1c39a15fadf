// Package popup renders modal dialogs over the settings screen.
package popup

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/rushmanagement/rushnotify/internal/ui/styles"
)

const maxWidth = 72

// RenderBordered frames content in a rounded border sized to fit it and
// places the box in the middle of a screenW by screenH area.
func RenderBordered(content string, screenW, screenH int) string {
	w := max(min(lipgloss.Width(content)+6, maxWidth, screenW-4), 3)
	h := max(min(lipgloss.Height(content)+4, screenH-4), 3)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.T().Border).
		Width(w-2).
		Height(h-2).
		Padding(1, 2).
		Render(content)
	return lipgloss.Place(screenW, screenH, lipgloss.Center, lipgloss.Center, box)
}

// Compose draws overlay on top of base. Leading and trailing blanks of each
// overlay line are transparent; the rest replaces the base cells in the
// same columns. Both inputs may carry ANSI styling.
func Compose(base, overlay string, width int) string {
	lines := strings.Split(base, "\n")
	for i, over := range strings.Split(overlay, "\n") {
		if i >= len(lines) {
			break
		}
		plain := ansi.Strip(over)
		body := strings.TrimLeft(plain, " ")
		if strings.TrimSpace(body) == "" {
			continue
		}
		start := len(plain) - len(body)
		end := ansi.StringWidth(strings.TrimRight(plain, " "))
		lines[i] = splice(lines[i], ansi.Cut(over, start, end), start, end, width)
	}
	return strings.Join(lines, "\n")
}

// splice puts mid over columns [start, end) of line, padded to width. A wide
// character split at either edge is replaced by blanks.
func splice(line, mid string, start, end, width int) string {
	if w := ansi.StringWidth(line); w < width {
		line += strings.Repeat(" ", width-w)
	}

	left := ansi.Cut(line, 0, start)
	out := left + strings.Repeat(" ", max(start-ansi.StringWidth(left), 0)) + mid
	if end >= width {
		return out
	}

	right := ansi.Cut(line, end, width)
	rw, want := ansi.StringWidth(right), width-end
	switch {
	case rw > want:
		right = " " + ansi.Cut(right, rw-want+1, rw)
	case rw < want:
		right += strings.Repeat(" ", want-rw)
	}
	return out + right
}
