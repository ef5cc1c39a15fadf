package styles

import "github.com/charmbracelet/lipgloss"

var (
	unfocusedPanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(defaultTheme.Border).
				Padding(0, 1)

	focusedPanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(defaultTheme.BorderFocus).
				Padding(0, 1)
)

// PanelStyle returns the settings or center panel style based on focus.
func PanelStyle(focused bool) lipgloss.Style {
	if focused {
		return focusedPanelStyle
	}
	return unfocusedPanelStyle
}
