package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rushmanagement/rushnotify/internal/center"
)

// KindStyle returns the status color for a center entry kind.
func (s *Styles) KindStyle(k center.Kind) lipgloss.Style {
	switch k {
	case center.KindSuccess:
		return s.Success
	case center.KindError:
		return s.Error
	case center.KindWarning:
		return s.Warning
	default:
		return s.Info
	}
}

// KindMarker is the one-cell symbol shown before a center entry.
func KindMarker(k center.Kind) string {
	switch k {
	case center.KindSuccess:
		return "✓"
	case center.KindError:
		return "✗"
	case center.KindWarning:
		return "!"
	default:
		return "i"
	}
}
