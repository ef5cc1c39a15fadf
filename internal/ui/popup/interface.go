package popup

import tea "github.com/charmbracelet/bubbletea"

// Popup is a modal drawn over a screen. While Active, the screen routes key
// messages to Update and draws View inside a bordered box (see
// RenderBordered and Compose). A popup reports its outcome as an
// action.Msg from the command returned by Update.
type Popup interface {
	Active() bool
	Update(msg tea.Msg) (Popup, tea.Cmd)
	View() string
	SetSize(width, height int)
}
