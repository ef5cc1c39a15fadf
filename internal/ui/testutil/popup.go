package testutil

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rushmanagement/rushnotify/internal/ui/action"
	"github.com/rushmanagement/rushnotify/internal/ui/popup"
)

// PopupHarness drives a popup the way the settings screen does: key
// presses in, commands out.
type PopupHarness struct {
	popup popup.Popup
	cmds  []tea.Cmd
}

// NewPopupHarness creates a test harness for any popup.Popup implementation.
func NewPopupHarness(p popup.Popup) *PopupHarness {
	return &PopupHarness{popup: p}
}

// Active reports whether the popup is still open.
func (h *PopupHarness) Active() bool {
	return h.popup.Active()
}

// SetSize sets the popup dimensions.
func (h *PopupHarness) SetSize(width, height int) {
	h.popup.SetSize(width, height)
}

// View returns the popup's rendered content.
func (h *PopupHarness) View() string {
	return h.popup.View()
}

// SendMsg sends any message to the popup and returns the resulting command.
func (h *PopupHarness) SendMsg(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	h.popup, cmd = h.popup.Update(msg)
	if cmd != nil {
		h.cmds = append(h.cmds, cmd)
	}
	return cmd
}

// SendKey simulates a key press by creating a tea.KeyMsg.
func (h *PopupHarness) SendKey(key string) tea.Cmd {
	return h.SendMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
}

// SendSpecialKey sends a special key (enter, escape, tab, etc.).
func (h *PopupHarness) SendSpecialKey(keyType tea.KeyType) tea.Cmd {
	return h.SendMsg(tea.KeyMsg{Type: keyType})
}

// SendEnter sends the enter key.
func (h *PopupHarness) SendEnter() tea.Cmd {
	return h.SendSpecialKey(tea.KeyEnter)
}

// SendEscape sends the escape key.
func (h *PopupHarness) SendEscape() tea.Cmd {
	return h.SendSpecialKey(tea.KeyEscape)
}

// SendUp sends the up arrow key.
func (h *PopupHarness) SendUp() tea.Cmd {
	return h.SendSpecialKey(tea.KeyUp)
}

// SendDown sends the down arrow key.
func (h *PopupHarness) SendDown() tea.Cmd {
	return h.SendSpecialKey(tea.KeyDown)
}

// Commands returns all commands collected so far.
func (h *PopupHarness) Commands() []tea.Cmd {
	return h.cmds
}

// LastCommand returns the most recent command, or nil if none.
func (h *PopupHarness) LastCommand() tea.Cmd {
	if len(h.cmds) == 0 {
		return nil
	}
	return h.cmds[len(h.cmds)-1]
}

// ExecuteCmd runs a command and returns the resulting message.
// This is useful for testing async command flows.
func ExecuteCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

// LastAction runs the most recent command and returns the action it
// delivered, or nil when it produced something else.
func (h *PopupHarness) LastAction() action.Action {
	msg, ok := ExecuteCmd(h.LastCommand()).(action.Msg)
	if !ok {
		return nil
	}
	return msg.Action
}

// ViewContains checks if the popup's view contains the given substring.
func (h *PopupHarness) ViewContains(substr string) bool {
	return ContainsLine(StripANSI(h.View()), substr)
}
