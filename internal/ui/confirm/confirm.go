// Package confirm provides the question popup used for the notification
// consent prompt and destructive actions such as clearing the log.
package confirm

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rushmanagement/rushnotify/internal/ui"
	"github.com/rushmanagement/rushnotify/internal/ui/popup"
	"github.com/rushmanagement/rushnotify/internal/ui/styles"
)

// Compile-time check that Model implements popup.Popup.
var _ popup.Popup = (*Model)(nil)

type keyMap struct {
	Up, Down, Select, Yes, No key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Select: key.NewBinding(key.WithKeys("enter")),
	Yes:    key.NewBinding(key.WithKeys("y", "Y")),
	No:     key.NewBinding(key.WithKeys("esc", "n", "N")),
}

// Model is a yes/no or multi-option question popup.
type Model struct {
	ui.Base
	title          string
	message        string
	context        any
	active         bool
	options        []string // Multi-option mode; the last option means "cancel"
	selectedOption int
}

// New creates a new confirmation model.
func New() Model {
	return Model{}
}

// Show displays a yes/no question.
func (m *Model) Show(title, message string, context any, width, height int) {
	m.ShowWithOptions(title, message, nil, context, width, height)
}

// ShowWithOptions displays the popup with a list of options.
func (m *Model) ShowWithOptions(title, message string, options []string, context any, width, height int) {
	m.title = title
	m.message = message
	m.context = context
	m.SetSize(width, height)
	m.active = true
	m.options = options
	m.selectedOption = 0
}

// Reset clears the popup state.
func (m *Model) Reset() {
	*m = Model{Base: m.Base}
}

// Active implements popup.Popup.
func (m Model) Active() bool {
	return m.active
}

// Update implements popup.Popup.
func (m *Model) Update(msg tea.Msg) (popup.Popup, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if len(m.options) > 0 {
		return m.handleMultiOptionKey(keyMsg)
	}
	return m.handleYesNoKey(keyMsg)
}

func (m *Model) finish(r Result) (popup.Popup, tea.Cmd) {
	m.active = false
	r.Context = m.context
	return m, func() tea.Msg { return ActionMsg(r) }
}

func (m *Model) handleMultiOptionKey(msg tea.KeyMsg) (popup.Popup, tea.Cmd) {
	last := len(m.options) - 1
	switch {
	case key.Matches(msg, keys.Up):
		if m.selectedOption > 0 {
			m.selectedOption--
		}
	case key.Matches(msg, keys.Down):
		if m.selectedOption < last {
			m.selectedOption++
		}
	case key.Matches(msg, keys.Select):
		return m.finish(Result{Confirmed: m.selectedOption < last, SelectedOption: m.selectedOption})
	case msg.String() == "esc":
		return m.finish(Result{Confirmed: false, SelectedOption: last})
	}
	return m, nil
}

func (m *Model) handleYesNoKey(msg tea.KeyMsg) (popup.Popup, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Select), key.Matches(msg, keys.Yes):
		return m.finish(Result{Confirmed: true})
	case key.Matches(msg, keys.No):
		return m.finish(Result{Confirmed: false})
	}
	return m, nil
}

// View implements popup.Popup.
func (m *Model) View() string {
	if !m.active || m.Width() == 0 || m.Height() == 0 {
		return ""
	}

	s := styles.T().S()
	title := s.Accent.Render(m.title)
	message := s.Base.Width(min(m.Width()-8, 60)).Render(m.message)

	if len(m.options) == 0 {
		hint := s.Subtle.Render("Enter/Y: confirm, Esc/N: cancel")
		return title + "\n\n" + message + "\n\n" + hint
	}

	lines := make([]string, 0, len(m.options))
	for i, opt := range m.options {
		if i == m.selectedOption {
			lines = append(lines, s.Accent.Render("> "+opt))
			continue
		}
		lines = append(lines, s.Base.Render("  "+opt))
	}
	optionsView := lipgloss.JoinVertical(lipgloss.Left, lines...)
	hint := s.Subtle.Render("↑↓/jk navigate · enter select · esc dismiss")
	return title + "\n\n" + message + "\n\n" + optionsView + "\n\n" + hint
}
