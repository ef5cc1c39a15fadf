package settingsview

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	Earlier     key.Binding
	Later       key.Binding
	SwitchPanel key.Binding
	SendTest    key.Binding
	Refresh     key.Binding
	MarkAllRead key.Binding
	Remove      key.Binding
	Clear       key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("space", "toggle")),
	Earlier:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "earlier")),
	Later:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "later")),
	SwitchPanel: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch panel")),
	SendTest:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "send test")),
	Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh permission")),
	MarkAllRead: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mark all read")),
	Remove:      key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
	Clear:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear all")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) settingsHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Earlier, k.Later, k.SendTest, k.Refresh, k.SwitchPanel, k.Quit}
}

func (k keyMap) centerHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.MarkAllRead, k.Remove, k.Clear, k.SwitchPanel, k.Quit}
}
