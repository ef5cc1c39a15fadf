package settingsview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rushmanagement/rushnotify/internal/center"
	"github.com/rushmanagement/rushnotify/internal/permission"
	"github.com/rushmanagement/rushnotify/internal/settings"
	"github.com/rushmanagement/rushnotify/internal/ui/popup"
	"github.com/rushmanagement/rushnotify/internal/ui/render"
	"github.com/rushmanagement/rushnotify/internal/ui/styles"
)

const (
	settingsWidth = 46
	minCenterW    = 30
	sideBySideMin = settingsWidth + minCenterW + 8
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Heading("Rush Management · Notifications"), "   ", m.badgeView())

	settingsPanel := styles.PanelStyle(m.focus == panelSettings).
		Width(settingsWidth).
		Render(m.settingsView(settingsWidth))

	var body string
	if m.width >= sideBySideMin {
		centerW := m.width - settingsWidth - 8
		centerPanel := styles.PanelStyle(m.focus == panelCenter).
			Width(centerW).
			Render(m.centerView(centerW, len(m.rows)))
		body = lipgloss.JoinHorizontal(lipgloss.Top, settingsPanel, " ", centerPanel)
	} else {
		centerW := max(m.width-4, minCenterW)
		centerPanel := styles.PanelStyle(m.focus == panelCenter).
			Width(centerW).
			Render(m.centerView(centerW, 6))
		body = lipgloss.JoinVertical(lipgloss.Left, settingsPanel, centerPanel)
	}

	bindings := keys.settingsHelp()
	if m.focus == panelCenter {
		bindings = keys.centerHelp()
	}
	base := header + "\n\n" + body + "\n" + m.help.ShortHelpView(bindings)

	if m.confirm.Active() {
		box := popup.RenderBordered(m.confirm.View(), m.width, m.height)
		return popup.Compose(base, box, m.width)
	}
	return base
}

func (m Model) badgeView() string {
	s := styles.T().S()
	b := settings.BadgeFor(m.status)
	label := "Permission: " + b.Label
	switch b.State {
	case permission.Granted:
		return s.Success.Render(label)
	case permission.Denied:
		return s.Error.Render(label)
	default:
		return s.Muted.Render(label)
	}
}

func onOff(v bool) string {
	s := styles.T().S()
	if v {
		return s.Success.Render("on")
	}
	return s.Muted.Render("off")
}

func (m Model) rowValue(r row) string {
	s := styles.T().S()
	p := m.prefs
	switch r.id {
	case rowPush:
		if m.busy {
			return s.Warning.Render("…")
		}
		return onOff(p.PushEnabled)
	case rowSound:
		return onOff(p.SoundEnabled)
	case rowVibration:
		return onOff(p.VibrationEnabled)
	case rowLockScreen:
		return onOff(p.ShowOnLockScreen)
	case rowQuiet:
		return onOff(p.QuietHours.Enabled)
	case rowQuietStart:
		return s.Base.Render(p.QuietHours.Start.String())
	case rowQuietEnd:
		return s.Base.Render(p.QuietHours.End.String())
	case rowCategory:
		return onOff(p.CategoryEnabled(r.category))
	case rowSendTest:
		if p.PushEnabled && m.status == permission.Granted {
			return s.Info.Render("press enter")
		}
		return s.Subtle.Render("unavailable")
	}
	return ""
}

func (m Model) settingsView(width int) string {
	s := styles.T().S()
	lines := make([]string, 0, len(m.rows)+2)
	lines = append(lines, s.Title.Render("Settings"), render.Separator(width-2))

	for i, r := range m.rows {
		label := r.label
		if r.id == rowQuietStart || r.id == rowQuietEnd {
			if !m.prefs.QuietHours.Enabled {
				label = s.Subtle.Render(label)
			}
		}
		line := render.Row(label, m.rowValue(r), width-2)
		if i == m.cursor && m.focus == panelSettings {
			line = s.Cursor.Render(render.Pad(line, width-2))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) centerView(width, maxRows int) string {
	s := styles.T().S()
	title := "Notifications"
	if m.unread > 0 {
		title = fmt.Sprintf("Notifications (%d unread)", m.unread)
	}
	lines := []string{s.Title.Render(title), render.Separator(width - 2)}

	if len(m.entries) == 0 {
		lines = append(lines, s.Muted.Render("No notifications"))
		return strings.Join(lines, "\n")
	}

	start := 0
	if m.entry >= maxRows {
		start = m.entry - maxRows + 1
	}
	end := min(start+maxRows, len(m.entries))
	for i := start; i < end; i++ {
		lines = append(lines, m.entryLine(m.entries[i], width-2, i == m.entry && m.focus == panelCenter))
	}
	return strings.Join(lines, "\n")
}

func (m Model) entryLine(e center.Entry, width int, selected bool) string {
	s := styles.T().S()
	marker := s.KindStyle(e.Kind).Render(styles.KindMarker(e.Kind))
	when := s.Subtle.Render(humanize.RelTime(e.CreatedAt, m.now(), "ago", "from now"))

	text := e.Title
	if e.Message != "" {
		text += ": " + e.Message
	}
	textW := max(width-lipgloss.Width(when)-4, 8)
	text = render.Truncate(text, textW)
	if e.Read {
		text = s.Muted.Render(text)
	} else {
		text = s.Unread.Render(text)
	}

	line := render.Row(marker+" "+text, when, width)
	if selected {
		line = s.Cursor.Render(line)
	}
	return line
}
