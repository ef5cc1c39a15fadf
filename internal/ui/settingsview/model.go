// Package settingsview is the interactive notification settings screen: the
// preference toggles, the permission badge and the in-app notification log.
package settingsview

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rushmanagement/rushnotify/internal/center"
	"github.com/rushmanagement/rushnotify/internal/permission"
	"github.com/rushmanagement/rushnotify/internal/prefs"
	"github.com/rushmanagement/rushnotify/internal/settings"
	"github.com/rushmanagement/rushnotify/internal/ui/action"
	"github.com/rushmanagement/rushnotify/internal/ui/confirm"
)

const (
	refreshInterval = 30 * time.Second
	quietStep       = 15 // minutes per left/right press
)

type panel int

const (
	panelSettings panel = iota
	panelCenter
)

type rowID int

const (
	rowPush rowID = iota
	rowSound
	rowVibration
	rowLockScreen
	rowQuiet
	rowQuietStart
	rowQuietEnd
	rowCategory
	rowSendTest
)

type row struct {
	id       rowID
	label    string
	category prefs.Category
}

func buildRows() []row {
	rows := []row{
		{id: rowPush, label: "Push notifications"},
		{id: rowSound, label: "Sound"},
		{id: rowVibration, label: "Vibration"},
		{id: rowLockScreen, label: "Show on lock screen"},
		{id: rowQuiet, label: "Quiet hours"},
		{id: rowQuietStart, label: "  Starts"},
		{id: rowQuietEnd, label: "  Ends"},
	}
	for _, c := range prefs.Categories {
		rows = append(rows, row{id: rowCategory, label: categoryLabel(c), category: c})
	}
	return append(rows, row{id: rowSendTest, label: "Send test notification"})
}

func categoryLabel(c prefs.Category) string {
	switch c {
	case prefs.CategorySystem:
		return "System alerts"
	case prefs.CategoryUpdates:
		return "Updates"
	case prefs.CategoryReminders:
		return "Reminders"
	case prefs.CategorySocial:
		return "Social"
	default:
		return string(c)
	}
}

// Messages

type mountedMsg struct {
	prefs  prefs.Preferences
	status permission.State
}

type promptMsg struct {
	req permission.PromptRequest
}

type centerMsg struct {
	ev center.Event
}

type toggleDoneMsg struct{ err error }

type testDoneMsg struct{ err error }

type tickMsg time.Time

// Deps are the collaborators the screen drives.
type Deps struct {
	Controller *settings.Controller
	Center     *center.Center
	Prompts    <-chan permission.PromptRequest // nil when prompts are answered elsewhere
	Context    context.Context
	Now        func() time.Time
}

// Model is the settings screen.
type Model struct {
	ctl     *settings.Controller
	center  *center.Center
	prompts <-chan permission.PromptRequest
	events  <-chan center.Event
	unsub   func()
	ctx     context.Context
	now     func() time.Time

	rows    []row
	cursor  int
	focus   panel
	entries []center.Entry // newest first
	entry   int            // selected entry in the center panel
	unread  int

	prefs   prefs.Preferences
	status  permission.State
	mounted bool
	busy    bool

	confirm confirm.Model
	help    help.Model

	width, height int
}

// New creates the settings screen. The model subscribes to the center
// immediately so no entry produced during mount is missed.
func New(d Deps) Model {
	ctx := d.Context
	if ctx == nil {
		ctx = context.Background()
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	events, unsub := d.Center.Subscribe(32)
	return Model{
		ctl:     d.Controller,
		center:  d.Center,
		prompts: d.Prompts,
		events:  events,
		unsub:   unsub,
		ctx:     ctx,
		now:     now,
		rows:    buildRows(),
		prefs:   prefs.Default(),
		status:  permission.Default,
		confirm: confirm.New(),
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.mountCmd(),
		waitPrompt(m.prompts),
		waitEvent(m.events),
		tick(),
	)
}

func (m Model) mountCmd() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		p, st := ctl.Mount()
		return mountedMsg{prefs: p, status: st}
	}
}

func waitPrompt(ch <-chan permission.PromptRequest) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		req, ok := <-ch
		if !ok {
			return nil
		}
		return promptMsg{req: req}
	}
}

func waitEvent(ch <-chan center.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return centerMsg{ev: ev}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if m.confirm.Active() {
			m.confirm.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case mountedMsg:
		m.prefs, m.status, m.mounted = msg.prefs, msg.status, true
		m.syncCenter()
		return m, nil

	case promptMsg:
		m.confirm.ShowWithOptions(
			"Allow notifications?",
			"Rush Management would like to show desktop notifications for leave requests, announcements and reminders.",
			[]string{"Allow", "Block", "Not now"},
			msg.req, m.width, m.height,
		)
		return m, nil

	case centerMsg:
		m.syncCenter()
		return m, waitEvent(m.events)

	case toggleDoneMsg, testDoneMsg:
		// Errors were already reported to the center by the controller.
		m.busy = false
		m.prefs = m.ctl.Preferences()
		m.status = m.ctl.Status()
		return m, nil

	case tickMsg:
		m.status = m.ctl.Refresh()
		return m, tick()

	case action.Msg:
		if r, ok := msg.Action.(confirm.Result); ok {
			return m.handleConfirm(r)
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirm.Active() {
			_, cmd := m.confirm.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)
	}
	return m, nil
}

type clearLog struct{}

func (m Model) handleConfirm(r confirm.Result) (tea.Model, tea.Cmd) {
	switch ctx := r.Context.(type) {
	case permission.PromptRequest:
		ctx.Reply <- answerFor(r)
		return m, waitPrompt(m.prompts)
	case clearLog:
		if r.Confirmed {
			m.center.Clear()
		}
	}
	return m, nil
}

func answerFor(r confirm.Result) permission.Answer {
	switch r.SelectedOption {
	case 0:
		return permission.AnswerAllow
	case 1:
		return permission.AnswerBlock
	default:
		return permission.AnswerDismiss
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.unsub()
		return m, tea.Quit
	case key.Matches(msg, keys.SwitchPanel):
		if m.focus == panelSettings {
			m.focus = panelCenter
		} else {
			m.focus = panelSettings
		}
		return m, nil
	case key.Matches(msg, keys.Refresh):
		m.status = m.ctl.Refresh()
		return m, nil
	case key.Matches(msg, keys.SendTest):
		return m.sendTest()
	}

	if m.focus == panelCenter {
		return m.handleCenterKey(msg)
	}
	return m.handleSettingsKey(msg)
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Earlier):
		m.shiftQuietHours(-quietStep)
	case key.Matches(msg, keys.Later):
		m.shiftQuietHours(quietStep)
	case key.Matches(msg, keys.Toggle):
		return m.activate()
	}
	return m, nil
}

func (m Model) activate() (tea.Model, tea.Cmd) {
	r := m.rows[m.cursor]
	p := m.prefs
	var err error
	switch r.id {
	case rowPush:
		if m.busy {
			return m, nil
		}
		m.busy = true
		ctl, ctx, enable := m.ctl, m.ctx, !p.PushEnabled
		return m, func() tea.Msg {
			return toggleDoneMsg{err: ctl.TogglePush(ctx, enable)}
		}
	case rowSendTest:
		return m.sendTest()
	case rowSound:
		err = m.ctl.SetSound(!p.SoundEnabled)
	case rowVibration:
		err = m.ctl.SetVibration(!p.VibrationEnabled)
	case rowLockScreen:
		err = m.ctl.SetLockScreen(!p.ShowOnLockScreen)
	case rowQuiet:
		q := p.QuietHours
		q.Enabled = !q.Enabled
		err = m.ctl.SetQuietHours(q)
	case rowCategory:
		err = m.ctl.SetCategory(r.category, !p.CategoryEnabled(r.category))
	}
	if err == nil {
		m.prefs = m.ctl.Preferences()
	}
	return m, nil
}

func (m *Model) shiftQuietHours(delta int) {
	q := m.prefs.QuietHours
	switch m.rows[m.cursor].id {
	case rowQuietStart:
		q.Start = shiftTime(q.Start, delta)
	case rowQuietEnd:
		q.End = shiftTime(q.End, delta)
	default:
		return
	}
	if m.ctl.SetQuietHours(q) == nil {
		m.prefs = m.ctl.Preferences()
	}
}

// shiftTime moves t by delta minutes, wrapping around midnight.
func shiftTime(t prefs.TimeOfDay, delta int) prefs.TimeOfDay {
	const day = 24 * 60
	total := ((t.Hour*60+t.Minute+delta)%day + day) % day
	return prefs.TimeOfDay{Hour: total / 60, Minute: total % 60}
}

func (m Model) sendTest() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	ctl, ctx := m.ctl, m.ctx
	return m, func() tea.Msg {
		return testDoneMsg{err: ctl.SendTest(ctx)}
	}
}

func (m Model) handleCenterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.entry > 0 {
			m.entry--
		}
	case key.Matches(msg, keys.Down):
		if m.entry < len(m.entries)-1 {
			m.entry++
		}
	case key.Matches(msg, keys.Toggle):
		if e, ok := m.selectedEntry(); ok {
			m.center.MarkRead(e.ID)
		}
	case key.Matches(msg, keys.MarkAllRead):
		m.center.MarkAllRead()
	case key.Matches(msg, keys.Remove):
		if e, ok := m.selectedEntry(); ok {
			m.center.Remove(e.ID)
		}
	case key.Matches(msg, keys.Clear):
		if len(m.entries) > 0 {
			m.confirm.Show("Clear notifications?", "All entries in the notification log will be removed.", clearLog{}, m.width, m.height)
		}
	}
	// Center events arrive asynchronously; read the result directly so the
	// screen reflects the change on this frame.
	m.syncCenter()
	return m, nil
}

func (m Model) selectedEntry() (center.Entry, bool) {
	if m.entry < 0 || m.entry >= len(m.entries) {
		return center.Entry{}, false
	}
	return m.entries[m.entry], true
}

func (m *Model) syncCenter() {
	entries := m.center.Entries()
	m.entries = make([]center.Entry, len(entries))
	for i, e := range entries {
		m.entries[len(entries)-1-i] = e
	}
	m.unread = m.center.UnreadCount()
	if m.entry >= len(m.entries) {
		m.entry = max(len(m.entries)-1, 0)
	}
}
