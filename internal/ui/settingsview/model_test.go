package settingsview

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushmanagement/rushnotify/internal/center"
	"github.com/rushmanagement/rushnotify/internal/logging"
	"github.com/rushmanagement/rushnotify/internal/permission"
	"github.com/rushmanagement/rushnotify/internal/prefs"
	"github.com/rushmanagement/rushnotify/internal/settings"
	"github.com/rushmanagement/rushnotify/internal/state"
	"github.com/rushmanagement/rushnotify/internal/ui/confirm"
	"github.com/rushmanagement/rushnotify/internal/ui/testutil"
)

type screen struct {
	m        Model
	store    *prefs.MemoryStore
	center   *center.Center
	prompter *permission.ChannelPrompter
	registry *permission.Registry
}

func newScreen(t *testing.T) *screen {
	t.Helper()
	mgr, err := state.OpenPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	s := &screen{
		store:    prefs.NewMemoryStore(),
		center:   center.New(),
		prompter: permission.NewChannelPrompter(),
	}
	s.registry = permission.NewRegistry(mgr.DB(), s.prompter, func() bool { return true })
	ctl := settings.New(s.store, permission.NewNegotiator(s.registry, s.store), s.center, nil, settings.Device{ID: "test"}, logging.Discard())

	fixed := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	s.m = New(Deps{
		Controller: ctl,
		Center:     s.center,
		Prompts:    s.prompter.Requests(),
		Now:        func() time.Time { return fixed },
	})
	s.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	s.send(s.m.mountCmd()())
	return s
}

func (s *screen) send(msg tea.Msg) tea.Cmd {
	next, cmd := s.m.Update(msg)
	s.m = next.(Model)
	return cmd
}

func (s *screen) key(k string) tea.Cmd {
	switch k {
	case "enter":
		return s.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return s.send(tea.KeyMsg{Type: tea.KeyEscape})
	case "tab":
		return s.send(tea.KeyMsg{Type: tea.KeyTab})
	case "down":
		return s.send(tea.KeyMsg{Type: tea.KeyDown})
	case "space":
		return s.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	}
	return s.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

func (s *screen) moveTo(id rowID) {
	for s.m.rows[s.m.cursor].id != id {
		s.key("down")
	}
}

func (s *screen) view() string {
	return testutil.StripANSI(s.m.View())
}

func TestMountShowsStoredPreferences(t *testing.T) {
	s := newScreen(t)
	p := prefs.Default()
	p.SoundEnabled = false
	require.NoError(t, s.store.Save(p))
	s.send(s.m.mountCmd()())

	assert.True(t, s.m.mounted)
	assert.False(t, s.m.prefs.SoundEnabled)
	assert.Equal(t, permission.Default, s.m.status)
	assert.Contains(t, s.view(), "Permission: Not requested")
	assert.Contains(t, s.view(), "No notifications")
}

func TestToggleRowsSaveWholeObject(t *testing.T) {
	s := newScreen(t)

	s.moveTo(rowSound)
	s.key("space")
	s.moveTo(rowQuiet)
	s.key("enter")
	s.moveTo(rowQuietStart)
	s.key("l")
	s.moveTo(rowQuietEnd)
	s.key("h")
	s.moveTo(rowCategory)
	s.key("enter")

	got := s.store.Load()
	assert.False(t, got.SoundEnabled)
	assert.True(t, got.QuietHours.Enabled)
	assert.Equal(t, "22:15", got.QuietHours.Start.String())
	assert.Equal(t, "06:45", got.QuietHours.End.String())
	assert.False(t, got.Categories[prefs.CategorySystem])
	assert.Equal(t, got, s.m.prefs)
}

func TestEnablePushGoesThroughConsentPrompt(t *testing.T) {
	s := newScreen(t)

	s.moveTo(rowPush)
	toggle := s.key("space")
	require.NotNil(t, toggle)
	assert.True(t, s.m.busy)

	done := make(chan tea.Msg, 1)
	go func() { done <- toggle() }()

	prompt := waitPrompt(s.m.prompts)()
	require.IsType(t, promptMsg{}, prompt)
	s.send(prompt)
	require.True(t, s.m.confirm.Active())
	assert.Contains(t, s.view(), "Allow notifications?")

	// Keys go to the prompt while it is open.
	answer := s.key("enter")
	require.NotNil(t, answer)
	s.send(answer())

	select {
	case msg := <-done:
		s.send(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("toggle did not finish")
	}

	assert.False(t, s.m.busy)
	assert.True(t, s.m.prefs.PushEnabled)
	assert.Equal(t, permission.Granted, s.m.status)
	assert.Equal(t, permission.Granted, s.registry.Status())
	assert.True(t, s.store.Load().PushEnabled)

	entries := s.center.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, center.KindSuccess, entries[0].Kind)
	assert.Contains(t, s.view(), "Permission: Allowed")
}

func TestDismissingConsentLeavesPushOff(t *testing.T) {
	s := newScreen(t)

	s.moveTo(rowPush)
	toggle := s.key("space")
	done := make(chan tea.Msg, 1)
	go func() { done <- toggle() }()

	s.send(waitPrompt(s.m.prompts)())
	s.send(s.key("esc")())
	s.send(<-done)

	assert.False(t, s.m.prefs.PushEnabled)
	assert.Equal(t, permission.Default, s.m.status)
	entries := s.center.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, center.KindError, entries[0].Kind)
}

func TestSendTestUnavailableIsReported(t *testing.T) {
	s := newScreen(t)

	cmd := s.key("t")
	require.NotNil(t, cmd)
	s.send(cmd())

	entries := s.center.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, center.KindError, entries[0].Kind)
	assert.Contains(t, s.view(), "unavailable")
}

func TestCenterPanel(t *testing.T) {
	s := newScreen(t)
	s.center.Info("Announcement", "Office closed Friday")
	s.center.Warning("Policy", "Please review the updated leave policy")
	s.send(centerMsg{})

	assert.Equal(t, 2, s.m.unread)
	assert.Contains(t, s.view(), "Notifications (2 unread)")
	assert.Equal(t, "Policy", s.m.entries[0].Title, "newest first")

	s.key("tab")
	s.key("enter")
	assert.Equal(t, 1, s.center.UnreadCount())
	assert.Equal(t, 1, s.m.unread)

	s.key("m")
	assert.Zero(t, s.center.UnreadCount())

	s.key("d")
	assert.Len(t, s.center.Entries(), 1)

	s.key("c")
	require.True(t, s.m.confirm.Active())
	s.send(s.key("y")())
	assert.Empty(t, s.center.Entries())
	assert.Contains(t, s.view(), "No notifications")
}

func TestQuitUnsubscribes(t *testing.T) {
	s := newScreen(t)
	events := s.m.events

	cmd := s.key("q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, ok := <-events
	assert.False(t, ok, "subscription channel should be closed")
}

func TestShiftTime(t *testing.T) {
	tests := []struct {
		in    string
		delta int
		want  string
	}{
		{"22:00", 15, "22:15"},
		{"23:50", 15, "00:05"},
		{"00:05", -15, "23:50"},
		{"07:00", -15, "06:45"},
		{"12:00", 24 * 60, "12:00"},
	}
	for _, tt := range tests {
		got := shiftTime(prefs.MustTimeOfDay(tt.in), tt.delta).String()
		if got != tt.want {
			t.Errorf("shiftTime(%s, %d) = %s, want %s", tt.in, tt.delta, got, tt.want)
		}
	}
}

func TestAnswerFor(t *testing.T) {
	assert.Equal(t, permission.AnswerAllow, answerFor(confirm.Result{SelectedOption: 0}))
	assert.Equal(t, permission.AnswerBlock, answerFor(confirm.Result{SelectedOption: 1}))
	assert.Equal(t, permission.AnswerDismiss, answerFor(confirm.Result{SelectedOption: 2}))
}

func TestNarrowLayoutStacksPanels(t *testing.T) {
	s := newScreen(t)
	s.send(tea.WindowSizeMsg{Width: 60, Height: 40})

	v := s.view()
	assert.Contains(t, v, "Settings")
	assert.Contains(t, v, "Notifications")
	assert.Contains(t, v, "Push notifications")
}
