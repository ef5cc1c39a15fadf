package confirm

import (
	"testing"

	"github.com/rushmanagement/rushnotify/internal/ui/action"
	"github.com/rushmanagement/rushnotify/internal/ui/testutil"
)

const testContext = "clear-log"

var consentOptions = []string{"Allow", "Block", "Not now"}

func newTestConfirm(context any) *testutil.PopupHarness {
	m := New()
	m.Show("Clear notifications?", "All entries will be removed.", context, 80, 24)
	return testutil.NewPopupHarness(&m)
}

func newTestConsent() *testutil.PopupHarness {
	m := New()
	m.ShowWithOptions("Allow notifications?", "Rush Management wants to show notifications.", consentOptions, "consent", 80, 24)
	return testutil.NewPopupHarness(&m)
}

func getResult(t *testing.T, h *testutil.PopupHarness) Result {
	t.Helper()
	cmd := h.LastCommand()
	if cmd == nil {
		t.Fatal("expected command, got nil")
	}
	msg := testutil.ExecuteCmd(cmd)
	actionMsg, ok := msg.(action.Msg)
	if !ok {
		t.Fatalf("expected action.Msg, got %T", msg)
	}
	if actionMsg.Source != "confirm" {
		t.Errorf("Source = %q, want confirm", actionMsg.Source)
	}
	result, ok := actionMsg.Action.(Result)
	if !ok {
		t.Fatalf("expected Result, got %T", actionMsg.Action)
	}
	return result
}

func TestYesNoMode(t *testing.T) {
	tests := []struct {
		name      string
		send      func(h *testutil.PopupHarness)
		confirmed bool
	}{
		{"enter confirms", func(h *testutil.PopupHarness) { h.SendEnter() }, true},
		{"y confirms", func(h *testutil.PopupHarness) { h.SendKey("y") }, true},
		{"Y confirms", func(h *testutil.PopupHarness) { h.SendKey("Y") }, true},
		{"esc cancels", func(h *testutil.PopupHarness) { h.SendEscape() }, false},
		{"n cancels", func(h *testutil.PopupHarness) { h.SendKey("n") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestConfirm(testContext)
			tt.send(h)

			result := getResult(t, h)
			if result.Confirmed != tt.confirmed {
				t.Errorf("Confirmed = %v, want %v", result.Confirmed, tt.confirmed)
			}
			if result.Context != testContext {
				t.Errorf("Context = %v, want %q", result.Context, testContext)
			}
			if h.View() != "" {
				t.Error("popup should close after answering")
			}
		})
	}
}

func TestYesNoMode_View(t *testing.T) {
	h := newTestConfirm(nil)

	if !h.ViewContains("Clear notifications?") {
		t.Error("view should contain title")
	}
	if !h.ViewContains("Enter/Y: confirm") {
		t.Error("view should contain yes/no hint")
	}
}

func TestConsent_SelectOptions(t *testing.T) {
	tests := []struct {
		name      string
		keys      func(h *testutil.PopupHarness)
		selected  int
		confirmed bool
	}{
		{"allow", func(h *testutil.PopupHarness) { h.SendEnter() }, 0, true},
		{"block", func(h *testutil.PopupHarness) { h.SendDown(); h.SendEnter() }, 1, true},
		{"block with j", func(h *testutil.PopupHarness) { h.SendKey("j"); h.SendEnter() }, 1, true},
		{"not now", func(h *testutil.PopupHarness) { h.SendDown(); h.SendDown(); h.SendEnter() }, 2, false},
		{"esc dismisses", func(h *testutil.PopupHarness) { h.SendEscape() }, 2, false},
		{"bounded at top", func(h *testutil.PopupHarness) { h.SendUp(); h.SendKey("k"); h.SendEnter() }, 0, true},
		{"bounded at bottom", func(h *testutil.PopupHarness) {
			for range 5 {
				h.SendDown()
			}
			h.SendEnter()
		}, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestConsent()
			tt.keys(h)

			result := getResult(t, h)
			if result.SelectedOption != tt.selected {
				t.Errorf("SelectedOption = %d, want %d", result.SelectedOption, tt.selected)
			}
			if result.Confirmed != tt.confirmed {
				t.Errorf("Confirmed = %v, want %v", result.Confirmed, tt.confirmed)
			}
			if result.Context != "consent" {
				t.Errorf("Context = %v", result.Context)
			}
		})
	}
}

func TestConsent_View(t *testing.T) {
	h := newTestConsent()

	for _, want := range []string{"Allow notifications?", "> Allow", "Block", "Not now", "esc dismiss"} {
		if !h.ViewContains(want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestInactive(t *testing.T) {
	m := New()
	h := testutil.NewPopupHarness(&m)

	if cmd := h.SendEnter(); cmd != nil {
		t.Error("inactive popup should not return a command")
	}
	if h.View() != "" {
		t.Error("inactive popup should render nothing")
	}
}

func TestReset(t *testing.T) {
	m := New()
	m.ShowWithOptions("Allow notifications?", "msg", consentOptions, "consent", 80, 24)

	m.Reset()

	if m.Active() {
		t.Error("Reset should deactivate")
	}
	if m.options != nil || m.context != nil || m.selectedOption != 0 {
		t.Error("Reset should clear state")
	}
	if m.Width() != 80 {
		t.Error("Reset should keep size")
	}
}
