package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushmanagement/rushnotify/internal/config"
	"github.com/rushmanagement/rushnotify/internal/notify"
	"github.com/rushmanagement/rushnotify/internal/permission"
	"github.com/rushmanagement/rushnotify/internal/settings"
	"github.com/rushmanagement/rushnotify/internal/ui/testutil"
)

type fakeNotifier struct {
	mu     sync.Mutex
	shown  []notify.Notification
	clicks chan uint32
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{clicks: make(chan uint32)}
}

func (f *fakeNotifier) Notify(n notify.Notification) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, n)
	return uint32(len(f.shown)), nil
}

func (f *fakeNotifier) Close(uint32) error { return nil }

func (f *fakeNotifier) Clicks() <-chan uint32 { return f.clicks }

func (f *fakeNotifier) Available() bool { return true }

func (f *fakeNotifier) Shutdown() error { return nil }

func (f *fakeNotifier) Shown() []notify.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Notification(nil), f.shown...)
}

type harness struct {
	t        *testing.T
	db       string
	notifier *fakeNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, env := range []string{config.EnvAPIToken, config.EnvAPIURL, config.EnvPushSecret} {
		t.Setenv(env, "")
	}
	return &harness{
		t:        t,
		db:       filepath.Join(t.TempDir(), "state.db"),
		notifier: newFakeNotifier(),
	}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	o := &options{newNotifier: func() (notify.Notifier, error) { return h.notifier, nil }}
	cmd := newRootCmd(o)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", h.db, "--log-level", "error"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return testutil.StripANSI(out.String()), err
}

func (h *harness) status() statusReport {
	h.t.Helper()
	out, err := h.run("", "status", "--json")
	require.NoError(h.t, err)
	var r statusReport
	require.NoError(h.t, json.Unmarshal([]byte(out), &r))
	return r
}

func TestStatusDefaults(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "status")
	require.NoError(t, err)
	assert.Regexp(t, `Permission\s+Not requested`, out)
	assert.Regexp(t, `Test notification\s+unavailable`, out)
	assert.Regexp(t, `push\s+off`, out)
	assert.Regexp(t, `quiet\.start\s+22:00`, out)

	r := h.status()
	assert.Equal(t, permission.Default, r.Permission)
	assert.False(t, r.CanSendTest)
	assert.True(t, r.Preferences.SoundEnabled)
}

func TestPrefsSetPersists(t *testing.T) {
	h := newHarness(t)

	for _, args := range [][]string{
		{"sound", "off"},
		{"lockscreen", "false"},
		{"quiet", "on"},
		{"quiet.start", "21:30"},
		{"category.social", "off"},
	} {
		_, err := h.run("", append([]string{"prefs", "set"}, args...)...)
		require.NoError(t, err, "prefs set %v", args)
	}

	out, err := h.run("", "prefs")
	require.NoError(t, err)
	for _, want := range []string{`sound\s+off`, `lockscreen\s+off`, `quiet\s+on`, `quiet\.start\s+21:30`, `category\.social\s+off`, `category\.system\s+on`} {
		assert.Regexp(t, regexp.MustCompile(want), out)
	}
}

func TestPrefsSetRejectsBadInput(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "prefs", "set", "volume", "on")
	assert.ErrorIs(t, err, errUnknownKey)

	_, err = h.run("", "prefs", "set", "sound", "loud")
	assert.Error(t, err)

	_, err = h.run("", "prefs", "set", "quiet.end", "25:00")
	assert.Error(t, err)

	_, err = h.run("", "prefs", "set", "category.payroll", "on")
	assert.Error(t, err)
}

func TestEnablePushAsksForConsent(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("allow\n", "prefs", "set", "push", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "Allow Rush Management to show desktop notifications?")
	assert.Contains(t, out, "✓ Push notifications enabled")

	r := h.status()
	assert.Equal(t, permission.Granted, r.Permission)
	assert.True(t, r.Preferences.PushEnabled)
	assert.True(t, r.CanSendTest)

	// Decided: no second prompt.
	out, err = h.run("", "prefs", "set", "push", "on")
	require.NoError(t, err)
	assert.NotContains(t, out, "Allow Rush Management")
}

func TestBlockedPushStaysOff(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("b\n", "prefs", "set", "push", "on")
	require.ErrorIs(t, err, permission.ErrPermissionDenied)
	assert.Contains(t, out, "✗ Notifications blocked")

	r := h.status()
	assert.Equal(t, permission.Denied, r.Permission)
	assert.False(t, r.Preferences.PushEnabled)

	out, err = h.run("", "permission", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Not requested")

	out, err = h.run("", "permission")
	require.NoError(t, err)
	assert.Equal(t, "Not requested\n", out)
}

func TestDismissedPromptAtEOF(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "prefs", "set", "push", "on")
	require.ErrorIs(t, err, permission.ErrPermissionDenied)
	assert.Equal(t, permission.Default, h.status().Permission)
}

func TestPermissionAllowThenTestWithoutBackend(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "permission", "allow")
	require.NoError(t, err)

	out, err := h.run("", "test")
	require.ErrorIs(t, err, settings.ErrTestUnavailable)
	assert.Contains(t, out, "Cannot send test")
}

func TestParseSwitch(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"on", true, false},
		{"OFF", false, false},
		{"true", true, false},
		{"0", false, false},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		got, err := parseSwitch(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSwitch(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSwitch(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseAnswer(t *testing.T) {
	tests := map[string]permission.Answer{
		"a\n":     permission.AnswerAllow,
		" Allow ": permission.AnswerAllow,
		"y":       permission.AnswerAllow,
		"block\n": permission.AnswerBlock,
		"\n":      permission.AnswerDismiss,
		"later":   permission.AnswerDismiss,
	}
	for in, want := range tests {
		if got := parseAnswer(in); got != want {
			t.Errorf("parseAnswer(%q) = %v, want %v", in, got, want)
		}
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestDaemonDisplaysPushes(t *testing.T) {
	h := newHarness(t)
	cfg, err := config.LoadFrom(nil, nil)
	require.NoError(t, err)
	cfg.Push.Secret = "s3cret"

	o := &options{
		cfg:         cfg,
		logLevel:    "error",
		dbPath:      h.db,
		newNotifier: func() (notify.Notifier, error) { return h.notifier, nil },
	}
	addr := freeAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.runDaemon(ctx, addr, io.Discard) }()

	post := func(secret string) int {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+addr+"/push",
			strings.NewReader(`{"title":"Leave approved","body":"Your leave for 12 May was approved"}`))
		if err != nil {
			return 0
		}
		req.Header.Set("Authorization", "Bearer "+secret)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return 0
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	require.Eventually(t, func() bool { return post("s3cret") == http.StatusAccepted }, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, http.StatusUnauthorized, post("wrong"))

	require.Eventually(t, func() bool { return len(h.notifier.Shown()) == 1 }, 2*time.Second, 10*time.Millisecond)
	shown := h.notifier.Shown()[0]
	assert.Equal(t, "Leave approved", shown.Title)

	metrics := func() string {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return ""
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return string(body)
	}
	// The counter is recorded just after the notification is shown.
	require.Eventually(t, func() bool {
		return strings.Contains(metrics(), `rushnotify_push_events_total{result="displayed"} 1`)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, metrics(), "go_goroutines")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestDaemonListenFailure(t *testing.T) {
	h := newHarness(t)
	cfg, err := config.LoadFrom(nil, nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	o := &options{
		cfg:         cfg,
		dbPath:      h.db,
		newNotifier: func() (notify.Notifier, error) { return h.notifier, nil },
	}
	err = o.runDaemon(context.Background(), ln.Addr().String(), io.Discard)
	require.Error(t, err)
	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr))
}
