package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/rushmanagement/rushnotify/internal/api"
	"github.com/rushmanagement/rushnotify/internal/center"
	"github.com/rushmanagement/rushnotify/internal/logging"
	"github.com/rushmanagement/rushnotify/internal/notify"
	"github.com/rushmanagement/rushnotify/internal/permission"
	"github.com/rushmanagement/rushnotify/internal/prefs"
	"github.com/rushmanagement/rushnotify/internal/settings"
	"github.com/rushmanagement/rushnotify/internal/state"
)

// session is the settings stack shared by the interactive and scriptable
// commands.
type session struct {
	mgr      *state.Manager
	notifier notify.Notifier
	store    *prefs.SQLiteStore
	registry *permission.Registry
	center   *center.Center
	ctl      *settings.Controller
}

func (o *options) openSession(prompter permission.Prompter, log logging.Logger) (*session, error) {
	mgr, err := o.openState()
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	notifier, err := o.newNotifier()
	if err != nil {
		mgr.Close()
		return nil, fmt.Errorf("connect to notification server: %w", err)
	}

	store := prefs.NewSQLiteStore(mgr.DB(), logging.WithComponent(log, "prefs"))
	registry := permission.NewRegistry(mgr.DB(), prompter, notifier.Available)
	c := center.New(center.WithLimit(o.cfg.CenterLimit()))

	var backend settings.Backend
	if o.cfg.HasAPI() {
		backend = api.NewClient(o.cfg.API.BaseURL, o.cfg.API.Token)
	}

	ctl := settings.New(store, permission.NewNegotiator(registry, store), c, backend, o.device(), logging.WithComponent(log, "settings"))
	ctl.Mount()

	return &session{
		mgr:      mgr,
		notifier: notifier,
		store:    store,
		registry: registry,
		center:   c,
		ctl:      ctl,
	}, nil
}

func (s *session) Close() {
	_ = s.notifier.Shutdown()
	_ = s.mgr.Close()
}

func (o *options) device() settings.Device {
	return settings.Device{
		ID:       o.cfg.DeviceID(),
		Platform: runtime.GOOS,
		Endpoint: o.cfg.PushEndpoint(),
	}
}

// linePrompter asks for consent on a line-oriented terminal.
func linePrompter(in io.Reader, out io.Writer) permission.Prompter {
	r := bufio.NewReader(in)
	return permission.PromptFunc(func(ctx context.Context) (permission.Answer, error) {
		fmt.Fprint(out, "Allow Rush Management to show desktop notifications? [a]llow / [b]lock / [N]ot now: ")

		type result struct {
			line string
			err  error
		}
		ch := make(chan result, 1)
		go func() {
			line, err := r.ReadString('\n')
			ch <- result{line, err}
		}()

		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return permission.AnswerDismiss, ctx.Err()
		case res := <-ch:
			if res.err != nil && res.line == "" {
				fmt.Fprintln(out)
				return permission.AnswerDismiss, nil
			}
			return parseAnswer(res.line), nil
		}
	})
}

func parseAnswer(line string) permission.Answer {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "a", "allow", "y", "yes":
		return permission.AnswerAllow
	case "b", "block":
		return permission.AnswerBlock
	default:
		return permission.AnswerDismiss
	}
}
