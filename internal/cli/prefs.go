package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rushmanagement/rushnotify/internal/prefs"
	"github.com/rushmanagement/rushnotify/internal/settings"
)

var errUnknownKey = errors.New("unknown preference key")

func newPrefsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change notification preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := o.logger(cmd.ErrOrStderr())
			s, err := o.openSession(noPrompt, log)
			if err != nil {
				return err
			}
			defer s.Close()
			return writePrefs(cmd.OutOrStdout(), s.ctl.Preferences())
		},
	}
	cmd.AddCommand(newPrefsSetCmd(o))
	return cmd
}

func newPrefsSetCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one preference",
		Long: `Change one preference. Keys:

  push               on|off (enabling asks for notification permission)
  sound              on|off
  vibration          on|off
  lockscreen         on|off
  quiet              on|off
  quiet.start        HH:MM
  quiet.end          HH:MM
  category.<name>    on|off (system, updates, reminders, social)`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := o.logger(cmd.ErrOrStderr())
			s, err := o.openSession(linePrompter(cmd.InOrStdin(), cmd.OutOrStdout()), log)
			if err != nil {
				return err
			}
			defer s.Close()

			err = applyPref(cmd, s.ctl, args[0], args[1])
			writeEntries(cmd.OutOrStdout(), s.center.Entries())
			return err
		},
	}
}

func applyPref(cmd *cobra.Command, ctl *settings.Controller, key, value string) error {
	if key == "quiet.start" || key == "quiet.end" {
		t, err := prefs.ParseTimeOfDay(value)
		if err != nil {
			return err
		}
		q := ctl.Preferences().QuietHours
		if key == "quiet.start" {
			q.Start = t
		} else {
			q.End = t
		}
		return ctl.SetQuietHours(q)
	}

	on, err := parseSwitch(value)
	if err != nil {
		return err
	}

	switch key {
	case "push":
		return ctl.TogglePush(cmd.Context(), on)
	case "sound":
		return ctl.SetSound(on)
	case "vibration":
		return ctl.SetVibration(on)
	case "lockscreen":
		return ctl.SetLockScreen(on)
	case "quiet":
		q := ctl.Preferences().QuietHours
		q.Enabled = on
		return ctl.SetQuietHours(q)
	}

	if name, ok := strings.CutPrefix(key, "category."); ok {
		return ctl.SetCategory(prefs.Category(name), on)
	}
	return fmt.Errorf("%w: %q", errUnknownKey, key)
}

func parseSwitch(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", v)
	}
	return b, nil
}
