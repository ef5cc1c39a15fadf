package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rushmanagement/rushnotify/internal/center"
	"github.com/rushmanagement/rushnotify/internal/permission"
	"github.com/rushmanagement/rushnotify/internal/prefs"
	"github.com/rushmanagement/rushnotify/internal/settings"
	"github.com/rushmanagement/rushnotify/internal/ui/styles"
)

// statusReport is the machine-readable form of `status`.
type statusReport struct {
	Permission  permission.State  `json:"permission"`
	Badge       string            `json:"badge"`
	CanSendTest bool              `json:"canSendTest"`
	Device      settings.Device   `json:"device"`
	Preferences prefs.Preferences `json:"preferences"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func badgeText(st permission.State) string {
	s := styles.T().S()
	b := settings.BadgeFor(st)
	switch b.State {
	case permission.Granted:
		return s.Success.Render(b.Label)
	case permission.Denied:
		return s.Error.Render(b.Label)
	default:
		return s.Muted.Render(b.Label)
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func writeStatus(w io.Writer, r statusReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Permission\t%s\n", badgeText(r.Permission))
	fmt.Fprintf(tw, "Device\t%s (%s)\n", r.Device.ID, r.Device.Platform)
	fmt.Fprintf(tw, "Push endpoint\t%s\n", r.Device.Endpoint)
	fmt.Fprintf(tw, "Test notification\t%s\n", availability(r.CanSendTest))
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return writePrefs(w, r.Preferences)
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}

func writePrefs(w io.Writer, p prefs.Preferences) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE")
	fmt.Fprintf(tw, "push\t%s\n", onOff(p.PushEnabled))
	fmt.Fprintf(tw, "sound\t%s\n", onOff(p.SoundEnabled))
	fmt.Fprintf(tw, "vibration\t%s\n", onOff(p.VibrationEnabled))
	fmt.Fprintf(tw, "lockscreen\t%s\n", onOff(p.ShowOnLockScreen))
	fmt.Fprintf(tw, "quiet\t%s\n", onOff(p.QuietHours.Enabled))
	fmt.Fprintf(tw, "quiet.start\t%s\n", p.QuietHours.Start)
	fmt.Fprintf(tw, "quiet.end\t%s\n", p.QuietHours.End)
	for _, c := range prefs.Categories {
		fmt.Fprintf(tw, "category.%s\t%s\n", c, onOff(p.CategoryEnabled(c)))
	}
	return tw.Flush()
}

// writeEntries prints what the controller reported, oldest first.
func writeEntries(w io.Writer, entries []center.Entry) {
	s := styles.T().S()
	for _, e := range entries {
		line := s.KindStyle(e.Kind).Render(styles.KindMarker(e.Kind)) + " " + e.Title
		if e.Message != "" {
			line += ": " + e.Message
		}
		fmt.Fprintln(w, line)
	}
}
