package cli

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rushmanagement/rushnotify/internal/logging"
	"github.com/rushmanagement/rushnotify/internal/permission"
	"github.com/rushmanagement/rushnotify/internal/ui/settingsview"
)

func newSettingsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Open the interactive notification settings screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The screen owns the terminal; log to the state directory.
			var out io.Writer = io.Discard
			if f, err := logging.OpenFile(); err == nil {
				defer f.Close()
				out = f
			}
			log := o.logger(out)

			prompter := permission.NewChannelPrompter()
			s, err := o.openSession(prompter, log)
			if err != nil {
				return err
			}
			defer s.Close()

			m := settingsview.New(settingsview.Deps{
				Controller: s.ctl,
				Center:     s.center,
				Prompts:    prompter.Requests(),
				Context:    cmd.Context(),
			})
			p := tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			if _, err := p.Run(); err != nil {
				log.WithError(err).Error("settings screen")
				return err
			}
			return nil
		},
	}
}
