package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rushmanagement/rushnotify/internal/permission"
)

func newStatusCmd(o *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the notification permission and preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := o.logger(cmd.ErrOrStderr())
			s, err := o.openSession(noPrompt, log)
			if err != nil {
				return err
			}
			defer s.Close()

			r := statusReport{
				Permission:  s.ctl.Status(),
				Badge:       s.ctl.Badge().Label,
				CanSendTest: s.ctl.CanSendTest(),
				Device:      o.device(),
				Preferences: s.ctl.Preferences(),
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			return writeStatus(cmd.OutOrStdout(), r)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// noPrompt is used by commands that never ask for consent.
var noPrompt = permission.PromptFunc(func(_ context.Context) (permission.Answer, error) {
	return permission.AnswerDismiss, nil
})
