package cli

import "github.com/spf13/cobra"

func newTestCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Ask the backend to push a test notification to this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := o.logger(cmd.ErrOrStderr())
			s, err := o.openSession(noPrompt, log)
			if err != nil {
				return err
			}
			defer s.Close()

			err = s.ctl.SendTest(cmd.Context())
			writeEntries(cmd.OutOrStdout(), s.center.Entries())
			return err
		},
	}
}
