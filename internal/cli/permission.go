package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushmanagement/rushnotify/internal/permission"
)

func newPermissionCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permission",
		Short: "Inspect or change the recorded notification permission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := o.logger(cmd.ErrOrStderr())
			s, err := o.openSession(noPrompt, log)
			if err != nil {
				return err
			}
			defer s.Close()
			fmt.Fprintln(cmd.OutOrStdout(), badgeText(s.registry.Status()))
			return nil
		},
	}

	set := func(use, short string, st permission.State) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				log := o.logger(cmd.ErrOrStderr())
				s, err := o.openSession(noPrompt, log)
				if err != nil {
					return err
				}
				defer s.Close()
				if err := s.registry.Set(st); err != nil {
					return fmt.Errorf("record permission: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Permission:", badgeText(s.ctl.Refresh()))
				return nil
			},
		}
	}

	cmd.AddCommand(
		set("allow", "Grant notification permission", permission.Granted),
		set("block", "Block notifications", permission.Denied),
		set("reset", "Forget the decision so the next enable asks again", permission.Default),
	)
	return cmd
}
