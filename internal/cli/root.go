// Package cli wires the rushnotify commands: the settings screen, the push
// daemon and the scriptable status and preference commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rushmanagement/rushnotify/internal/config"
	"github.com/rushmanagement/rushnotify/internal/logging"
	"github.com/rushmanagement/rushnotify/internal/notify"
	"github.com/rushmanagement/rushnotify/internal/state"
)

// options are the persistent flags plus what they resolve to.
type options struct {
	configFile string
	logLevel   string
	dbPath     string

	cfg         *config.Config
	newNotifier func() (notify.Notifier, error)
}

// NewRootCmd returns the rushnotify root command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{newNotifier: notify.New})
}

func newRootCmd(o *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rushnotify",
		Short:         "Rush Management desktop notifications",
		Long:          "rushnotify manages notification settings for Rush Management and runs the daemon that shows push notifications on this desktop.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(o.configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			o.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&o.configFile, "config", "", "additional config file (read after the default locations)")
	rootCmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "log level: debug|info|warn|error (default from config)")
	rootCmd.PersistentFlags().StringVar(&o.dbPath, "db", "", "state database path (default under the XDG data directory)")

	rootCmd.AddCommand(newSettingsCmd(o))
	rootCmd.AddCommand(newDaemonCmd(o))
	rootCmd.AddCommand(newStatusCmd(o))
	rootCmd.AddCommand(newPrefsCmd(o))
	rootCmd.AddCommand(newPermissionCmd(o))
	rootCmd.AddCommand(newTestCmd(o))

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (o *options) level() string {
	if o.logLevel != "" {
		return o.logLevel
	}
	return o.cfg.LogLevel()
}

func (o *options) logger(out io.Writer) *logrus.Logger {
	return logging.New(out, o.level(), o.cfg.LogFormat())
}

func (o *options) openState() (*state.Manager, error) {
	if o.dbPath != "" {
		return state.OpenPath(o.dbPath)
	}
	return state.Open()
}
