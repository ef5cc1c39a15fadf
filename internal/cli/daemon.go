package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rushmanagement/rushnotify/internal/errmsg"
	"github.com/rushmanagement/rushnotify/internal/logging"
	"github.com/rushmanagement/rushnotify/internal/prefs"
	"github.com/rushmanagement/rushnotify/internal/receiver"
)

func newDaemonCmd(o *options) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Receive push messages and show them as desktop notifications",
		Long: `Run the background receiver. Push messages arrive on the local HTTP
endpoint (POST /push) and, when push.stream_url is configured, over the
backend's websocket stream. Clicking a notification opens the application.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if listen == "" {
				listen = o.cfg.PushListen()
			}
			return o.runDaemon(ctx, listen, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "push endpoint address (default from config)")
	return cmd
}

func (o *options) runDaemon(ctx context.Context, listen string, logOut io.Writer) error {
	log := o.logger(logOut)
	fail := func(err error) error {
		log.WithError(err).Error(errmsg.Format(errmsg.OpDaemonStart, err))
		return err
	}

	mgr, err := o.openState()
	if err != nil {
		return fail(fmt.Errorf("open state: %w", err))
	}
	defer mgr.Close()

	notifier, err := o.newNotifier()
	if err != nil {
		return fail(fmt.Errorf("connect to notification server: %w", err))
	}
	defer notifier.Shutdown()
	if !notifier.Available() {
		log.Warn("no desktop notification server; push messages will not be displayed")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	rc := receiver.New(
		notifier,
		receiver.SystemOpener{},
		prefs.NewSQLiteStore(mgr.DB(), logging.WithComponent(log, "prefs")),
		receiver.Config{
			RootURL: o.cfg.RootURL(),
			Icon:    o.cfg.App.Icon,
			Badge:   o.cfg.App.Badge,
		},
		logging.WithComponent(log, "receiver"),
		receiver.WithMetrics(receiver.NewMetrics(reg)),
	)

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fail(fmt.Errorf("listen on %s: %w", listen, err))
	}
	if o.cfg.Push.Secret == "" {
		log.Warn("push.secret is empty; the push endpoint accepts unauthenticated requests")
	}
	httpSrc := &receiver.HTTPSource{
		Handler: receiver.NewHTTPHandler(rc, o.cfg.Push.Secret, reg),
		Log:     logging.WithComponent(log, "http"),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rc.Run(gctx) })
	g.Go(func() error { return httpSrc.Serve(gctx, ln) })
	if url := o.cfg.Push.StreamURL; url != "" {
		stream := receiver.NewStreamSource(url, o.cfg.API.Token, logging.WithComponent(log, "stream"))
		g.Go(func() error { return stream.Run(gctx, rc) })
	}

	log.WithFields(logging.Fields{
		"listen":   ln.Addr().String(),
		"stream":   o.cfg.Push.StreamURL != "",
		"root_url": o.cfg.RootURL(),
	}).Info("notification daemon started")

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Info("notification daemon stopped")
	return err
}
