package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	appLog "weekcal/internal/log"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print today's agenda on the configured refresh schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Root context with cancellation on SIGINT/SIGTERM.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			go func() {
				select {
				case sig := <-sigCh:
					appLog.Info("signal received, shutting down", "signal", sig.String())
					cancel()
				case <-ctx.Done():
				}
			}()

			return watch(ctx, cmd.OutOrStdout(), appCtx.Config.RefreshCron)
		},
	}
}

// watch prints today's agenda immediately and then on every tick of spec
// until ctx is canceled.
func watch(ctx context.Context, out io.Writer, spec string) error {
	tick := func() {
		day, err := dayArg(nil)
		if err == nil {
			err = printDay(out, day)
		}
		if err != nil {
			appLog.Error("watch refresh failed", err)
		}
	}

	c := cron.New(cron.WithLocation(appCtx.Config.Location()))
	if _, err := c.AddFunc(spec, tick); err != nil {
		return err
	}

	tick()
	c.Start()
	appLog.Info("watch started", "refresh", spec)

	<-ctx.Done()

	// Wait for a running refresh to finish.
	stopped := c.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(5 * time.Second):
	}
	appLog.Info("watch stopped")
	return nil
}
