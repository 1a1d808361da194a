package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"schedrecur/internal/config"
	"schedrecur/internal/pipeline"
	"schedrecur/internal/web"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report over HTTP and re-analyze on a cron schedule",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}
	cmd.Flags().StringVar(&a.listen, "listen", config.DefaultListen, "HTTP listen address (overrides config if set)")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	days, err := a.weekdays()
	if err != nil {
		return err
	}

	a.log.Info("schedrecur serve starting",
		"version", version,
		"listen", a.cfg.Listen,
		"directory", a.cfg.Directory,
		"refresh", a.cfg.RefreshCron,
		"timezone", a.cfg.Timezone,
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			a.log.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	refresh := func(context.Context) (pipeline.Result, error) {
		return a.analyze()
	}

	srv := web.NewServer(a.cfg, refresh, days, a.log)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	a.log.Info("schedrecur exiting")
	return nil
}
