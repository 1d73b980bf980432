package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/taskchat/internal/app"
	"github.com/vovakirdan/taskchat/internal/config"
	"github.com/vovakirdan/taskchat/internal/log"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	var overrides config.Config

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST and websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(overrides)
			if err != nil {
				return err
			}

			logger := log.New(cfg.LogLevel, nil)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(&cfg, logger)
			if err != nil {
				return err
			}

			logger.Info().Str("addr", cfg.Addr).Msg("starting taskchat server")
			if err := application.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	f.StringVar(&overrides.DatabasePath, "db", "", "SQLite database path")
	f.DurationVar(&overrides.ReadHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	f.DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	f.IntVar(&overrides.SendRateLimit, "send-rate-limit", 0, "chat sends allowed per connection per minute")

	return cmd
}
