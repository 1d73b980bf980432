package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/taskchat/internal/client/api"
	"github.com/vovakirdan/taskchat/internal/client/channel"
	"github.com/vovakirdan/taskchat/internal/config"
	"github.com/vovakirdan/taskchat/internal/log"
	"github.com/vovakirdan/taskchat/internal/ui"
)

func newTUICmd(root *rootFlags) *cobra.Command {
	var overrides config.Config

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(overrides)
			if err != nil {
				return err
			}
			client := cfg.Client

			// stdout belongs to the terminal UI
			logFile, err := log.OpenFile(client.LogFile)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer logFile.Close()
			logger := log.New(cfg.LogLevel, logFile)

			rest, err := api.New(client.ServerURL, &http.Client{Timeout: client.RequestTimeout}, logger)
			if err != nil {
				return err
			}

			model := ui.New(rest, rest, chatDialer(client.ServerURL, logger), ui.Options{
				UserID:         client.UserID,
				HistoryLimit:   client.HistoryLimit,
				StatusDelay:    client.StatusDelay,
				RequestTimeout: client.RequestTimeout,
				Location:       time.Local,
			}, logger)

			logger.Info().Str("server", rest.BaseURL()).Msg("starting terminal client")
			if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
				return fmt.Errorf("run terminal client: %w", err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&overrides.Client.ServerURL, "server", "", "server base URL")
	f.StringVarP(&overrides.Client.UserID, "user", "u", "", "prefill the user id")
	f.StringVar(&overrides.Client.LogFile, "log-file", "", "file to write client logs to")
	f.IntVar(&overrides.Client.HistoryLimit, "history", 0, "number of past messages to load")

	return cmd
}

func chatDialer(serverURL string, logger *zerolog.Logger) ui.Dialer {
	return func(ctx context.Context, s api.Session) (ui.ChatConn, error) {
		chat, err := channel.DialChat(ctx, serverURL, logger)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("user_id", s.UserID).Str("session", chat.Session()).Msg("chat channel open")
		return chat, nil
	}
}
