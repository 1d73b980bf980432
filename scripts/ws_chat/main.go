package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/taskchat/internal/client/api"
	"github.com/vovakirdan/taskchat/internal/client/channel"
	"github.com/vovakirdan/taskchat/internal/log"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "server base URL")
	user := flag.String("user", "cli-user", "sender id")
	history := flag.Int("history", 10, "number of past messages to print on start")
	flag.Parse()

	logger := log.New("warn", os.Stderr)
	if err := run(*server, *user, *history, logger); err != nil {
		logger.Error().Err(err).Msg("ws_chat failed")
		os.Exit(1)
	}
}

func run(server, user string, history int, logger *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if history > 0 {
		printHistory(ctx, server, history, logger)
	}

	chat, err := channel.DialChat(ctx, server, logger)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer chat.Close()

	fmt.Printf("Connected to %s as %s\n", server, user)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer cancel()
		readLoop(ctx, chat)
	}()

	writeLoop(ctx, chat, user, logger)
	return nil
}

func printHistory(ctx context.Context, server string, limit int, logger *zerolog.Logger) {
	client, err := api.New(server, nil, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("history unavailable")
		return
	}
	messages, err := client.RecentMessages(ctx, limit)
	if err != nil {
		logger.Warn().Err(err).Msg("history unavailable")
		return
	}
	// oldest first reads naturally in a scrolling terminal
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Local().Format(time.TimeOnly), m.SenderID, m.Content)
	}
}

func readLoop(ctx context.Context, chat *channel.Chat) {
	for {
		select {
		case perr := <-chat.Errors():
			fmt.Printf("error %s: %s\n", perr.Code, perr.Msg)
			continue
		default:
		}

		msg, err := chat.Next(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, channel.ErrClosed) {
				fmt.Printf("connection lost: %v\n", err)
			}
			return
		}
		fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Local().Format(time.TimeOnly), msg.SenderID, msg.Content)
	}
}

func writeLoop(ctx context.Context, chat *channel.Chat, user string, logger *zerolog.Logger) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if err := chat.Send(ctx, user, text); err != nil {
				logger.Error().Err(err).Msg("send failed")
				return
			}
		}
	}
}
