package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vovakirdan/taskchat/internal/client/channel"
	"github.com/vovakirdan/taskchat/internal/log"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "server base URL")
	user := flag.String("user", "tester", "sender id for the message")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	logger := log.New("info", os.Stderr)
	if err := run(*server, *user, *text, *timeout); err != nil {
		logger.Error().Err(err).Msg("ws_smoke failed")
		os.Exit(1)
	}
}

func run(server, user, text string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	chat, err := channel.DialChat(ctx, server, log.New("warn", os.Stderr))
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer chat.Close()

	fmt.Printf("connected, session %s\n", chat.Session())

	if err := chat.Send(ctx, user, text); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	// other clients may be talking; wait for our own message to come back
	for {
		select {
		case perr := <-chat.Errors():
			return perr
		default:
		}

		msg, err := chat.Next(ctx)
		if err != nil {
			return fmt.Errorf("waiting for echo: %w", err)
		}
		fmt.Printf("received #%d %s: %s\n", msg.ID, msg.SenderID, msg.Content)
		if msg.SenderID == user && msg.Content == text {
			return nil
		}
	}
}
