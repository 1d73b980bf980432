package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/taskchat/internal/core"
	"github.com/vovakirdan/taskchat/internal/proto"
)

const unsubscribeTimeout = time.Second

// Chat is a Conn subscribed to the shared message topic.
type Chat struct {
	conn *Conn
	sub  *Subscription
	log  *zerolog.Logger
}

// DialChat connects to the server at serverURL (http or ws scheme) and subscribes to the message topic.
func DialChat(ctx context.Context, serverURL string, logger *zerolog.Logger) (*Chat, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	wsURL, err := URLFromHTTP(serverURL)
	if err != nil {
		return nil, err
	}

	conn, err := Dial(ctx, wsURL, logger)
	if err != nil {
		return nil, err
	}

	sub, err := conn.Subscribe(ctx, core.TopicMessages)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("subscribe %s: %w", core.TopicMessages, err)
	}

	return &Chat{conn: conn, sub: sub, log: logger}, nil
}

// Next blocks until a chat message arrives. It returns ErrClosed once the connection ends.
func (c *Chat) Next(ctx context.Context) (core.Message, error) {
	for {
		select {
		case raw, ok := <-c.sub.C():
			if !ok {
				return core.Message{}, c.closedErr()
			}
			var msg proto.ChatMessageResponse
			if err := json.Unmarshal(raw, &msg); err != nil {
				c.log.Warn().Err(err).Msg("malformed chat message")
				continue
			}
			return msg.Core(), nil
		case <-ctx.Done():
			return core.Message{}, ctx.Err()
		}
	}
}

// Send publishes a chat message.
func (c *Chat) Send(ctx context.Context, senderID, content string) error {
	return c.conn.Publish(ctx, core.DestinationChatSend, proto.ChatMessageRequest{
		SenderID: senderID,
		Content:  content,
	})
}

// Errors delivers error frames from the server.
func (c *Chat) Errors() <-chan *ProtocolError {
	return c.conn.Errors()
}

// Session returns the server-assigned session id.
func (c *Chat) Session() string {
	return c.conn.Session()
}

// Connected reports whether the connection is still open.
func (c *Chat) Connected() bool {
	return c.conn.Connected()
}

// Close unsubscribes from the message topic and ends the session.
func (c *Chat) Close() error {
	if c.conn.Connected() {
		ctx, cancel := context.WithTimeout(context.Background(), unsubscribeTimeout)
		if err := c.sub.Unsubscribe(ctx); err != nil {
			c.log.Debug().Err(err).Msg("unsubscribe on close")
		}
		cancel()
	}
	return c.conn.Close()
}

func (c *Chat) closedErr() error {
	<-c.conn.Done()
	return c.conn.Err()
}

// URLFromHTTP turns a server root like http://host:8080 into its websocket endpoint ws://host:8080/ws.
// ws and wss URLs are returned with the path defaulted to /ws.
func URLFromHTTP(serverURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		if u.Path != "" && u.Path != "/" {
			return u.String(), nil
		}
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}
