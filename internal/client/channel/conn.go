// Package channel is a client for the pub/sub chat channel served at /ws.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/taskchat/internal/proto"
)

const (
	subscriptionBuffer = 64
	errorBuffer        = 8
	readLimit          = 1 << 20
)

// ErrClosed is returned by operations on a closed connection.
var ErrClosed = errors.New("channel closed")

// ProtocolError is an error frame sent by the server.
type ProtocolError struct {
	Code string
	Msg  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Subscription receives message bodies published to one destination.
type Subscription struct {
	ID          string
	Destination string

	ch   chan json.RawMessage
	conn *Conn
}

// C delivers message bodies. It is closed when the subscription ends or the connection drops.
func (s *Subscription) C() <-chan json.RawMessage {
	return s.ch
}

// Unsubscribe detaches the subscription on the server and closes C.
func (s *Subscription) Unsubscribe(ctx context.Context) error {
	if !s.conn.dropSubscription(s.ID) {
		return nil
	}
	data, err := json.Marshal(proto.UnsubscribeData{ID: s.ID})
	if err != nil {
		return err
	}
	return s.conn.write(ctx, proto.Inbound{Type: proto.InboundTypeUnsubscribe, Data: data})
}

// Conn is one session on the chat channel.
type Conn struct {
	ws      *websocket.Conn
	session string
	log     *zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}
	errs   chan *ProtocolError

	mu      sync.Mutex
	subs    map[string]*Subscription
	nextSub int
	err     error
	closed  bool
}

// Dial opens a websocket to url and performs the connect handshake.
func Dial(ctx context.Context, url string, logger *zerolog.Logger) (*Conn, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	ws.SetReadLimit(readLimit)

	session, err := handshake(ctx, ws)
	if err != nil {
		ws.Close(websocket.StatusPolicyViolation, "handshake failed")
		return nil, err
	}

	readCtx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		ws:      ws,
		session: session,
		log:     logger,
		cancel:  cancel,
		done:    make(chan struct{}),
		errs:    make(chan *ProtocolError, errorBuffer),
		subs:    make(map[string]*Subscription),
	}
	go c.readLoop(readCtx)

	logger.Debug().Str("session", session).Msg("channel connected")
	return c, nil
}

func handshake(ctx context.Context, ws *websocket.Conn) (string, error) {
	data, err := json.Marshal(proto.ConnectData{Protocol: proto.ProtocolVersion})
	if err != nil {
		return "", err
	}
	if err := wsjson.Write(ctx, ws, proto.Inbound{Type: proto.InboundTypeConnect, Data: data}); err != nil {
		return "", fmt.Errorf("send connect: %w", err)
	}

	var env proto.Envelope
	if err := wsjson.Read(ctx, ws, &env); err != nil {
		return "", fmt.Errorf("read connected: %w", err)
	}

	switch env.Type {
	case proto.OutboundTypeConnected:
		var connected proto.ConnectedData
		if err := json.Unmarshal(env.Data, &connected); err != nil {
			return "", fmt.Errorf("decode connected: %w", err)
		}
		return connected.Session, nil
	case proto.OutboundTypeError:
		if env.Error != nil {
			return "", &ProtocolError{Code: env.Error.Code, Msg: env.Error.Msg}
		}
	}
	return "", fmt.Errorf("unexpected handshake frame %q", env.Type)
}

// Session returns the id the server assigned to this connection.
func (c *Conn) Session() string {
	return c.session
}

// Subscribe attaches to a topic. Bodies arrive on the returned subscription's channel.
func (c *Conn) Subscribe(ctx context.Context, destination string) (*Subscription, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	sub := &Subscription{
		ID:          "sub-" + strconv.Itoa(c.nextSub),
		Destination: destination,
		ch:          make(chan json.RawMessage, subscriptionBuffer),
		conn:        c,
	}
	c.nextSub++
	c.subs[sub.ID] = sub
	c.mu.Unlock()

	data, err := json.Marshal(proto.SubscribeData{ID: sub.ID, Destination: destination})
	if err != nil {
		c.dropSubscription(sub.ID)
		return nil, err
	}
	if err := c.write(ctx, proto.Inbound{Type: proto.InboundTypeSubscribe, Data: data}); err != nil {
		c.dropSubscription(sub.ID)
		return nil, err
	}
	return sub, nil
}

// Publish sends body to an application destination.
func (c *Conn) Publish(ctx context.Context, destination string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	data, err := json.Marshal(proto.SendData{Destination: destination, Body: raw})
	if err != nil {
		return err
	}
	return c.write(ctx, proto.Inbound{Type: proto.InboundTypeSend, Data: data})
}

// Errors delivers error frames from the server. Frames are dropped when nobody reads them.
func (c *Conn) Errors() <-chan *ProtocolError {
	return c.errs
}

// Done is closed when the connection ends.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Err returns why the connection ended, or nil while it is open.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Connected reports whether the connection is still open.
func (c *Conn) Connected() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Close closes the connection and waits for the read loop to exit. It is safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	// The peer may drop the socket before answering the close frame; that still ends the session.
	if err := c.ws.Close(websocket.StatusNormalClosure, "bye"); err != nil {
		c.log.Debug().Err(err).Msg("channel close handshake")
	}
	c.cancel()
	<-c.done
	return nil
}

func (c *Conn) write(ctx context.Context, frame proto.Inbound) error {
	if !c.Connected() {
		return ErrClosed
	}
	if err := wsjson.Write(ctx, c.ws, frame); err != nil {
		return fmt.Errorf("write %s: %w", frame.Type, err)
	}
	return nil
}

func (c *Conn) dropSubscription(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, ok := c.subs[id]
	if !ok {
		return false
	}
	delete(c.subs, id)
	close(sub.ch)
	return true
}

func (c *Conn) readLoop(ctx context.Context) {
	var err error
	defer func() { c.shutdown(err) }()

	for {
		var env proto.Envelope
		if err = wsjson.Read(ctx, c.ws, &env); err != nil {
			return
		}

		switch env.Type {
		case proto.OutboundTypeMessage:
			var data proto.RawMessageData
			if decodeErr := json.Unmarshal(env.Data, &data); decodeErr != nil {
				c.log.Warn().Err(decodeErr).Msg("malformed message frame")
				continue
			}
			c.deliver(data)
		case proto.OutboundTypeError:
			if env.Error == nil {
				continue
			}
			c.log.Debug().Str("code", env.Error.Code).Str("msg", env.Error.Msg).Msg("channel error frame")
			select {
			case c.errs <- &ProtocolError{Code: env.Error.Code, Msg: env.Error.Msg}:
			default:
			}
		default:
			c.log.Debug().Str("type", env.Type).Msg("ignoring frame")
		}
	}
}

func (c *Conn) deliver(data proto.RawMessageData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, ok := c.subs[data.Subscription]
	if !ok {
		return
	}
	select {
	case sub.ch <- data.Body:
	default:
		c.log.Warn().Str("subscription", sub.ID).Msg("subscription buffer full, dropping message")
	}
}

func (c *Conn) shutdown(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		c.err = err
	} else {
		c.err = ErrClosed
	}
	for id, sub := range c.subs {
		close(sub.ch)
		delete(c.subs, id)
	}
	close(c.done)
}
