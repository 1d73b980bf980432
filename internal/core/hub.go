package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// MessageSaver persists chat messages published through the hub.
type MessageSaver interface {
	SaveMessage(ctx context.Context, senderID, content string) (*Message, error)
}

type envelope struct {
	client *Client
	cmd    *Command
	// err is set when the command failed before reaching the hub
	err *CoreError
}

const saveTimeout = 5 * time.Second

// Hub owns topic subscriptions and routes client commands.
// All state is confined to the goroutine running Run.
type Hub struct {
	saver MessageSaver
	log   *zerolog.Logger

	register   chan *Client
	unregister chan *Client
	inbox      chan envelope
	stopped    chan struct{}

	clients map[*Client]struct{}
	topics  map[string]*Topic
}

// NewHub creates a new hub. saver may be nil, in which case messages are
// broadcast without being stored.
func NewHub(saver MessageSaver, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		saver:      saver,
		log:        logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbox:      make(chan envelope, 64),
		stopped:    make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		topics:     make(map[string]*Topic),
	}
}

// RegisterClient attaches a client to the hub.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.stopped:
	}
}

// UnregisterClient drops a client and all of its subscriptions.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// Run processes registrations and client commands until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.release(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			go h.forward(ctx, c)
			h.log.Debug().Str("client_id", c.ID).Msg("client registered")
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.release(c)
				h.log.Debug().Str("client_id", c.ID).Msg("client unregistered")
			}
		case env := <-h.inbox:
			if _, ok := h.clients[env.client]; !ok {
				continue
			}
			if env.err != nil {
				h.sendError(env.client, env.err)
				continue
			}
			h.handle(env.client, env.cmd)
		}
	}
}

func (h *Hub) forward(ctx context.Context, c *Client) {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			if cmd == nil {
				continue
			}
			env := h.persist(ctx, c, cmd)
			select {
			case h.inbox <- env:
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// persist stores chat sends on the client's forwarding goroutine so a slow
// write never stalls routing for other clients.
func (h *Hub) persist(ctx context.Context, c *Client, cmd *Command) envelope {
	env := envelope{client: c, cmd: cmd}
	if cmd.Kind != CommandSend || cmd.Destination != DestinationChatSend {
		return env
	}
	if h.saver == nil {
		if cmd.Message.CreatedAt.IsZero() {
			cmd.Message.CreatedAt = time.Now().UTC()
		}
		return env
	}

	saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	saved, err := h.saver.SaveMessage(saveCtx, cmd.Message.SenderID, cmd.Message.Content)
	if err != nil {
		if errors.Is(err, ErrInvalidMessage) {
			env.err = coreError(ErrCodeBadRequest, err.Error())
			return env
		}
		h.log.Error().Err(err).Str("client_id", c.ID).Msg("failed to save message")
		env.err = coreError(ErrCodeInternal, "failed to save message")
		return env
	}
	cmd.Message = *saved
	return env
}

func (h *Hub) release(c *Client) {
	for _, name := range c.subscriptions {
		if topic, ok := h.topics[name]; ok {
			topic.Unsubscribe(c)
			if topic.Empty() {
				delete(h.topics, name)
			}
		}
	}
	c.subscriptions = make(map[string]string)
	delete(h.clients, c)
	close(c.done)
	close(c.Events)
}

func (h *Hub) handle(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandSubscribe:
		h.subscribe(c, cmd)
	case CommandUnsubscribe:
		h.unsubscribe(c, cmd)
	case CommandSend:
		h.send(c, cmd)
	default:
		h.sendError(c, coreError(ErrCodeBadRequest, "unknown command"))
	}
}

func (h *Hub) subscribe(c *Client, cmd *Command) {
	if cmd.SubscriptionID == "" {
		h.sendError(c, coreError(ErrCodeBadRequest, "subscription id is required"))
		return
	}
	if !IsTopic(cmd.Destination) {
		h.sendError(c, coreError(ErrCodeUnknownDestination, "cannot subscribe to "+cmd.Destination))
		return
	}
	if _, exists := c.subscriptions[cmd.SubscriptionID]; exists {
		h.sendError(c, coreError(ErrCodeAlreadySubscribed, "subscription id already in use"))
		return
	}

	topic, ok := h.topics[cmd.Destination]
	if !ok {
		topic = NewTopic(cmd.Destination)
		h.topics[cmd.Destination] = topic
	}
	if !topic.Subscribe(c, cmd.SubscriptionID) {
		h.sendError(c, coreError(ErrCodeAlreadySubscribed, "already subscribed to "+cmd.Destination))
		return
	}
	c.subscriptions[cmd.SubscriptionID] = cmd.Destination
	h.log.Debug().Str("client_id", c.ID).Str("topic", topic.Name).Int("subscribers", topic.Len()).Msg("subscribed")
}

func (h *Hub) unsubscribe(c *Client, cmd *Command) {
	name, ok := c.subscriptions[cmd.SubscriptionID]
	if !ok {
		h.sendError(c, coreError(ErrCodeNotSubscribed, "unknown subscription"))
		return
	}
	delete(c.subscriptions, cmd.SubscriptionID)
	if topic, exists := h.topics[name]; exists {
		topic.Unsubscribe(c)
		if topic.Empty() {
			delete(h.topics, name)
		}
	}
}

// send broadcasts a message already stored by persist.
func (h *Hub) send(c *Client, cmd *Command) {
	if cmd.Destination != DestinationChatSend {
		h.sendError(c, coreError(ErrCodeUnknownDestination, "cannot send to "+cmd.Destination))
		return
	}

	topic, ok := h.topics[TopicMessages]
	if !ok {
		return
	}
	topic.Broadcast(Event{Kind: EventMessage, Message: cmd.Message})
}

func (h *Hub) sendError(c *Client, err *CoreError) {
	select {
	case c.Events <- &Event{Kind: EventError, Error: err}:
	default:
	}
}
