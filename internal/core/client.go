package core

// Client is a connected channel participant as seen by the core layer.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	// subscription id -> topic, owned by the hub goroutine
	subscriptions map[string]string
	done          chan struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:            id,
		Commands:      make(chan *Command, 8),
		Events:        make(chan *Event, 32),
		subscriptions: make(map[string]string),
		done:          make(chan struct{}),
	}
}

// Done is closed once the hub has released the client.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
