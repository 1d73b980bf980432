package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventMessage delivers a chat message published on a subscribed topic.
	EventMessage EventKind = iota
	// EventError notifies clients about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind           EventKind
	Destination    string
	SubscriptionID string
	Message        Message
	Error          *CoreError
}
