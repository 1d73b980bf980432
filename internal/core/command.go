package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSubscribe attaches the client to a topic under a subscription id.
	CommandSubscribe CommandKind = iota
	// CommandUnsubscribe detaches a subscription.
	CommandUnsubscribe
	// CommandSend publishes a chat message to an application destination.
	CommandSend
)

// Command represents an action requested by a client.
type Command struct {
	Kind           CommandKind
	Destination    string
	SubscriptionID string
	Message        Message
}
