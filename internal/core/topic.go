package core

// Topic groups clients subscribed to the same destination.
type Topic struct {
	Name        string
	subscribers map[*Client]string
}

// NewTopic constructs a topic with no subscribers.
func NewTopic(name string) *Topic {
	return &Topic{
		Name:        name,
		subscribers: make(map[*Client]string),
	}
}

// Subscribe attaches a client under subID. Returns false if the client is already subscribed.
func (t *Topic) Subscribe(c *Client, subID string) bool {
	if _, exists := t.subscribers[c]; exists {
		return false
	}
	t.subscribers[c] = subID
	return true
}

// Unsubscribe detaches a client. Returns true if removed.
func (t *Topic) Unsubscribe(c *Client) bool {
	if _, exists := t.subscribers[c]; !exists {
		return false
	}
	delete(t.subscribers, c)
	return true
}

// Broadcast sends a copy of event to every subscriber, stamped with its subscription id.
func (t *Topic) Broadcast(event Event) {
	for client, subID := range t.subscribers {
		ev := event
		ev.Destination = t.Name
		ev.SubscriptionID = subID
		select {
		case client.Events <- &ev:
		default:
			// Drop if slow consumer.
		}
	}
}

// Len returns the number of subscribers.
func (t *Topic) Len() int {
	return len(t.subscribers)
}

// Empty returns true if nobody is subscribed.
func (t *Topic) Empty() bool {
	return len(t.subscribers) == 0
}
