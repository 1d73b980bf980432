package core

import "strings"

const (
	// TopicMessages is the broadcast topic carrying every stored chat message.
	TopicMessages = "/topic/messages"
	// DestinationChatSend accepts outbound chat messages from clients.
	DestinationChatSend = "/app/chat.send"

	topicPrefix = "/topic/"
)

// IsTopic reports whether dest names a subscribable topic.
func IsTopic(dest string) bool {
	return strings.HasPrefix(dest, topicPrefix) && len(dest) > len(topicPrefix)
}
