package proto

import (
	"time"

	"github.com/vovakirdan/taskchat/internal/core"
)

// ChatMessageRequest is the body published to the chat send destination.
type ChatMessageRequest struct {
	SenderID string `json:"senderId"`
	Content  string `json:"content"`
}

// ChatMessageResponse is a stored chat message as seen by clients.
type ChatMessageResponse struct {
	ID        int64     `json:"id"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewChatMessageResponse maps a domain message to its wire form.
func NewChatMessageResponse(m core.Message) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// Core converts the wire form back into a domain message.
func (r ChatMessageResponse) Core() core.Message {
	return core.Message{
		ID:        r.ID,
		SenderID:  r.SenderID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}
