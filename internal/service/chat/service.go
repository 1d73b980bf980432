package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vovakirdan/taskchat/internal/core"
	"github.com/vovakirdan/taskchat/internal/store"
)

const (
	// DefaultRecentLimit is used when the caller does not ask for a size.
	DefaultRecentLimit = 50
	// MaxRecentLimit caps how much history one request may pull.
	MaxRecentLimit = 200

	maxSenderLen  = 255
	maxContentLen = 4000
)

// Service stores and lists chat messages.
type Service struct {
	store store.MessageStore
	now   func() time.Time
}

// New creates a chat service.
func New(st store.MessageStore) *Service {
	return &Service{
		store: st,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SaveMessage validates and stores a message, stamping its creation time.
// Validation failures wrap core.ErrInvalidMessage.
func (s *Service) SaveMessage(ctx context.Context, senderID, content string) (*core.Message, error) {
	if err := validate(senderID, content); err != nil {
		return nil, err
	}

	msg := &store.Message{
		SenderID:  senderID,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	out := toCore(msg)
	return &out, nil
}

// RecentMessages returns the newest messages first. limit is clamped to [1, MaxRecentLimit].
func (s *Service) RecentMessages(ctx context.Context, limit int) ([]core.Message, error) {
	limit = ClampLimit(limit)

	rows, err := s.store.ListRecentMessages(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages := make([]core.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, toCore(row))
	}
	return messages, nil
}

// ClampLimit bounds a requested history size.
func ClampLimit(limit int) int {
	return max(1, min(limit, MaxRecentLimit))
}

func validate(senderID, content string) error {
	switch {
	case strings.TrimSpace(senderID) == "":
		return fmt.Errorf("%w: sender id is required", core.ErrInvalidMessage)
	case utf8.RuneCountInString(senderID) > maxSenderLen:
		return fmt.Errorf("%w: sender id is too long", core.ErrInvalidMessage)
	case strings.TrimSpace(content) == "":
		return fmt.Errorf("%w: content is required", core.ErrInvalidMessage)
	case utf8.RuneCountInString(content) > maxContentLen:
		return fmt.Errorf("%w: content is too long", core.ErrInvalidMessage)
	}
	return nil
}

func toCore(m *store.Message) core.Message {
	return core.Message{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
