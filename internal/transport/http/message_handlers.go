package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/taskchat/internal/core"
	"github.com/vovakirdan/taskchat/internal/proto"
	"github.com/vovakirdan/taskchat/internal/service/chat"
)

// MessageService lists chat history.
type MessageService interface {
	RecentMessages(ctx context.Context, limit int) ([]core.Message, error)
}

// MessageHandlers provides HTTP handlers for chat history.
type MessageHandlers struct {
	service MessageService
	log     *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(service MessageService, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		service: service,
		log:     logger,
	}
}

// ListRecent returns recent messages, newest first.
// GET /api/messages?limit=50
func (h *MessageHandlers) ListRecent(c *gin.Context) {
	limit := chat.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	messages, err := h.service.RecentMessages(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Int("limit", limit).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, proto.ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]proto.ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, proto.NewChatMessageResponse(m))
	}

	c.JSON(http.StatusOK, response)
}
