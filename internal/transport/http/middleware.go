package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/taskchat/internal/proto"
	"github.com/vovakirdan/taskchat/internal/utils"
)

const (
	// HeaderUserID carries the caller's user id on task requests.
	HeaderUserID = "X-User-Id"
	// HeaderRequestID correlates a request across client and server logs.
	HeaderRequestID = "X-Request-Id"

	// ContextKeyUserID is the context key for storing user ID.
	ContextKeyUserID = "user_id"
	// ContextKeyRequestID is the context key for storing the request ID.
	ContextKeyRequestID = "request_id"
)

// UserIDMiddleware requires a non-blank X-User-Id header and stores it in the context.
func UserIDMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			logger.Debug().Str("path", c.Request.URL.Path).Msg("missing user id header")
			c.AbortWithStatusJSON(http.StatusBadRequest, proto.ErrorResponse{Error: "X-User-Id header required"})
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// RequestIDMiddleware reuses the caller's X-Request-Id or assigns a new one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = utils.NewID()
		}

		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Process request
		c.Next()

		// Log after request
		logger.Info().
			Str("request_id", c.GetString(ContextKeyRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}

func userIDFrom(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}
