package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/taskchat/internal/config"
	"github.com/vovakirdan/taskchat/internal/core"
)

// NewServer builds an HTTP server with the REST API, the chat websocket and a health check.
func NewServer(hub *core.Hub, messages MessageService, tasks TaskService, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	api := router.Group("/api")
	{
		messageHandlers := NewMessageHandlers(messages, logger)
		api.GET("/messages", messageHandlers.ListRecent)

		taskHandlers := NewTaskHandlers(tasks, logger)
		taskRoutes := api.Group("/tasks")
		taskRoutes.Use(UserIDMiddleware(logger))
		{
			taskRoutes.GET("", taskHandlers.List)
			taskRoutes.POST("", taskHandlers.Create)
			taskRoutes.GET("/:id", taskHandlers.Get)
			taskRoutes.PUT("/:id", taskHandlers.Update)
			taskRoutes.DELETE("/:id", taskHandlers.Delete)
		}
	}

	// The websocket upgrade hijacks the connection, so it stays outside gin.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
