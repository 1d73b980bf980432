package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/taskchat/internal/core"
	"github.com/vovakirdan/taskchat/internal/proto"
	"github.com/vovakirdan/taskchat/internal/service/tasks"
)

// TaskService is the per-user task store behind /api/tasks.
type TaskService interface {
	Create(ctx context.Context, userID string, draft tasks.Draft) (*core.Task, error)
	List(ctx context.Context, userID string, filter tasks.Filter) ([]core.Task, error)
	Get(ctx context.Context, userID string, id int64) (*core.Task, error)
	Update(ctx context.Context, userID string, id int64, patch tasks.Patch) (*core.Task, error)
	Delete(ctx context.Context, userID string, id int64) error
}

// TaskHandlers provides HTTP handlers for task endpoints.
type TaskHandlers struct {
	service TaskService
	log     *zerolog.Logger
}

// NewTaskHandlers creates a new task handlers instance.
func NewTaskHandlers(service TaskService, logger *zerolog.Logger) *TaskHandlers {
	return &TaskHandlers{
		service: service,
		log:     logger,
	}
}

// Create handles task creation.
// POST /api/tasks
func (h *TaskHandlers) Create(c *gin.Context) {
	uid := userIDFrom(c)

	var req proto.TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create task request")
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "invalid request body"})
		return
	}

	task, err := h.service.Create(c.Request.Context(), uid, tasks.Draft{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		h.writeError(c, err, "failed to create task")
		return
	}

	h.log.Info().Str("user_id", uid).Int64("task_id", task.ID).Msg("task created")
	c.JSON(http.StatusCreated, proto.NewTaskResponse(*task))
}

// List handles listing the caller's tasks.
// GET /api/tasks?status=PENDING&category=errands
func (h *TaskHandlers) List(c *gin.Context) {
	uid := userIDFrom(c)

	filter := tasks.Filter{Category: c.Query("category")}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := core.ParseTaskStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "invalid status"})
			return
		}
		filter.Status = &status
	}

	list, err := h.service.List(c.Request.Context(), uid, filter)
	if err != nil {
		h.writeError(c, err, "failed to list tasks")
		return
	}

	response := make([]proto.TaskResponse, 0, len(list))
	for _, task := range list {
		response = append(response, proto.NewTaskResponse(task))
	}

	h.log.Debug().Str("user_id", uid).Int("task_count", len(list)).Msg("tasks listed")
	c.JSON(http.StatusOK, response)
}

// Get returns one task.
// GET /api/tasks/:id
func (h *TaskHandlers) Get(c *gin.Context) {
	id, ok := h.taskID(c)
	if !ok {
		return
	}

	task, err := h.service.Get(c.Request.Context(), userIDFrom(c), id)
	if err != nil {
		h.writeError(c, err, "failed to get task")
		return
	}

	c.JSON(http.StatusOK, proto.NewTaskResponse(*task))
}

// Update applies a partial update.
// PUT /api/tasks/:id
func (h *TaskHandlers) Update(c *gin.Context) {
	uid := userIDFrom(c)
	id, ok := h.taskID(c)
	if !ok {
		return
	}

	var req proto.TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid update task request")
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "invalid request body"})
		return
	}

	task, err := h.service.Update(c.Request.Context(), uid, id, tasks.Patch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
	})
	if err != nil {
		h.writeError(c, err, "failed to update task")
		return
	}

	h.log.Info().Str("user_id", uid).Int64("task_id", id).Str("status", string(task.Status)).Msg("task updated")
	c.JSON(http.StatusOK, proto.NewTaskResponse(*task))
}

// Delete removes a task.
// DELETE /api/tasks/:id
func (h *TaskHandlers) Delete(c *gin.Context) {
	uid := userIDFrom(c)
	id, ok := h.taskID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), uid, id); err != nil {
		h.writeError(c, err, "failed to delete task")
		return
	}

	h.log.Info().Str("user_id", uid).Int64("task_id", id).Msg("task deleted")
	c.Status(http.StatusNoContent)
}

func (h *TaskHandlers) taskID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.log.Debug().Str("task_id", raw).Msg("invalid task id")
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "invalid task id"})
		return 0, false
	}
	return id, true
}

func (h *TaskHandlers) writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, tasks.ErrNotFound):
		c.JSON(http.StatusNotFound, proto.ErrorResponse{Error: "task not found"})
	case errors.Is(err, tasks.ErrInvalidTask):
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, tasks.ErrMissingUser):
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "X-User-Id header required"})
	default:
		h.log.Error().Err(err).Str("user_id", userIDFrom(c)).Msg(msg)
		c.JSON(http.StatusInternalServerError, proto.ErrorResponse{Error: "internal server error"})
	}
}
