package proto

import (
	"time"

	"github.com/vovakirdan/taskchat/internal/core"
)

// TaskCreateRequest is the body of POST /api/tasks. Optional fields are sent as null when absent.
type TaskCreateRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description" binding:"omitempty,max=4000"`
	Category    *string `json:"category" binding:"omitempty,max=255"`
}

// TaskUpdateRequest is the body of PUT /api/tasks/{id}. Only present fields are applied.
type TaskUpdateRequest struct {
	Title       *string          `json:"title,omitempty" binding:"omitempty,max=255"`
	Description *string          `json:"description,omitempty" binding:"omitempty,max=4000"`
	Category    *string          `json:"category,omitempty" binding:"omitempty,max=255"`
	Status      *core.TaskStatus `json:"status,omitempty" binding:"omitempty,oneof=PENDING ACTIONED"`
}

// TaskResponse is a task as seen by its owner.
type TaskResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
	Status      core.TaskStatus `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewTaskResponse maps a domain task to its wire form.
func NewTaskResponse(t core.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// Core converts the wire form back into a domain task. The owner is not part of the wire form.
func (r TaskResponse) Core() core.Task {
	return core.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
