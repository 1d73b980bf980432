package core

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the two-valued state of a task.
type TaskStatus string

const (
	TaskStatusPending  TaskStatus = "PENDING"
	TaskStatusActioned TaskStatus = "ACTIONED"
)

// ParseTaskStatus converts a wire value into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case TaskStatusPending:
		return TaskStatusPending, nil
	case TaskStatusActioned:
		return TaskStatusActioned, nil
	default:
		return "", fmt.Errorf("unknown task status %q", s)
	}
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusActioned
}

// Toggle returns the opposite status. Anything that is not PENDING toggles back to PENDING.
func (s TaskStatus) Toggle() TaskStatus {
	if s == TaskStatusPending {
		return TaskStatusActioned
	}
	return TaskStatusPending
}

// Task is a to-do item owned by a single user.
type Task struct {
	ID          int64
	UserID      string
	Title       string
	Description *string
	Category    *string
	Status      TaskStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
