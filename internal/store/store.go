package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Message represents a persisted chat message.
type Message struct {
	ID        int64
	SenderID  string
	Content   string
	CreatedAt time.Time
}

// Task represents a persisted task row.
type Task struct {
	ID          int64
	UserID      string
	Title       string
	Description *string
	Category    *string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskFilter narrows ListTasks. Nil fields match everything.
type TaskFilter struct {
	Status   *string
	Category *string
}

// MessageStore handles chat message persistence.
type MessageStore interface {
	// SaveMessage persists a message and fills in its ID.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListRecentMessages returns up to limit messages, newest first.
	ListRecentMessages(ctx context.Context, limit int) ([]*Message, error)
}

// TaskStore handles task persistence.
type TaskStore interface {
	// CreateTask inserts a task and fills in its ID.
	CreateTask(ctx context.Context, task *Task) error

	// GetTask retrieves a task by ID regardless of owner.
	GetTask(ctx context.Context, id int64) (*Task, error)

	// ListTasks lists a user's tasks newest first.
	ListTasks(ctx context.Context, userID string, filter TaskFilter) ([]*Task, error)

	// UpdateTask overwrites the mutable columns of an existing task.
	UpdateTask(ctx context.Context, task *Task) error

	// DeleteTask removes a task by ID.
	DeleteTask(ctx context.Context, id int64) error
}

// Store aggregates all storage interfaces.
type Store interface {
	MessageStore
	TaskStore

	// Close closes the underlying database connection.
	Close() error
}
