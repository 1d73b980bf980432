package ui

import (
	"context"

	"github.com/vovakirdan/taskchat/internal/client/api"
	"github.com/vovakirdan/taskchat/internal/core"
	"github.com/vovakirdan/taskchat/internal/proto"
)

// TaskAPI is the task half of the REST client.
type TaskAPI interface {
	ListTasks(ctx context.Context, s api.Session, f api.TaskFilter) ([]core.Task, error)
	CreateTask(ctx context.Context, s api.Session, req proto.TaskCreateRequest) (*core.Task, error)
	UpdateTask(ctx context.Context, s api.Session, id int64, req proto.TaskUpdateRequest) (*core.Task, error)
	DeleteTask(ctx context.Context, s api.Session, id int64) error
}

// MessageAPI loads chat history.
type MessageAPI interface {
	RecentMessages(ctx context.Context, limit int) ([]core.Message, error)
}

// ChatConn is a live subscription to the message topic.
type ChatConn interface {
	Next(ctx context.Context) (core.Message, error)
	Send(ctx context.Context, senderID, content string) error
	Connected() bool
	Close() error
}

// Dialer opens a chat connection for a session.
type Dialer func(ctx context.Context, s api.Session) (ChatConn, error)
