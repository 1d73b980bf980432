package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/taskchat/internal/client/api"
	"github.com/vovakirdan/taskchat/internal/core"
	"github.com/vovakirdan/taskchat/internal/proto"
)

type historyLoadedMsg struct {
	messages []core.Message
	err      error
}

type connectedMsg struct {
	gen  int
	conn ChatConn
	err  error
}

type chatReceivedMsg struct {
	gen int
	msg core.Message
}

type chatClosedMsg struct {
	gen int
	err error
}

type chatSentMsg struct {
	err error
}

type tasksLoadedMsg struct {
	gen   uint64
	tasks []core.Task
	err   error
}

type taskCreatedMsg struct {
	task *core.Task
	err  error
}

type taskMutatedMsg struct {
	op  string
	id  int64
	err error
}

type statusResetMsg struct {
	seq int
}

func loadHistoryCmd(messages MessageAPI, limit int, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		list, err := messages.RecentMessages(ctx, limit)
		return historyLoadedMsg{messages: list, err: err}
	}
}

func dialCmd(dial Dialer, s api.Session, gen int, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		conn, err := dial(ctx, s)
		return connectedMsg{gen: gen, conn: conn, err: err}
	}
}

// waitForChatCmd pulls one message off the connection; Update re-arms it after each delivery.
func waitForChatCmd(conn ChatConn, gen int) tea.Cmd {
	return func() tea.Msg {
		msg, err := conn.Next(context.Background())
		if err != nil {
			return chatClosedMsg{gen: gen, err: err}
		}
		return chatReceivedMsg{gen: gen, msg: msg}
	}
}

func closeChatCmd(conn ChatConn) tea.Cmd {
	return func() tea.Msg {
		_ = conn.Close()
		return nil
	}
}

func sendChatCmd(conn ChatConn, senderID, content string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return chatSentMsg{err: conn.Send(ctx, senderID, content)}
	}
}

func listTasksCmd(ctx context.Context, cancel context.CancelFunc, tasks TaskAPI, s api.Session, f api.TaskFilter, gen uint64) tea.Cmd {
	return func() tea.Msg {
		defer cancel()

		list, err := tasks.ListTasks(ctx, s, f)
		return tasksLoadedMsg{gen: gen, tasks: list, err: err}
	}
}

func createTaskCmd(tasks TaskAPI, s api.Session, req proto.TaskCreateRequest, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		task, err := tasks.CreateTask(ctx, s, req)
		return taskCreatedMsg{task: task, err: err}
	}
}

func updateTaskCmd(tasks TaskAPI, s api.Session, id int64, status core.TaskStatus, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		_, err := tasks.UpdateTask(ctx, s, id, proto.TaskUpdateRequest{Status: &status})
		return taskMutatedMsg{op: "update", id: id, err: err}
	}
}

func deleteTaskCmd(tasks TaskAPI, s api.Session, id int64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return taskMutatedMsg{op: "delete", id: id, err: tasks.DeleteTask(ctx, s, id)}
	}
}

func statusResetCmd(delay time.Duration, seq int) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return statusResetMsg{seq: seq}
	})
}
