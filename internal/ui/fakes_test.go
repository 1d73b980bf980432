package ui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/taskchat/internal/client/api"
	"github.com/vovakirdan/taskchat/internal/core"
	"github.com/vovakirdan/taskchat/internal/proto"
)

var errFake = errors.New("fake failure")

func notFound(method string, id int64) error {
	return &api.StatusError{Method: method, Path: fmt.Sprintf("/api/tasks/%d", id), StatusCode: 404, Message: "task not found"}
}

type updateCall struct {
	id     int64
	status core.TaskStatus
}

// fakeTasks is an in-memory task API that records every call.
type fakeTasks struct {
	mu        sync.Mutex
	nextID    int64
	tasks     []core.Task
	createErr error

	lists   []api.TaskFilter
	creates []proto.TaskCreateRequest
	updates []updateCall
	deletes []int64
}

func (f *fakeTasks) ListTasks(_ context.Context, s api.Session, filter api.TaskFilter) ([]core.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lists = append(f.lists, filter)
	var out []core.Task
	for _, t := range f.tasks {
		if t.UserID != s.UserID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeTasks) CreateTask(_ context.Context, s api.Session, req proto.TaskCreateRequest) (*core.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creates = append(f.creates, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	task := core.Task{
		ID: f.nextID, UserID: s.UserID, Title: req.Title,
		Description: req.Description, Category: req.Category,
		Status: core.TaskStatusPending,
	}
	f.tasks = append(f.tasks, task)
	return &task, nil
}

func (f *fakeTasks) UpdateTask(_ context.Context, _ api.Session, id int64, req proto.TaskUpdateRequest) (*core.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := updateCall{id: id}
	if req.Status != nil {
		call.status = *req.Status
	}
	f.updates = append(f.updates, call)
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			if req.Status != nil {
				f.tasks[i].Status = *req.Status
			}
			t := f.tasks[i]
			return &t, nil
		}
	}
	return nil, notFound("PUT", id)
}

func (f *fakeTasks) DeleteTask(_ context.Context, _ api.Session, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, id)
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return notFound("DELETE", id)
}

func (f *fakeTasks) seed(userID, title string, status core.TaskStatus) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	f.tasks = append(f.tasks, core.Task{ID: f.nextID, UserID: userID, Title: title, Status: status})
	return f.nextID
}

func (f *fakeTasks) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lists) + len(f.creates) + len(f.updates) + len(f.deletes)
}

// fakeMessages serves a fixed newest-first history.
type fakeMessages struct {
	mu      sync.Mutex
	history []core.Message
	limits  []int
}

func (f *fakeMessages) RecentMessages(_ context.Context, limit int) ([]core.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.limits = append(f.limits, limit)
	if limit < len(f.history) {
		return append([]core.Message(nil), f.history[:limit]...), nil
	}
	return append([]core.Message(nil), f.history...), nil
}

// historyOf returns n messages, newest first, with ids n..1.
func historyOf(n int) []core.Message {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	out := make([]core.Message, 0, n)
	for i := n; i >= 1; i-- {
		out = append(out, core.Message{
			ID:        int64(i),
			SenderID:  "alice",
			Content:   fmt.Sprintf("msg %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	return out
}

type sentChat struct {
	senderID string
	content  string
}

// fakeChat is a chat connection fed by tests.
type fakeChat struct {
	incoming chan core.Message
	closed   chan struct{}
	once     sync.Once

	mu   sync.Mutex
	sent []sentChat
}

func newFakeChat() *fakeChat {
	return &fakeChat{incoming: make(chan core.Message, 16), closed: make(chan struct{})}
}

func (c *fakeChat) Next(ctx context.Context) (core.Message, error) {
	select {
	case msg := <-c.incoming:
		return msg, nil
	case <-c.closed:
		return core.Message{}, errors.New("closed")
	case <-ctx.Done():
		return core.Message{}, ctx.Err()
	}
}

func (c *fakeChat) Send(_ context.Context, senderID, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sentChat{senderID: senderID, content: content})
	return nil
}

func (c *fakeChat) Connected() bool {
	select {
	case <-c.closed:
		return false
	default:
		return true
	}
}

func (c *fakeChat) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeChat) sentMessages() []sentChat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentChat(nil), c.sent...)
}

// fakeDialer hands out connections in order and records the sessions it was asked for.
type fakeDialer struct {
	mu       sync.Mutex
	conns    []*fakeChat
	sessions []api.Session
	err      error
}

func (d *fakeDialer) dial(_ context.Context, s api.Session) (ChatConn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sessions = append(d.sessions, s)
	if d.err != nil {
		return nil, d.err
	}
	conn := newFakeChat()
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) dialed() []*fakeChat {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*fakeChat(nil), d.conns...)
}

type harness struct {
	tasks    *fakeTasks
	messages *fakeMessages
	dialer   *fakeDialer
}

func newHarness(t *testing.T) (*harness, Model) {
	t.Helper()

	h := &harness{tasks: &fakeTasks{}, messages: &fakeMessages{}, dialer: &fakeDialer{}}
	m := New(h.tasks, h.messages, h.dialer.dial, Options{
		StatusDelay:    time.Millisecond,
		RequestTimeout: time.Second,
		Location:       time.UTC,
	}, nil)
	return h, m
}

const cmdWait = 100 * time.Millisecond

// drive runs cmd and feeds every resulting message back through Update until nothing is left.
// Commands that block longer than cmdWait (chat reads, cursor blinks) are abandoned.
// Status resets are held back so tests can observe transient labels.
func drive(t *testing.T, m Model, cmd tea.Cmd) (Model, []statusResetMsg) {
	t.Helper()

	var resets []statusResetMsg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		msg, ok := runCmd(next)
		if !ok || msg == nil {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case statusResetMsg:
			resets = append(resets, msg)
			continue
		}

		updated, follow := m.Update(msg)
		m = updated.(Model)
		queue = append(queue, follow)
	}
	return m, resets
}

func runCmd(cmd tea.Cmd) (tea.Msg, bool) {
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()

	select {
	case msg := <-out:
		return msg, true
	case <-time.After(cmdWait):
		return nil, false
	}
}

func press(t *testing.T, m Model, key tea.KeyMsg) (Model, []statusResetMsg) {
	t.Helper()

	updated, cmd := m.Update(key)
	return drive(t, updated.(Model), cmd)
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	tabKey   = tea.KeyMsg{Type: tea.KeyTab}
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// focusOn tabs until f has focus.
func focusOn(t *testing.T, m Model, f field) Model {
	t.Helper()

	for i := 0; m.focus != f; i++ {
		if i > int(fieldCount) {
			t.Fatalf("could not focus field %d", f)
		}
		updated, _ := m.Update(tabKey)
		m = updated.(Model)
	}
	return m
}

// connectAs sets the user field and presses enter on it.
func connectAs(t *testing.T, m Model, userID string) Model {
	t.Helper()

	m = focusOn(t, m, fieldUser)
	m.userInput.SetValue(userID)
	m, _ = press(t, m, enterKey)
	return m
}
